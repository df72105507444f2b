package mailtemplate

import (
	"fmt"
	"strings"
)

// substitute replaces {key} placeholders in text with values from vars.
// {{ and }} produce literal braces.
func substitute(text string, vars map[string]any) (string, error) {
	if !strings.ContainsAny(text, "{}") {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", ErrInvalidPlaceholder, i)
			}
			key := text[i+1 : i+1+end]
			if key == "" || strings.ContainsAny(key, "{\n") {
				return "", fmt.Errorf("%w: %q at offset %d", ErrInvalidPlaceholder, "{"+key+"}", i)
			}
			val, ok := vars[key]
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrMissingContextKey, key)
			}
			b.WriteString(fmt.Sprint(val))
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrInvalidPlaceholder, i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}
