package mailtemplate

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/net/html"
)

// BodyStyle is applied to the wrapper div around every rendered email.
const BodyStyle = "font-family: Arial, sans-serif; font-size: 16px; color: #333333; background-color: #ffffff; line-height: 1.5;"

var tagStyles = map[string]string{
	"h1":     "font-size: 24px; color: #333333; font-weight: bold; margin-top: 20px; margin-bottom: 10px;",
	"p":      "font-size: 16px; color: #666666; margin: 10px 0; line-height: 1.6;",
	"a":      "color: #0056b3; text-decoration: none; font-weight: bold;",
	"footer": "font-size: 12px; color: #777777; padding: 20px 0;",
	"ul":     "list-style-type: none; padding: 0;",
	"li":     "margin-bottom: 10px;",
}

// TagStyle returns the inline style for a whitelisted tag.
func TagStyle(tag string) (string, bool) {
	s, ok := tagStyles[tag]
	return s, ok
}

// ApplyEmailStyles wraps fragment in the styled container and adds a style
// attribute to every whitelisted start tag. Everything else is copied verbatim.
func ApplyEmailStyles(fragment string) (string, error) {
	var buf bytes.Buffer
	buf.Grow(len(fragment) + len(fragment)/2 + len(BodyStyle) + 32)

	buf.WriteString(`<div style="`)
	buf.WriteString(BodyStyle)
	buf.WriteString(`">`)

	z := html.NewTokenizer(bytes.NewReader([]byte(fragment)))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return "", errors.Join(ErrRenderFailed, z.Err())
		}

		// TagName lowercases the token buffer in place, so the raw bytes are
		// copied out first.
		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			buf.Write(raw)
			continue
		}

		name, _ := z.TagName()
		style, ok := tagStyles[string(name)]
		if !ok {
			buf.Write(raw)
			continue
		}
		buf.Write(injectStyle(raw, style))
	}

	buf.WriteString(`</div>`)
	return buf.String(), nil
}

// injectStyle inserts a style attribute just before the closing '>' or '/>'.
func injectStyle(tag []byte, style string) []byte {
	end := len(tag) - 1
	if end > 0 && tag[end-1] == '/' {
		end--
	}
	for end > 0 && isSpace(tag[end-1]) {
		end--
	}

	out := make([]byte, 0, len(tag)+len(style)+9)
	out = append(out, tag[:end]...)
	out = append(out, ` style="`...)
	out = append(out, html.EscapeString(style)...)
	out = append(out, '"')
	out = append(out, tag[end:]...)
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
