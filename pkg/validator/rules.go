package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var nicknamePattern = regexp.MustCompile(`^[\w-]+$`)

// Required fails on empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// MinLen counts runes, not bytes.
func MinLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= n },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters long", n)},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= n },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", n)},
	}
}

// ValidEmail accepts a bare address (no display name) with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			local, domain, ok := strings.Cut(value, "@")
			return ok && local != "" && strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// Nickname allows letters, digits, underscores and hyphens.
func Nickname(field, value string) Rule {
	return Rule{
		Check: func() bool { return nicknamePattern.MatchString(value) },
		Error: ValidationError{Field: field, Message: "may contain only letters, digits, underscores and hyphens"},
	}
}

// ValidURL requires an absolute http(s) URL.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.Parse(value)
			return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		Error: ValidationError{Field: field, Message: "must be a valid http or https URL"},
	}
}
