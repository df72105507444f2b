package mailtemplate

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

type frontmatter struct {
	Subject string `yaml:"subject"`
}

// splitFrontmatter separates an optional leading YAML block from the markdown
// body. The block counts as frontmatter only when it is closed by a "---"
// line and holds a YAML mapping; anything else, such as a body opening with
// a horizontal rule, is returned unchanged as the body.
func splitFrontmatter(text string) (frontmatter, string, error) {
	var fm frontmatter

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelim+"\n") {
		return fm, text, nil
	}

	rest := normalized[len(frontmatterDelim)+1:]
	block, body, ok := cutClosingDelim(rest)
	if !ok {
		return fm, text, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return fm, text, nil
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fm, text, nil
	}
	if err := doc.Content[0].Decode(&fm); err != nil {
		return fm, "", errors.Join(ErrInvalidFrontmatter, err)
	}
	return fm, body, nil
}

// cutClosingDelim finds the first line that is exactly "---".
func cutClosingDelim(s string) (block, body string, ok bool) {
	offset := 0
	for offset <= len(s) {
		line, _, _ := strings.Cut(s[offset:], "\n")
		next := offset + len(line) + 1
		if line == frontmatterDelim {
			return s[:offset], s[min(next, len(s)):], true
		}
		offset = next
	}
	return "", "", false
}
