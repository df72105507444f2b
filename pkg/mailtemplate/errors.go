package mailtemplate

import "errors"

var (
	ErrTemplateNotFound   = errors.New("mailtemplate: template not found")
	ErrMissingContextKey  = errors.New("mailtemplate: missing context key")
	ErrInvalidPlaceholder = errors.New("mailtemplate: invalid placeholder")
	ErrInvalidFrontmatter = errors.New("mailtemplate: invalid frontmatter")
	ErrRenderFailed       = errors.New("mailtemplate: render failed")
)
