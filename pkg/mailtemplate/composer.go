package mailtemplate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	headerFragment = "header"
	footerFragment = "footer"
)

// Message is a rendered email ready for dispatch.
type Message struct {
	Subject string
	HTML    string
}

// Composer renders named body templates between the shared header and footer.
// It holds no mutable state and is safe for concurrent use.
type Composer struct {
	source   FragmentSource
	markdown goldmark.Markdown
}

// Option configures a Composer.
type Option func(*Composer)

// WithMarkdown replaces the default goldmark instance.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(c *Composer) {
		if md != nil {
			c.markdown = md
		}
	}
}

// New creates a Composer reading fragments from source.
// Raw HTML in fragments (e.g. a <footer> block) is passed through.
func New(source FragmentSource, opts ...Option) *Composer {
	c := &Composer{
		source: source,
		markdown: goldmark.New(
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render composes header, the named body and footer into styled HTML.
func (c *Composer) Render(name string, vars map[string]any) (string, error) {
	msg, err := c.RenderMessage(name, vars)
	if err != nil {
		return "", err
	}
	return msg.HTML, nil
}

// RenderMessage is Render plus the subject from the body's frontmatter.
// The subject is substituted with the same values as the body.
func (c *Composer) RenderMessage(name string, vars map[string]any) (Message, error) {
	if name == "" {
		return Message{}, fmt.Errorf("%w: empty template name", ErrTemplateNotFound)
	}

	header, err := c.source.Get(headerFragment)
	if err != nil {
		return Message{}, err
	}
	body, err := c.source.Get(name)
	if err != nil {
		return Message{}, err
	}
	footer, err := c.source.Get(footerFragment)
	if err != nil {
		return Message{}, err
	}

	fm, body, err := splitFrontmatter(body)
	if err != nil {
		return Message{}, fmt.Errorf("template %q: %w", name, err)
	}

	body, err = substitute(body, vars)
	if err != nil {
		return Message{}, fmt.Errorf("template %q: %w", name, err)
	}

	subject, err := substitute(strings.TrimSpace(fm.Subject), vars)
	if err != nil {
		return Message{}, fmt.Errorf("template %q subject: %w", name, err)
	}

	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(header+"\n"+body+"\n"+footer), &buf); err != nil {
		return Message{}, errors.Join(ErrRenderFailed, err)
	}

	styled, err := ApplyEmailStyles(buf.String())
	if err != nil {
		return Message{}, err
	}

	return Message{Subject: subject, HTML: styled}, nil
}
