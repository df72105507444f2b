// Package mailtemplate composes HTML email bodies from markdown fragments.
//
// Every rendered email is built from three fragments looked up by name: a shared
// "header", the requested body and a shared "footer". Placeholders in the body are
// substituted from the caller's values, the fragments are joined with newlines and
// converted to HTML with goldmark, and the result is post-processed so that
// presentation survives email clients that strip stylesheets.
//
// # Usage
//
//	composer := mailtemplate.New(mailtemplate.FSSource(templates.FS))
//
//	html, err := composer.Render("email_verification", map[string]any{
//	    "name":             "Alice",
//	    "verification_url": "https://example.com/verify-email/...",
//	})
//	if err != nil {
//	    // errors.Is(err, mailtemplate.ErrTemplateNotFound)
//	    // errors.Is(err, mailtemplate.ErrMissingContextKey)
//	}
//
// RenderMessage additionally returns the subject declared in the body's YAML
// frontmatter:
//
//	---
//	subject: Verify your email, {name}
//	---
//	Hello, **{name}**!
//
// # Placeholders
//
// A placeholder is a key wrapped in single braces, e.g. {name}. Values are
// rendered with fmt.Sprint. Literal braces are written as {{ and }}. Only the body
// fragment is substituted; header and footer are used verbatim.
//
// # Inline styles
//
// The output is wrapped in a div carrying the base font style, and every h1, p, a,
// ul, li and footer start tag receives one style attribute from a fixed table.
// Existing attributes are kept and other tags are written byte for byte. Styling
// is applied once per render; feeding rendered output back through the inliner
// adds a second style attribute.
//
// # Fragment sources
//
// Fragments come from a FragmentSource. FSSource and DirSource read "<name>.md"
// files on every call, MapSource serves an in-memory map. Nothing is cached.
package mailtemplate
