// Package templates embeds the default markdown email fragments.
package templates

import "embed"

// FS holds header.md, footer.md and one body fragment per email.
//
//go:embed *.md
var FS embed.FS
