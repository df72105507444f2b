package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/mailtemplate"
	"github.com/dmitrymomot/usermgmt/templates"
)

func TestEmbeddedTemplatesRender(t *testing.T) {
	t.Parallel()

	composer := mailtemplate.New(mailtemplate.FSSource(templates.FS))
	vars := map[string]any{
		"name":             "Ann",
		"email":            "ann@example.com",
		"verification_url": "http://localhost/verify-email/1/abc",
	}

	for _, name := range []string{
		user.TemplateEmailVerification,
		user.TemplateAccountVerified,
		user.TemplateAccountLocked,
		user.TemplateAccountUnlocked,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			msg, err := composer.RenderMessage(name, vars)
			require.NoError(t, err)
			assert.NotEmpty(t, msg.Subject)
			assert.NotContains(t, msg.Subject, "{")
			assert.Contains(t, msg.HTML, "<h1")
			assert.Contains(t, msg.HTML, "Ann")
			assert.NotContains(t, msg.HTML, "subject:")
		})
	}
}

func TestVerificationLink(t *testing.T) {
	t.Parallel()

	composer := mailtemplate.New(mailtemplate.FSSource(templates.FS))
	msg, err := composer.RenderMessage(user.TemplateEmailVerification, map[string]any{
		"name":             "Ann",
		"email":            "ann@example.com",
		"verification_url": "http://localhost/verify-email/1/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Verify your email, Ann", msg.Subject)
	assert.Contains(t, msg.HTML, `href="http://localhost/verify-email/1/abc"`)
}
