package mailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailer_WithoutHostDropsMail(t *testing.T) {
	t.Parallel()

	m := NewMailer(MailConfig{})
	assert.NoError(t, m.SendMail("cook@example.com", "hi", "body"))
}

func TestNewMailer_BadPort(t *testing.T) {
	t.Parallel()

	m := NewMailer(MailConfig{SMTPHost: "smtp.example.com", SMTPPort: "smtp"})
	assert.ErrorContains(t, m.SendMail("cook@example.com", "hi", "body"), "smtp port")
}

func TestWelcomeBody_EscapesUsername(t *testing.T) {
	t.Parallel()

	body := WelcomeBody("<b>chef</b>", "http://localhost:8000")
	assert.Contains(t, body, "&lt;b&gt;chef&lt;/b&gt;")
	assert.Contains(t, body, `href="http://localhost:8000"`)
}
