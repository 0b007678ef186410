package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "user@example.com", "u***@*******.com"},
		{"single char local part", "u@example.com", "u@*******.com"},
		{"subdomain", "user@mail.example.com", "u***@****.*******.com"},
		{"not an email", "garbage", "[invalid-email]"},
		{"double at", "a@b@c.com", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.email))
		})
	}
}

func TestRedactedAttr(t *testing.T) {
	assert.Equal(t, "[REDACTED]", RedactedAttr("key", "value", "production").Value.String())
	assert.Equal(t, "value", RedactedAttr("key", "value", "development").Value.String())
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("password=hunter2"))
	assert.True(t, SanitizeQueryString("reset?Token=abc"))
	assert.True(t, SanitizeQueryString("email=user%40example.com"))
	assert.False(t, SanitizeQueryString("page=2&sort=desc"))
	assert.False(t, SanitizeQueryString(""))
}
