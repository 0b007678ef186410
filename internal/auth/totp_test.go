package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEnrollment(t *testing.T) {
	tm := NewTOTPManager("gatehouse")

	enrollment, err := tm.GenerateEnrollment("user@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.OTPAuthURL, "otpauth://totp/")
	assert.Contains(t, enrollment.OTPAuthURL, "gatehouse")
	assert.True(t, strings.HasPrefix(enrollment.QRCode, "data:image/png;base64,"))
	assert.Len(t, enrollment.BackupCodes, backupCodeCount)

	seen := make(map[string]bool)
	for _, code := range enrollment.BackupCodes {
		assert.Len(t, code, 10)
		assert.False(t, seen[code], "backup codes must be unique")
		seen[code] = true
	}
}

func TestValidateCode(t *testing.T) {
	tm := NewTOTPManager("gatehouse")

	enrollment, err := tm.GenerateEnrollment("user@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	assert.True(t, tm.ValidateCode(enrollment.Secret, code))
	assert.False(t, tm.ValidateCode(enrollment.Secret, "000000"))
	assert.False(t, tm.ValidateCode(enrollment.Secret, ""))
}
