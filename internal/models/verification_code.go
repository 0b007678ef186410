package models

import "time"

// Verification code types.
const (
	CodeTypeEmailVerification = "email_verification"
	CodeTypePasswordReset     = "password_reset"
	CodeTypeTwoFactorSetup    = "2fa_setup"
)

// VerificationCode is a short-lived, single-use 6-digit code delivered by
// email.
type VerificationCode struct {
	ID        string
	UserID    string
	Email     string
	Code      string
	Type      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
