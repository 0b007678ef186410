package models

import (
	"strings"
	"time"
)

type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	FirstName            *string
	LastName             *string
	ProfileImage         *string
	EmailVerified        bool
	TwoFactorEnabled     bool
	TwoFactorSecret      *string
	TwoFactorBackupCodes []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DisplayName builds "First Last", falling back to the email address when
// neither name is set.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
		return name
	}
	return u.Email
}

// Identity is the minimal public identity returned by a successful
// authentication. Callers turn this into a session token.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PublicIdentity projects a user onto its identity fields.
func (u *User) PublicIdentity() *Identity {
	identity := &Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.DisplayName(),
	}
	if u.ProfileImage != nil {
		identity.AvatarURL = *u.ProfileImage
	}
	return identity
}
