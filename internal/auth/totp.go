package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

const backupCodeCount = 8

// TOTPManager generates and validates time-based one-time-password secrets
// for two-factor enrollment.
type TOTPManager struct {
	issuer string
}

func NewTOTPManager(issuer string) *TOTPManager {
	return &TOTPManager{issuer: issuer}
}

// TOTPEnrollment is everything a client needs to finish 2FA setup.
type TOTPEnrollment struct {
	Secret      string
	OTPAuthURL  string
	QRCode      string // data URL with a PNG of the provisioning QR code
	BackupCodes []string
}

// GenerateEnrollment creates a fresh secret plus the provisioning QR code and
// backup codes for the given account.
func (tm *TOTPManager) GenerateEnrollment(accountEmail string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountEmail,
		SecretSize:  32,
		Period:      30,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qr, err := qrcode.New(key.URL(), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(200)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	backupCodes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, err
	}

	return &TOTPEnrollment{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		BackupCodes: backupCodes,
	}, nil
}

// ValidateCode checks a 6-digit code against the stored secret.
func (tm *TOTPManager) ValidateCode(secret, code string) bool {
	return totp.Validate(code, secret)
}

func generateBackupCodes(n int) ([]string, error) {
	codes := make([]string, n)
	for i := range codes {
		buf := make([]byte, 5)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = hex.EncodeToString(buf)
	}
	return codes, nil
}
