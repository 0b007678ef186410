package services

import (
	"context"
	"fmt"
	"log/slog"

	applogger "gatehouse/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender delivers transactional mail.
type EmailSender interface {
	SendCodeEmail(ctx context.Context, email, code, purpose string, expiryMinutes int) error
}

// SESEmailService sends mail through AWS SES.
type SESEmailService struct {
	client      *ses.Client
	fromAddress string
	logger      *slog.Logger
}

func NewSESEmailService(region, fromAddress string, logger *slog.Logger) (*SESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailService{
		client:      ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

var emailSubjects = map[string]string{
	"email_verification": "Verify your email address",
	"password_reset":     "Reset your password",
	"2fa_setup":          "Confirm two-factor setup",
}

// SendCodeEmail delivers a short-lived numeric code for the given purpose.
func (s *SESEmailService) SendCodeEmail(ctx context.Context, email, code, purpose string, expiryMinutes int) error {
	subject, ok := emailSubjects[purpose]
	if !ok {
		subject = "Your verification code"
	}

	textBody := fmt.Sprintf(`Your verification code is:

    %s

Enter this code to continue. It expires in %d minutes.

If you didn't request this code, you can ignore this email.

This is an automated message. Please do not reply.
`, code, expiryMinutes)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="font-size: 20px;">%s</h1>
        <p>Your verification code is:</p>
        <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">%s</p>
        <p>Enter this code to continue. It expires in <strong>%d minutes</strong>.</p>
        <p style="color: #666; font-size: 12px; margin-top: 30px; border-top: 1px solid #eee; padding-top: 10px;">
            If you didn't request this code, you can ignore this email.<br>
            This is an automated message. Please do not reply.
        </p>
    </div>
</body>
</html>
`, subject, code, expiryMinutes)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send code email via SES",
			slog.String("email", applogger.SanitizedEmail(email)),
			slog.String("purpose", purpose),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("code email sent",
		slog.String("email", applogger.SanitizedEmail(email)),
		slog.String("purpose", purpose),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
