// utils/email.go
package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers one-time codes to an email address. Delivery is
// best-effort from the caller's perspective; failures are logged upstream
// and never roll back OTP issuance.
type EmailSender interface {
	SendRegistrationOTP(email, name, otp string) error
}

// SMTPEmailSender sends mail through the configured SMTP relay
type SMTPEmailSender struct{}

// NewSMTPEmailSender creates an SMTP-backed sender
func NewSMTPEmailSender() *SMTPEmailSender {
	return &SMTPEmailSender{}
}

// SendRegistrationOTP sends the registration OTP to the user's email
func (s *SMTPEmailSender) SendRegistrationOTP(email, name, otp string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || smtpPortStr == "" || smtpUser == "" || smtpPass == "" || fromEmail == "" {
		return fmt.Errorf("missing SMTP configuration")
	}

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}

	subject := "Verify Your Email"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to PathForge</h2>
			<p>Hello %s,</p>
			<p>Use the following code to verify your email address and complete your registration:</p>
			<h3 style="background-color: #f0f0f0; padding: 10px; font-size: 24px; letter-spacing: 5px; text-align: center;">%s</h3>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not sign up, please ignore this email.</p>
			<p>Thank you,<br>The PathForge Team</p>
		</body>
		</html>
	`, name, otp)

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// MaskEmail partially masks an email address for logging
func MaskEmail(email string) string {
	at := -1
	for i, r := range email {
		if r == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
