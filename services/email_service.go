package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer delivers one-time passcodes to a contact address. Delivery is
// best-effort: callers persist the code before attempting delivery and a
// failed send leaves the code in place for a later re-issue.
type Mailer interface {
	SendOTP(to, otp string) error
}

// SMTPMailer sends OTP emails over SMTP using gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from the EMAIL_* environment variables
func NewSMTPMailer() *SMTPMailer {
	host := os.Getenv("EMAIL_HOST")
	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	from := os.Getenv("EMAIL_FROM")

	port := 587
	if portStr := os.Getenv("EMAIL_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	if host == "" || user == "" || pass == "" || from == "" {
		log.Printf("WARNING: SMTP credentials not fully configured, OTP delivery will fail")
		log.Printf("Please set EMAIL_HOST, EMAIL_PORT, EMAIL_USER, EMAIL_PASS and EMAIL_FROM")
	}

	dialer := gomail.NewDialer(host, port, user, pass)
	// Port 465 means implicit TLS
	dialer.SSL = port == 465

	return &SMTPMailer{
		dialer: dialer,
		from:   from,
	}
}

// SendOTP emails the code to the given address
func (m *SMTPMailer) SendOTP(to, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your OTP Code")
	msg.SetBody("text/plain", fmt.Sprintf("Your 4-digit OTP code is: %s", otp))
	msg.AddAlternative("text/html", fmt.Sprintf("<p>Your 4-digit OTP code is: <b>%s</b></p>", otp))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send OTP email: %w", err)
	}
	log.Printf("OTP sent to %s", to)
	return nil
}
