// Package mailer sends transactional email. Delivery failures are reported
// to callers as plain errors; whether a failure is fatal is the caller's
// decision (invitation email failures, for instance, are not).
package mailer

import (
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends a single message with a plain-text body and an HTML
// alternative.
type Mailer interface {
	Send(to, subject, plainText, htmlBody string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer      *gomail.Dialer
	senderName  string
	senderEmail string
}

// NewSMTPMailer creates an SMTPMailer. The port is parsed leniently and
// falls back to 587.
func NewSMTPMailer(host, port, username, password, senderName, senderEmail string) *SMTPMailer {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		portNum = 587
	}

	return &SMTPMailer{
		dialer:      gomail.NewDialer(host, portNum, username, password),
		senderName:  senderName,
		senderEmail: senderEmail,
	}
}

// Send delivers one message, connecting and disconnecting per call.
func (m *SMTPMailer) Send(to, subject, plainText, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.senderEmail, m.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainText)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	return m.dialer.DialAndSend(msg)
}
