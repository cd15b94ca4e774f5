package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Daskott/rolodex/shared"
	"github.com/pkg/errors"
)

// RECIPIENT_DELIMITER separates addresses in a joined recipient field,
// e.g. "a@x.com;b@x.com" for a category broadcast.
const RECIPIENT_DELIMITER = ";"

// Mailer accepts recipient(s), subject & body and dispatches email.
// 'toAddress' may be a single address or a delimiter-joined list.
type Mailer interface {
	SendEmail(toAddress, subject, body string) error
}

type ClientWrapper struct {
	config shared.SmtpConfig
}

func NewClient(config shared.SmtpConfig) *ClientWrapper {
	return &ClientWrapper{config: config}
}

func (cw *ClientWrapper) SendEmail(toAddress, subject, body string) error {
	recipients := SplitRecipients(toAddress)
	if len(recipients) == 0 {
		return errors.New("mailer: at least one recipient is required")
	}

	var auth smtp.Auth
	if cw.config.UserName != "" {
		auth = smtp.PlainAuth("", cw.config.UserName, cw.config.Password, cw.config.Host)
	}

	addr := fmt.Sprintf("%v:%v", cw.config.Host, cw.config.Port)
	msg := buildMessage(cw.config.Sender, recipients, subject, body)

	return errors.Wrap(smtp.SendMail(addr, auth, cw.config.Sender, recipients, msg), "mailer")
}

// SplitRecipients splits a joined recipient field into individual
// addresses, dropping empty segments
func SplitRecipients(toAddress string) []string {
	recipients := []string{}
	for _, address := range strings.Split(toAddress, RECIPIENT_DELIMITER) {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		recipients = append(recipients, address)
	}

	return recipients
}

// JoinRecipients is the inverse of SplitRecipients
func JoinRecipients(addresses []string) string {
	return strings.Join(addresses, RECIPIENT_DELIMITER)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func buildMessage(sender string, recipients []string, subject, body string) []byte {
	headers := []string{
		fmt.Sprintf("From: %v", sender),
		fmt.Sprintf("To: %v", strings.Join(recipients, ", ")),
		fmt.Sprintf("Subject: %v", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}
