package mailer

import (
	"testing"

	"github.com/Daskott/rolodex/shared"
	"github.com/stretchr/testify/assert"
)

func TestSplitRecipients(t *testing.T) {
	testCases := []struct {
		desc      string
		toAddress string
		expected  []string
	}{
		{"single address", "stark@avengers.com", []string{"stark@avengers.com"}},
		{"joined addresses", "a@x.com;b@x.com", []string{"a@x.com", "b@x.com"}},
		{"whitespace around addresses", " a@x.com ; b@x.com ", []string{"a@x.com", "b@x.com"}},
		{"empty segments dropped", "a@x.com;;b@x.com;", []string{"a@x.com", "b@x.com"}},
		{"empty field", "", []string{}},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			assert.Equal(t, tcase.expected, SplitRecipients(tcase.toAddress))
		})
	}
}

func TestJoinRecipients(t *testing.T) {
	joined := JoinRecipients([]string{"a@x.com", "b@x.com"})
	assert.Equal(t, "a@x.com;b@x.com", joined)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, SplitRecipients(joined))
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("rolodex@example.com", []string{"a@x.com", "b@x.com"}, "Checking in", "How have you been?"))

	assert.Contains(t, msg, "From: rolodex@example.com\r\n")
	assert.Contains(t, msg, "To: a@x.com, b@x.com\r\n")
	assert.Contains(t, msg, "Subject: Checking in\r\n")
	assert.Contains(t, msg, "\r\n\r\nHow have you been?")
}

func TestSendEmailRequiresRecipient(t *testing.T) {
	client := NewClient(shared.SmtpConfig{Host: "localhost", Port: 1025, Sender: "rolodex@example.com"})

	err := client.SendEmail(";;", "Checking in", "How have you been?")
	assert.NotNil(t, err)
}
