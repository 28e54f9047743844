package gworkspace

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// Send mails a UTF-8 plain-text message from the authenticated user.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(Compose(to, subject, body))}
	_, err := c.gmail.Users.Messages.Send("me", msg).Context(ctx).Do()
	return classify("send mail", to, err)
}

// Compose builds an RFC 5322 message. The subject and body may be non-ASCII.
func Compose(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")

	enc := base64.StdEncoding.EncodeToString([]byte(body))
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc)
	b.WriteString("\r\n")
	return []byte(b.String())
}
