package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient wraps an already authenticated HTTP client. An empty baseURL
// means the public Graph endpoint.
func NewClient(hc *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = graphBaseURL
	}
	return &Client{httpClient: hc, baseURL: baseURL}
}

// Connect builds a Client from the stored Outlook token.
func Connect(ctx context.Context, tenantID, clientID string, file TokenFile) (*Client, error) {
	ts, err := StoredTokenSource(ctx, tenantID, clientID, file)
	if err != nil {
		return nil, err
	}
	return NewClient(oauth2.NewClient(ctx, ts), ""), nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type message struct {
	Subject      string      `json:"subject"`
	Body         itemBody    `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type sendMailRequest struct {
	Message         message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

// Send mails a plain-text message from the signed-in user.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendMailRequest{
		Message: message{
			Subject:      subject,
			Body:         itemBody{ContentType: "Text", Content: body},
			ToRecipients: []recipient{{EmailAddress: emailAddress{Address: to}}},
		},
		SaveToSentItems: true,
	})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/me/sendMail", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindTransient, "send mail", to, fmt.Errorf("graph API request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.Wrap(statusKind(resp.StatusCode), "send mail", to,
			fmt.Errorf("graph API error %d: %s", resp.StatusCode, msg))
	}
	return nil
}

func statusKind(status int) apperr.Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.KindConfig
	case status == http.StatusTooManyRequests || status >= 500:
		return apperr.KindTransient
	default:
		return apperr.KindUnknown
	}
}
