package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/copperline/accounts-service/internal/ports"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	client *resty.Client
	from   string
}

// NewResendSender builds a sender for the given API key and From address.
// baseURL is overridable for tests.
func NewResendSender(apiKey, from, baseURL string) *ResendSender {
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &ResendSender{client: client, from: from}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, msg ports.MailMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    s.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend send: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
