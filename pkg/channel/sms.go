package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender delivers notifications through a form-encoded SMS gateway
// (Twilio-style: account id + token, to + body form fields).
type SMSSender struct {
	gatewayURL string
	accountID  string
	authToken  string
	fromNumber string
	client     *http.Client
}

// SMSConfig holds gateway settings for the SMS channel.
type SMSConfig struct {
	GatewayURL string
	AccountID  string
	AuthToken  string
	FromNumber string
}

func NewSMSSender(cfg SMSConfig) *SMSSender {
	return &SMSSender{
		gatewayURL: cfg.GatewayURL,
		accountID:  cfg.AccountID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) Name() string { return "sms" }

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if s.gatewayURL == "" || s.accountID == "" {
		return fmt.Errorf("sms channel not configured")
	}

	form := url.Values{}
	form.Set("From", s.fromNumber)
	form.Set("To", msg.Recipient)
	// SMS has no subject line; prepend the title.
	form.Set("Body", msg.Title+": "+msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
