package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushSender delivers notifications through an HTTP push gateway
// (FCM-compatible: device token + title/body payload, bearer key auth).
type PushSender struct {
	gatewayURL string
	serverKey  string
	client     *http.Client
}

func NewPushSender(gatewayURL, serverKey string) *PushSender {
	return &PushSender{
		gatewayURL: gatewayURL,
		serverKey:  serverKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *PushSender) Name() string { return "push" }

func (s *PushSender) Send(ctx context.Context, msg Message) error {
	if s.gatewayURL == "" || s.serverKey == "" {
		return fmt.Errorf("push channel not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"to": msg.Recipient,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
