package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender posts deliveries to a bridge endpoint with the shared secret.
type Sender struct {
	URL        string
	Secret     string
	HTTPClient *http.Client
}

func NewSender(url, secret string) *Sender {
	return &Sender{URL: url, Secret: secret, HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

// Send posts payload as JSON and returns the response status and body.
func (s *Sender) Send(ctx context.Context, payload any) (int, string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to encode delivery: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(b))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", s.Secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}
