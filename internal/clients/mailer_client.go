// internal/clients/mailer_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MailerClient sends transactional email through an HTTP provider.
// Send is best-effort from the caller's perspective: failures here are
// logged and swallowed upstream, never escalated into run failures.
type MailerClient struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewMailerClient(endpoint, apiKey, from string, timeout time.Duration) *MailerClient {
	return &MailerClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers one HTML message and returns the provider-assigned
// message id.
func (c *MailerClient) Send(ctx context.Context, recipient, subject, html string) (string, error) {
	payload := struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}{
		From:    c.from,
		To:      []string{recipient},
		Subject: subject,
		HTML:    html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("send mail: unexpected status code: %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("send mail: decode response: %w", err)
	}
	return out.ID, nil
}
