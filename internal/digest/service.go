// internal/digest/service.go
package digest

import "context"

// Notifier delivers one message and returns the provider-assigned id.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, html string) (string, error)
}

// Outcome reports what one digest attempt did.
type Outcome struct {
	Skipped   bool   `json:"skipped"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"message_id,omitempty"`
	Upcoming  int    `json:"upcoming"`
	Changes   int    `json:"changes"`
}

// Service builds and sends the weekly digest.
type Service interface {
	BuildAndSend(ctx context.Context) (*Outcome, error)
}
