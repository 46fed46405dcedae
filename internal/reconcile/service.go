// internal/reconcile/service.go
package reconcile

import (
	"context"

	"shelfwatch/internal/catalog"
)

// CatalogProvider is the external library-availability lookup. An empty
// result slice means "no results", not a failure.
type CatalogProvider interface {
	Search(ctx context.Context, query string) ([]catalog.SearchResult, error)
}

// Notifier delivers one message and returns the provider-assigned id.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, html string) (string, error)
}

// Service runs availability reconciliation passes.
type Service interface {
	Run(ctx context.Context) (*RunReport, error)
}
