// internal/tracking/service.go
package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence interface for tracked books and their status
// history. Row updates are atomic per book; status history is
// append-only and never mutated.
type Store interface {
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)

	// ListDueForCheck returns books whose release date is on or before
	// asOf and whose status still warrants a catalog check. Books at
	// available_to_checkout or checked_out are excluded; on_hold stays
	// included so promotion to checkout is detected.
	ListDueForCheck(ctx context.Context, asOf time.Time) ([]*Book, error)

	// ListReleasingBetween returns books with a release date in
	// [from, to] inclusive.
	ListReleasingBetween(ctx context.Context, from, to time.Time) ([]*Book, error)

	// UpdateAvailability applies a status change from a catalog check:
	// status, catalog link, and checked-at move together in one write.
	UpdateAvailability(ctx context.Context, id uuid.UUID, upd CheckUpdate) error

	// MarkChecked refreshes the checked-at timestamp after a check that
	// found no change. A non-empty catalogItemID records a newly
	// confident link; empty leaves the stored link alone.
	MarkChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time, catalogItemID string) error

	// SetStatus applies an administrative status override.
	SetStatus(ctx context.Context, id uuid.UUID, status LibraryStatus) error

	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error

	// AppendStatusChange inserts one audit record and fills in its ID.
	AppendStatusChange(ctx context.Context, change *StatusChange) error

	// ListStatusChangesSince returns audit records with a changed-at
	// timestamp at or after since, oldest first.
	ListStatusChangesSince(ctx context.Context, since time.Time) ([]*StatusChange, error)
}
