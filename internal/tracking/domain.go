// internal/tracking/domain.go
package tracking

import (
	"time"

	"github.com/google/uuid"
)

// LibraryStatus is the closed set of availability states for a tracked
// book, ordered by reader-facing progress toward a checkout.
type LibraryStatus string

const (
	StatusNotReleased         LibraryStatus = "not_released"
	StatusNotAvailable        LibraryStatus = "not_available"
	StatusAvailableToHold     LibraryStatus = "available_to_hold"
	StatusOnHold              LibraryStatus = "on_hold"
	StatusAvailableToCheckout LibraryStatus = "available_to_checkout"
	StatusCheckedOut          LibraryStatus = "checked_out"
)

var statusRank = map[LibraryStatus]int{
	StatusNotReleased:         0,
	StatusNotAvailable:        1,
	StatusAvailableToHold:     2,
	StatusOnHold:              3,
	StatusAvailableToCheckout: 4,
	StatusCheckedOut:          5,
}

// Valid reports whether s is one of the known statuses.
func (s LibraryStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the status position in reader-facing progress order.
func (s LibraryStatus) Rank() int {
	return statusRank[s]
}

// ManualOnly reports whether the status can only be entered through an
// administrative edit. Catalog signals cannot distinguish "holdable by
// anyone" from "a hold this reader placed", so checks never assign these.
func (s LibraryStatus) ManualOnly() bool {
	return s == StatusOnHold || s == StatusCheckedOut
}

// Label returns the human-readable form used in notifications.
func (s LibraryStatus) Label() string {
	switch s {
	case StatusNotReleased:
		return "not released"
	case StatusNotAvailable:
		return "not available"
	case StatusAvailableToHold:
		return "available to hold"
	case StatusOnHold:
		return "on hold"
	case StatusAvailableToCheckout:
		return "available to check out"
	case StatusCheckedOut:
		return "checked out"
	default:
		return string(s)
	}
}

// Book is an anticipated release being monitored against the catalog.
type Book struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Author         string        `json:"author"`
	ReleaseDate    time.Time     `json:"release_date"` // calendar date, midnight UTC
	ISBN           string        `json:"isbn,omitempty"`
	AltISBNs       []string      `json:"alt_isbns,omitempty"` // identifiers across known editions
	CatalogItemID  string        `json:"catalog_item_id,omitempty"`
	Status         LibraryStatus `json:"status"`
	LastCheckedAt  *time.Time    `json:"last_checked_at,omitempty"`
	LastNotifiedAt *time.Time    `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IdentifierSet returns the primary and alternate identifiers as one
// deduplicated list, preserving first-seen order. Empty when the book
// has no known identifiers yet.
func (b *Book) IdentifierSet() []string {
	seen := make(map[string]struct{}, len(b.AltISBNs)+1)
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(b.ISBN)
	for _, id := range b.AltISBNs {
		add(id)
	}
	return ids
}

// ChangeSource tags what produced a status transition.
type ChangeSource string

const (
	SourceManual       ChangeSource = "manual"
	SourceCatalogCheck ChangeSource = "catalog-check"
	SourceSystem       ChangeSource = "system"
)

// StatusChange is an immutable audit entry for one status transition.
// OldStatus is nil for a book's first-ever record.
type StatusChange struct {
	ID        int64          `json:"id"`
	BookID    uuid.UUID      `json:"book_id"`
	OldStatus *LibraryStatus `json:"old_status,omitempty"`
	NewStatus LibraryStatus  `json:"new_status"`
	Source    ChangeSource   `json:"source"`
	Note      string         `json:"note,omitempty"`
	ChangedAt time.Time      `json:"changed_at"`
}

// CheckUpdate is the single-row write applied when a catalog check
// changes a book's status. An empty CatalogItemID clears the stored
// link; an unmatched search must never leave a stale one behind.
type CheckUpdate struct {
	Status        LibraryStatus
	CatalogItemID string
	CheckedAt     time.Time
}
