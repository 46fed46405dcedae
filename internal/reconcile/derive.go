// internal/reconcile/derive.go
package reconcile

import (
	"shelfwatch/internal/catalog"
	"shelfwatch/internal/tracking"
)

// DeriveStatus maps a match decision onto the availability status the
// catalog evidence supports. on_hold and checked_out are never derived
// here; those enter only through administrative edits. An unmatched
// decision means the catalog does not carry the book: not_available.
func DeriveStatus(decision catalog.MatchDecision) tracking.LibraryStatus {
	if !decision.Matched {
		return tracking.StatusNotAvailable
	}
	result := decision.Result
	switch {
	case result.IsAvailable && result.AvailableCopies > 0:
		return tracking.StatusAvailableToCheckout
	case result.IsHoldable:
		return tracking.StatusAvailableToHold
	default:
		return tracking.StatusNotAvailable
	}
}
