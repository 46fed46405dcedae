// internal/reconcile/derive_test.go
package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shelfwatch/internal/catalog"
	"shelfwatch/internal/tracking"
)

func TestDeriveStatus(t *testing.T) {
	matched := func(r catalog.SearchResult) catalog.MatchDecision {
		return catalog.MatchDecision{Matched: true, Result: &r, Strategy: catalog.MatchByIdentifier}
	}

	tests := []struct {
		name     string
		decision catalog.MatchDecision
		want     tracking.LibraryStatus
	}{
		{
			"available with copies",
			matched(catalog.SearchResult{IsAvailable: true, AvailableCopies: 2}),
			tracking.StatusAvailableToCheckout,
		},
		{
			"available flag without copies is not checkout-able",
			matched(catalog.SearchResult{IsAvailable: true, AvailableCopies: 0, IsHoldable: true}),
			tracking.StatusAvailableToHold,
		},
		{
			"holdable only",
			matched(catalog.SearchResult{IsAvailable: false, IsHoldable: true}),
			tracking.StatusAvailableToHold,
		},
		{
			"owned but neither available nor holdable",
			matched(catalog.SearchResult{IsAvailable: false, IsHoldable: false}),
			tracking.StatusNotAvailable,
		},
		{
			"unmatched",
			catalog.MatchDecision{},
			tracking.StatusNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.decision))
		})
	}
}

func TestDeriveStatusNeverManualOnly(t *testing.T) {
	decisions := []catalog.MatchDecision{
		{},
		{Matched: true, Result: &catalog.SearchResult{IsAvailable: true, AvailableCopies: 1, IsHoldable: true, HoldCount: 12}},
		{Matched: true, Result: &catalog.SearchResult{IsHoldable: true, HoldCount: 3}},
	}
	for _, decision := range decisions {
		assert.False(t, DeriveStatus(decision).ManualOnly())
	}
}
