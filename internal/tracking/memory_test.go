// internal/tracking/memory_test.go
package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStoreListDueForCheck(t *testing.T) {
	store := NewMemoryStore()
	asOf := date(2026, 8, 31)

	eligible := map[string]*Book{
		"not released yet flagged": {ID: uuid.New(), Title: "a", ReleaseDate: date(2026, 8, 30), Status: StatusNotReleased},
		"not available":            {ID: uuid.New(), Title: "b", ReleaseDate: date(2026, 8, 31), Status: StatusNotAvailable},
		"holdable":                 {ID: uuid.New(), Title: "c", ReleaseDate: date(2026, 7, 1), Status: StatusAvailableToHold},
		"on hold":                  {ID: uuid.New(), Title: "d", ReleaseDate: date(2026, 7, 1), Status: StatusOnHold},
	}
	excluded := map[string]*Book{
		"future release": {ID: uuid.New(), Title: "e", ReleaseDate: date(2026, 9, 1), Status: StatusNotReleased},
		"checkout-able":  {ID: uuid.New(), Title: "f", ReleaseDate: date(2026, 7, 1), Status: StatusAvailableToCheckout},
		"checked out":    {ID: uuid.New(), Title: "g", ReleaseDate: date(2026, 7, 1), Status: StatusCheckedOut},
	}
	for _, b := range eligible {
		store.PutBook(b)
	}
	for _, b := range excluded {
		store.PutBook(b)
	}

	due, err := store.ListDueForCheck(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, due, len(eligible))

	got := make(map[uuid.UUID]bool)
	for _, b := range due {
		got[b.ID] = true
	}
	for name, b := range eligible {
		assert.True(t, got[b.ID], name)
	}
	for name, b := range excluded {
		assert.False(t, got[b.ID], name)
	}
}

func TestMemoryStoreUpdateAvailabilityClearsLink(t *testing.T) {
	store := NewMemoryStore()
	book := &Book{ID: uuid.New(), Title: "x", ReleaseDate: date(2026, 1, 1), Status: StatusAvailableToHold, CatalogItemID: "old-link"}
	store.PutBook(book)

	checked := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	err := store.UpdateAvailability(context.Background(), book.ID, CheckUpdate{
		Status:    StatusNotAvailable,
		CheckedAt: checked,
	})
	require.NoError(t, err)

	got, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotAvailable, got.Status)
	assert.Empty(t, got.CatalogItemID)
	require.NotNil(t, got.LastCheckedAt)
	assert.Equal(t, checked, *got.LastCheckedAt)
}

func TestMemoryStoreMarkCheckedKeepsExistingLink(t *testing.T) {
	store := NewMemoryStore()
	book := &Book{ID: uuid.New(), Title: "x", ReleaseDate: date(2026, 1, 1), Status: StatusAvailableToHold, CatalogItemID: "keep-me"}
	store.PutBook(book)

	err := store.MarkChecked(context.Background(), book.ID, time.Now().UTC(), "")
	require.NoError(t, err)

	got, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep-me", got.CatalogItemID)
}

func TestMemoryStoreStatusChanges(t *testing.T) {
	store := NewMemoryStore()
	bookID := uuid.New()
	old := StatusNotAvailable

	first := &StatusChange{BookID: bookID, OldStatus: &old, NewStatus: StatusAvailableToHold,
		Source: SourceCatalogCheck, ChangedAt: date(2026, 8, 20)}
	second := &StatusChange{BookID: bookID, NewStatus: StatusNotAvailable,
		Source: SourceSystem, ChangedAt: date(2026, 8, 30)}
	require.NoError(t, store.AppendStatusChange(context.Background(), first))
	require.NoError(t, store.AppendStatusChange(context.Background(), second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	since, err := store.ListStatusChangesSince(context.Background(), date(2026, 8, 25))
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, second.ID, since[0].ID)

	all, err := store.ListStatusChangesSince(context.Background(), date(2026, 1, 1))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStoreMissingBook(t *testing.T) {
	store := NewMemoryStore()
	id := uuid.New()

	_, err := store.GetBook(context.Background(), id)
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.ErrorIs(t, store.SetStatus(context.Background(), id, StatusOnHold), ErrBookNotFound)
	assert.ErrorIs(t, store.MarkChecked(context.Background(), id, time.Now(), ""), ErrBookNotFound)
	assert.ErrorIs(t, store.MarkNotified(context.Background(), id, time.Now()), ErrBookNotFound)
}
