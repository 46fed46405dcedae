// internal/tracking/memory.go
package tracking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development. It
// mirrors the postgres store's semantics, including per-book atomic
// updates under one lock.
type MemoryStore struct {
	mu           sync.RWMutex
	books        map[uuid.UUID]*Book
	changes      []*StatusChange
	nextChangeID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:        make(map[uuid.UUID]*Book),
		nextChangeID: 1,
	}
}

// PutBook inserts or replaces a book record.
func (m *MemoryStore) PutBook(b *Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *b
	m.books[b.ID] = &clone
}

func (m *MemoryStore) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *MemoryStore) ListDueForCheck(ctx context.Context, asOf time.Time) ([]*Book, error) {
	eligible := make(map[LibraryStatus]bool, len(checkEligible))
	for _, st := range checkEligible {
		eligible[st] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var books []*Book
	for _, b := range m.books {
		if b.ReleaseDate.After(asOf) || !eligible[b.Status] {
			continue
		}
		clone := *b
		books = append(books, &clone)
	}
	sortBooks(books)
	return books, nil
}

func (m *MemoryStore) ListReleasingBetween(ctx context.Context, from, to time.Time) ([]*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var books []*Book
	for _, b := range m.books {
		if b.ReleaseDate.Before(from) || b.ReleaseDate.After(to) {
			continue
		}
		clone := *b
		books = append(books, &clone)
	}
	sortBooks(books)
	return books, nil
}

func (m *MemoryStore) UpdateAvailability(ctx context.Context, id uuid.UUID, upd CheckUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	b.Status = upd.Status
	b.CatalogItemID = upd.CatalogItemID
	checked := upd.CheckedAt
	b.LastCheckedAt = &checked
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) MarkChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time, catalogItemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	b.LastCheckedAt = &checkedAt
	if catalogItemID != "" {
		b.CatalogItemID = catalogItemID
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) SetStatus(ctx context.Context, id uuid.UUID, status LibraryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	b.LastNotifiedAt = &at
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) AppendStatusChange(ctx context.Context, change *StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	change.ID = m.nextChangeID
	m.nextChangeID++
	clone := *change
	m.changes = append(m.changes, &clone)
	return nil
}

func (m *MemoryStore) ListStatusChangesSince(ctx context.Context, since time.Time) ([]*StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var changes []*StatusChange
	for _, c := range m.changes {
		if c.ChangedAt.Before(since) {
			continue
		}
		clone := *c
		changes = append(changes, &clone)
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].ChangedAt.Before(changes[j].ChangedAt)
	})
	return changes, nil
}

// Changes returns a copy of every audit record, for test assertions.
func (m *MemoryStore) Changes() []*StatusChange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*StatusChange, 0, len(m.changes))
	for _, c := range m.changes {
		clone := *c
		out = append(out, &clone)
	}
	return out
}

func sortBooks(books []*Book) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].ReleaseDate.Equal(books[j].ReleaseDate) {
			return books[i].ReleaseDate.Before(books[j].ReleaseDate)
		}
		return books[i].Title < books[j].Title
	})
}
