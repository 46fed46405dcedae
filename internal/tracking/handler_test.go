// internal/tracking/handler_test.go
package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusRouter(store Store) http.Handler {
	handler := NewHandler(store)
	router := chi.NewRouter()
	router.Patch("/v1/books/{id}/status", handler.HandleSetStatus)
	return router
}

func TestHandleSetStatus(t *testing.T) {
	store := NewMemoryStore()
	book := &Book{ID: uuid.New(), Title: "x", ReleaseDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: StatusAvailableToHold}
	store.PutBook(book)

	req := httptest.NewRequest(http.MethodPatch, "/v1/books/"+book.ID.String()+"/status",
		strings.NewReader(`{"status": "on_hold", "note": "placed a hold at the branch"}`))
	rec := httptest.NewRecorder()
	newStatusRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	updated, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOnHold, updated.Status)

	changes := store.Changes()
	require.Len(t, changes, 1)
	require.NotNil(t, changes[0].OldStatus)
	assert.Equal(t, StatusAvailableToHold, *changes[0].OldStatus)
	assert.Equal(t, StatusOnHold, changes[0].NewStatus)
	assert.Equal(t, SourceManual, changes[0].Source)
	assert.Equal(t, "placed a hold at the branch", changes[0].Note)
}

func TestHandleSetStatusNoOpWritesNoAudit(t *testing.T) {
	store := NewMemoryStore()
	book := &Book{ID: uuid.New(), Title: "x", ReleaseDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: StatusOnHold}
	store.PutBook(book)

	req := httptest.NewRequest(http.MethodPatch, "/v1/books/"+book.ID.String()+"/status",
		strings.NewReader(`{"status": "on_hold"}`))
	rec := httptest.NewRecorder()
	newStatusRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.Changes())
}

func TestHandleSetStatusRejectsUnknownStatus(t *testing.T) {
	store := NewMemoryStore()
	book := &Book{ID: uuid.New(), Title: "x", Status: StatusNotReleased}
	store.PutBook(book)

	req := httptest.NewRequest(http.MethodPatch, "/v1/books/"+book.ID.String()+"/status",
		strings.NewReader(`{"status": "lost"}`))
	rec := httptest.NewRecorder()
	newStatusRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetStatusMissingBook(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/v1/books/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status": "on_hold"}`))
	rec := httptest.NewRecorder()
	newStatusRouter(NewMemoryStore()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
