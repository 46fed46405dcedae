// internal/tracking/handler.go
package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the administrative status edit. This is the only path
// that enters on_hold or checked_out; catalog checks cannot tell whose
// hold a hold is.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// HandleSetStatus applies a manual status override and appends one
// audit record. Setting the current status again is a no-op: no audit
// record is written when nothing changes.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid book ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := LibraryStatus(req.Status)
	if !status.Valid() {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	book, err := h.store.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if book.Status == status {
		json.NewEncoder(w).Encode(book)
		return
	}

	if err := h.store.SetStatus(ctx, id, status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	oldStatus := book.Status
	change := &StatusChange{
		BookID:    id,
		OldStatus: &oldStatus,
		NewStatus: status,
		Source:    SourceManual,
		Note:      req.Note,
		ChangedAt: time.Now().UTC(),
	}
	if err := h.store.AppendStatusChange(ctx, change); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	book.Status = status
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}
