// internal/reconcile/handler.go
package reconcile

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the reconciliation trigger. The external scheduler
// and the manual "check now" action both hit the same endpoint; the
// run itself is idempotent given unchanged external state.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleRunNow starts a run and returns its report.
func (h *Handler) HandleRunNow(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
