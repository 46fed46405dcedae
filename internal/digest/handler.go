// internal/digest/handler.go
package digest

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the weekly digest trigger.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleSendNow builds and sends the digest.
func (h *Handler) HandleSendNow(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.BuildAndSend(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}
