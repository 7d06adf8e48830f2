package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"spendtrail/internal/ingest"
)

// DeadLetterLister exposes the preserved unprocessable messages.
type DeadLetterLister interface {
	List(ctx context.Context, limit int64) ([]ingest.DeadLetter, error)
}

// DeadLetterHandler serves the dead-letter inspection endpoint.
type DeadLetterHandler struct {
	letters DeadLetterLister
}

func NewDeadLetterHandler(letters DeadLetterLister) *DeadLetterHandler {
	return &DeadLetterHandler{letters: letters}
}

func (h *DeadLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	letters, err := h.letters.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "dead-letter store unavailable")
		return
	}
	if letters == nil {
		letters = []ingest.DeadLetter{}
	}
	respondJSON(w, http.StatusOK, letters)
}
