package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spendtrail/internal/audit"
	"spendtrail/internal/event"
)

//go:generate mockgen -source=handlers_audit.go -destination=mocks/audit_mocks.go -package=mocks AuditQueries

// AuditQueries is the read-only slice of the audit store the API exposes.
type AuditQueries interface {
	ListByEntity(ctx context.Context, entityID string) ([]audit.Record, error)
	ListByUser(ctx context.Context, userID string) ([]audit.Record, error)
	ListByWindow(ctx context.Context, start, end time.Time) ([]audit.Record, error)
	ListRecent(ctx context.Context, since time.Time) ([]audit.Record, error)
	ListByAction(ctx context.Context, action event.Action) ([]audit.Record, error)
	ListByEntityAndAction(ctx context.Context, entityID string, action event.Action) ([]audit.Record, error)
}

// AuditHandler serves the audit trail query API. Results are returned as
// stored, already ordered by timestamp ascending.
type AuditHandler struct {
	queries AuditQueries
}

func NewAuditHandler(queries AuditQueries) *AuditHandler {
	return &AuditHandler{queries: queries}
}

func (h *AuditHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	records, err := h.queries.ListByEntity(r.Context(), chi.URLParam(r, "entityID"))
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	records, err := h.queries.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) ByWindow(w http.ResponseWriter, r *http.Request) {
	start, ok := parseTimestamp(w, r.URL.Query().Get("start"), "start")
	if !ok {
		return
	}
	end, ok := parseTimestamp(w, r.URL.Query().Get("end"), "end")
	if !ok {
		return
	}
	if end.Before(start) {
		respondError(w, http.StatusBadRequest, "end must not be before start")
		return
	}
	records, err := h.queries.ListByWindow(r.Context(), start, end)
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	since, ok := parseTimestamp(w, r.URL.Query().Get("since"), "since")
	if !ok {
		return
	}
	records, err := h.queries.ListRecent(r.Context(), since)
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) ByAction(w http.ResponseWriter, r *http.Request) {
	action := event.Action(chi.URLParam(r, "action"))
	records, err := h.queries.ListByAction(r.Context(), action)
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) ByEntityAndAction(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	action := event.Action(chi.URLParam(r, "action"))
	records, err := h.queries.ListByEntityAndAction(r.Context(), entityID, action)
	h.respondRecords(w, records, err)
}

func (h *AuditHandler) respondRecords(w http.ResponseWriter, records []audit.Record, err error) {
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "audit store unavailable")
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	respondJSON(w, http.StatusOK, records)
}

func parseTimestamp(w http.ResponseWriter, value, name string) (time.Time, bool) {
	if value == "" {
		respondError(w, http.StatusBadRequest, name+" is required (RFC 3339)")
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		respondError(w, http.StatusBadRequest, name+" must be RFC 3339")
		return time.Time{}, false
	}
	return ts, true
}
