package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendtrail/internal/event"
	"spendtrail/internal/expense"
	"spendtrail/internal/producer"
	"spendtrail/pkg/platform/sentinel"
)

// ExpenseHandler is the thin HTTP layer over the expense service. It
// delegates without embedding business logic so transport concerns stay
// isolated.
type ExpenseHandler struct {
	svc *expense.Service
}

func NewExpenseHandler(svc *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in expense.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, exp)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exp)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in expense.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exp)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError translates the error taxonomy into HTTP statuses:
// validation → 400, unknown entity → 404, a broker that would not take the
// event → 502 (the write is rolled into the failure, per the fail-closed
// publish policy).
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *event.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}
	var pf *producer.PublishFailure
	if errors.As(err, &pf) {
		respondError(w, http.StatusBadGateway, "event could not be published")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal error")
}
