package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request) {
	var clientID *string
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		clientID = &raw
	}

	debts, err := h.debts.ListOpenDebts(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]interface{}, 0, len(debts))
	for _, d := range debts {
		views = append(views, debtView(d))
	}

	Success(w, "", views)
}

func (h *Handler) getDebt(w http.ResponseWriter, r *http.Request) {
	debtID := chi.URLParam(r, "debt_id")
	if debtID == "" {
		ErrorBadRequest(w, "debt_id is required")
		return
	}

	debt, err := h.debts.GetDebt(r.Context(), debtID)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "", debtView(*debt))
}
