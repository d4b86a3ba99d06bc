package rest

import (
	"net/http"

	"debtster-core/internal/domain"
	"debtster-core/internal/service"
	"debtster-core/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createTitle(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateCreateTitleRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	title, err := h.debts.CreateTitle(r.Context(), service.CreateTitleInput{
		ClientID: req.ClientID,
		Amount:   req.Amount,
		DueDate:  req.DueDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "title created", titleView(*title))
}

func (h *Handler) splitTitle(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "title_id")
	if titleID == "" {
		ErrorBadRequest(w, "title_id is required")
		return
	}

	req, err := ValidateSplitTitleRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	installments, err := h.debts.SplitDebt(r.Context(), service.SplitDebtInput{
		TitleID:          titleID,
		InstallmentCount: req.InstallmentCount,
		StartDate:        req.StartDate,
		IntervalDays:     req.IntervalDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]interface{}, 0, len(installments))
	for _, inst := range installments {
		views = append(views, titleView(inst))
	}

	Success(w, "title split into installments", views)
}

func (h *Handler) applyCharge(w http.ResponseWriter, r *http.Request) {
	in, ok := h.adjustmentInput(w, r)
	if !ok {
		return
	}

	record, err := h.adjustments.ApplyCharge(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "charge applied", adjustmentView(*record))
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	in, ok := h.adjustmentInput(w, r)
	if !ok {
		return
	}

	record, err := h.adjustments.ApplyDiscount(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "discount applied", adjustmentView(*record))
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "title_id")
	if titleID == "" {
		ErrorBadRequest(w, "title_id is required")
		return
	}

	records, err := h.adjustments.History(r.Context(), titleID)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]interface{}, 0, len(records))
	for _, rec := range records {
		views = append(views, adjustmentView(rec))
	}

	Success(w, "", views)
}

func (h *Handler) adjustmentInput(w http.ResponseWriter, r *http.Request) (service.AdjustmentInput, bool) {
	titleID := chi.URLParam(r, "title_id")
	if titleID == "" {
		ErrorBadRequest(w, "title_id is required")
		return service.AdjustmentInput{}, false
	}

	req, err := ValidateAdjustmentRequest(r)
	if err != nil {
		respondError(w, err)
		return service.AdjustmentInput{}, false
	}

	in := service.AdjustmentInput{
		TitleID:     titleID,
		Kind:        domain.AdjustmentKind(req.Kind),
		Mode:        domain.AdjustmentMode(req.Mode),
		Value:       req.Value,
		Description: req.Description,
	}
	if userID, err := auth.GetUserID(r.Context()); err == nil {
		in.UserID = &userID
	}
	return in, true
}
