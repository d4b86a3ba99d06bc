package rest

import (
	"net/http"
	"strconv"

	"debtster-core/internal/service"
	"debtster-core/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createAgreement(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateCreateAgreementRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	in := service.CreateAgreementInput{
		ClientID:            req.ClientID,
		TitleIDs:            req.TitleIDs,
		AgreedAmount:        req.AgreedAmount,
		InstallmentCount:    req.InstallmentCount,
		InterestRatePercent: req.InterestRatePercent,
		FirstDueDate:        req.FirstDueDate,
	}
	if userID, err := auth.GetUserID(r.Context()); err == nil {
		in.UserID = &userID
	}

	agreement, err := h.agreements.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "agreement created", agreementView(agreement))
}

func (h *Handler) listAgreements(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		ErrorBadRequest(w, "client_id is required")
		return
	}

	agreements, err := h.agreements.ListByClient(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]interface{}, 0, len(agreements))
	for i := range agreements {
		views = append(views, agreementView(&agreements[i]))
	}

	Success(w, "", views)
}

// getAgreement refreshes the breakage status on the way out, so a schedule
// installment that silently passed its due date is reported as broken.
func (h *Handler) getAgreement(w http.ResponseWriter, r *http.Request) {
	agreementID := chi.URLParam(r, "agreement_id")
	if agreementID == "" {
		ErrorBadRequest(w, "agreement_id is required")
		return
	}

	agreement, err := h.agreements.RefreshStatus(r.Context(), agreementID)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "", agreementView(agreement))
}

func (h *Handler) cancelAgreement(w http.ResponseWriter, r *http.Request) {
	agreementID := chi.URLParam(r, "agreement_id")
	if agreementID == "" {
		ErrorBadRequest(w, "agreement_id is required")
		return
	}

	agreement, err := h.agreements.Cancel(r.Context(), agreementID)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "agreement cancelled", agreementView(agreement))
}

func (h *Handler) payInstallment(w http.ResponseWriter, r *http.Request) {
	agreementID := chi.URLParam(r, "agreement_id")
	if agreementID == "" {
		ErrorBadRequest(w, "agreement_id is required")
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		ErrorBadRequest(w, "installment number must be an integer")
		return
	}

	agreement, err := h.agreements.PayInstallment(r.Context(), agreementID, number)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "installment paid", agreementView(agreement))
}
