package rest

import (
	"log"
	"net/http"
	"time"

	"debtster-core/internal/transport/auth"
)

func (h *Handler) agingReport(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			ErrorBadRequest(w, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := h.reports.Aging(r.Context(), asOf)
	if err != nil {
		respondError(w, err)
		return
	}

	Success(w, "", agingReportView(report))
}

func (h *Handler) exportPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.reports.StartPortfolioExport(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] startPortfolioExport error: %v", err)
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "export queued", map[string]interface{}{
		"export_id": exportID,
	})
}
