package rest

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"debtster-core/internal/domain"
	"debtster-core/internal/engine"
	"debtster-core/internal/repository"
	"debtster-core/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type DebtProvider interface {
	CreateTitle(ctx context.Context, in service.CreateTitleInput) (*domain.Title, error)
	ListOpenDebts(ctx context.Context, clientID *string) ([]domain.Debt, error)
	GetDebt(ctx context.Context, debtID string) (*domain.Debt, error)
	SplitDebt(ctx context.Context, in service.SplitDebtInput) ([]domain.Title, error)
}

type AgreementProvider interface {
	Create(ctx context.Context, in service.CreateAgreementInput) (*domain.Agreement, error)
	Get(ctx context.Context, id string) (*domain.Agreement, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Agreement, error)
	Cancel(ctx context.Context, id string) (*domain.Agreement, error)
	PayInstallment(ctx context.Context, agreementID string, number int) (*domain.Agreement, error)
	RefreshStatus(ctx context.Context, agreementID string) (*domain.Agreement, error)
}

type AdjustmentProvider interface {
	ApplyCharge(ctx context.Context, in service.AdjustmentInput) (*domain.Adjustment, error)
	ApplyDiscount(ctx context.Context, in service.AdjustmentInput) (*domain.Adjustment, error)
	History(ctx context.Context, titleID string) ([]domain.Adjustment, error)
}

type ReportProvider interface {
	Aging(ctx context.Context, asOf time.Time) (*service.AgingReport, error)
	StartPortfolioExport(ctx context.Context, userID int64) (string, error)
}

type ExportListService interface {
	GetExports(ctx context.Context, userID int64) ([]interface{}, error)
	GetExport(ctx context.Context, exportID string, userID int64) (interface{}, error)
}

type Handler struct {
	debts       DebtProvider
	agreements  AgreementProvider
	adjustments AdjustmentProvider
	reports     ReportProvider
	exportList  ExportListService
}

func NewHandler(
	debts DebtProvider,
	agreements AgreementProvider,
	adjustments AdjustmentProvider,
	reports ReportProvider,
	exportList ExportListService,
) *Handler {
	return &Handler{
		debts:       debts,
		agreements:  agreements,
		adjustments: adjustments,
		reports:     reports,
		exportList:  exportList,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/debts", func(r chi.Router) {
		r.Get("/", h.listDebts)
		r.Get("/{debt_id}", h.getDebt)
	})

	r.Route("/titles", func(r chi.Router) {
		r.Post("/", h.createTitle)
		r.Post("/{title_id}/split", h.splitTitle)
		r.Post("/{title_id}/charges", h.applyCharge)
		r.Post("/{title_id}/discounts", h.applyDiscount)
		r.Get("/{title_id}/adjustments", h.listAdjustments)
	})

	r.Route("/agreements", func(r chi.Router) {
		r.Post("/", h.createAgreement)
		r.Get("/", h.listAgreements)
		r.Get("/{agreement_id}", h.getAgreement)
		r.Post("/{agreement_id}/cancel", h.cancelAgreement)
		r.Post("/{agreement_id}/installments/{number}/pay", h.payInstallment)
	})

	r.Get("/reports/aging", h.agingReport)

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/aging", h.exportPortfolio)
	})

	return r
}

// respondError maps domain failures onto the API envelope: validation
// problems are 400, missing records 404 and lost balance races 409.
func respondError(w http.ResponseWriter, err error) {
	var validation *engine.ValidationError
	if errors.As(err, &validation) {
		ErrorBadRequest(w, validation.Error())
		return
	}
	var requestValidation *ValidationError
	if errors.As(err, &requestValidation) {
		ErrorBadRequest(w, requestValidation.Error())
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "not found")
		return
	}
	if errors.Is(err, repository.ErrBalanceConflict) {
		ErrorConflict(w, "balance changed concurrently, retry with fresh data")
		return
	}

	log.Printf("[HTTP] unexpected error: %v", err)
	ErrorInternal(w, "internal error")
}
