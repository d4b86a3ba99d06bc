package service

import (
	"context"
	"log"
	"time"

	"debtster-core/internal/clients"
	"debtster-core/internal/domain"
	"debtster-core/internal/engine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AgreementRepository interface {
	Create(ctx context.Context, a *domain.Agreement) error
	GetByID(ctx context.Context, id string) (*domain.Agreement, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Agreement, error)
	UpdateStatus(ctx context.Context, id string, status domain.AgreementStatus) error
	MarkInstallmentPaid(ctx context.Context, agreementID string, number int, paidAt time.Time) error
	UnpaidCount(ctx context.Context, agreementID string, asOf time.Time) (unpaid, pastDue int, err error)
}

type AgreementTitleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Title, error)
	UpdateStatusMany(ctx context.Context, ids []string, status domain.TitleStatus) error
}

type AgreementService struct {
	agreements AgreementRepository
	titles     AgreementTitleRepository
	ws         *clients.WebSocketClient
	now        func() time.Time
}

func NewAgreementService(agreements AgreementRepository, titles AgreementTitleRepository, ws *clients.WebSocketClient) *AgreementService {
	return &AgreementService{
		agreements: agreements,
		titles:     titles,
		ws:         ws,
		now:        time.Now,
	}
}

type CreateAgreementInput struct {
	ClientID string
	TitleIDs []string

	// AgreedAmount zero means "settle the full outstanding balance".
	AgreedAmount        decimal.Decimal
	InstallmentCount    int
	InterestRatePercent decimal.Decimal
	FirstDueDate        time.Time

	UserID *int64
}

// Create computes a settlement schedule for the covered titles and persists
// it; the covered titles move to in-agreement. Validation failures abort
// before anything is written.
func (s *AgreementService) Create(ctx context.Context, in CreateAgreementInput) (*domain.Agreement, error) {
	if len(in.TitleIDs) == 0 {
		return nil, &engine.ValidationError{Field: "title_ids", Message: "at least one title is required"}
	}

	today := s.now()
	original := decimal.Zero
	for _, titleID := range in.TitleIDs {
		title, err := s.titles.GetByID(ctx, titleID)
		if err != nil {
			return nil, err
		}
		if title.ClientID != in.ClientID {
			return nil, &engine.ValidationError{Field: "title_ids", Message: "all titles must belong to the agreement's client"}
		}
		if title.Kind() == domain.KindParent {
			return nil, &engine.ValidationError{Field: "title_ids", Message: "debt headers cannot be covered directly; cover their installments"}
		}
		if !engine.IsEffectivelyOpen(*title, today) {
			return nil, &engine.ValidationError{Field: "title_ids", Message: "title " + titleID + " is not open"}
		}
		original = original.Add(title.Amount)
	}

	agreed := in.AgreedAmount
	if agreed.IsZero() {
		agreed = original
	}

	schedule, err := engine.ComputeAgreementSchedule(engine.AgreementTerms{
		AgreedAmount:        agreed,
		InstallmentCount:    in.InstallmentCount,
		InterestRatePercent: in.InterestRatePercent,
		FirstDueDate:        in.FirstDueDate,
	})
	if err != nil {
		return nil, err
	}

	agreedTotal := engine.ScheduleTotal(schedule)
	agreement := &domain.Agreement{
		ID:                  uuid.NewString(),
		ClientID:            in.ClientID,
		TitleIDs:            in.TitleIDs,
		OriginalAmount:      original,
		AgreedAmount:        agreedTotal,
		InstallmentCount:    in.InstallmentCount,
		InterestRatePercent: in.InterestRatePercent,
		FirstDueDate:        engine.DateOnly(in.FirstDueDate),
		DiscountPercent:     engine.DiscountPercent(original, agreedTotal),
		Status:              domain.AgreementStatusActive,
		Schedule:            schedule,
	}

	if err := s.agreements.Create(ctx, agreement); err != nil {
		return nil, err
	}

	if err := s.titles.UpdateStatusMany(ctx, in.TitleIDs, domain.TitleStatusInAgreement); err != nil {
		// agreement exists; the next open-debts read excludes covered titles
		// by the stored status, so only log here
		log.Printf("[AGREEMENTS] failed to mark covered titles: %v", err)
	}

	return agreement, nil
}

func (s *AgreementService) Get(ctx context.Context, id string) (*domain.Agreement, error) {
	return s.agreements.GetByID(ctx, id)
}

func (s *AgreementService) ListByClient(ctx context.Context, clientID string) ([]domain.Agreement, error) {
	return s.agreements.ListByClient(ctx, clientID)
}

// Cancel voids an active agreement and releases its unpaid covered titles
// back to collection.
func (s *AgreementService) Cancel(ctx context.Context, id string) (*domain.Agreement, error) {
	agreement, err := s.agreements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agreement.Status != domain.AgreementStatusActive {
		return nil, &engine.ValidationError{Field: "status", Message: "only an active agreement can be cancelled"}
	}

	if err := s.agreements.UpdateStatus(ctx, id, domain.AgreementStatusCancelled); err != nil {
		return nil, err
	}
	agreement.Status = domain.AgreementStatusCancelled

	s.releaseTitles(ctx, agreement.TitleIDs)
	s.notifyStatus(agreement)

	return agreement, nil
}

// PayInstallment registers a payment against one schedule installment; the
// agreement is fulfilled once every installment is paid, settling the
// covered titles.
func (s *AgreementService) PayInstallment(ctx context.Context, agreementID string, number int) (*domain.Agreement, error) {
	agreement, err := s.agreements.GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if agreement.Status != domain.AgreementStatusActive && agreement.Status != domain.AgreementStatusBroken {
		return nil, &engine.ValidationError{Field: "status", Message: "agreement does not accept payments"}
	}
	if number < 1 || number > agreement.InstallmentCount {
		return nil, &engine.ValidationError{Field: "number", Message: "installment number out of range"}
	}

	now := s.now()
	if err := s.agreements.MarkInstallmentPaid(ctx, agreementID, number, now); err != nil {
		return nil, err
	}

	unpaid, _, err := s.agreements.UnpaidCount(ctx, agreementID, now)
	if err != nil {
		return nil, err
	}
	if unpaid == 0 {
		if err := s.agreements.UpdateStatus(ctx, agreementID, domain.AgreementStatusFulfilled); err != nil {
			return nil, err
		}
		if err := s.titles.UpdateStatusMany(ctx, agreement.TitleIDs, domain.TitleStatusPaid); err != nil {
			log.Printf("[AGREEMENTS] failed to settle covered titles: %v", err)
		}
		agreement.Status = domain.AgreementStatusFulfilled
		s.notifyStatus(agreement)
	}

	return s.agreements.GetByID(ctx, agreementID)
}

// RefreshStatus marks an active agreement broken when a schedule installment
// has passed its due date unpaid. Recomputed on demand, like title statuses.
func (s *AgreementService) RefreshStatus(ctx context.Context, agreementID string) (*domain.Agreement, error) {
	agreement, err := s.agreements.GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if agreement.Status != domain.AgreementStatusActive {
		return agreement, nil
	}

	_, pastDue, err := s.agreements.UnpaidCount(ctx, agreementID, engine.DateOnly(s.now()))
	if err != nil {
		return nil, err
	}
	if pastDue > 0 {
		if err := s.agreements.UpdateStatus(ctx, agreementID, domain.AgreementStatusBroken); err != nil {
			return nil, err
		}
		agreement.Status = domain.AgreementStatusBroken
		s.notifyStatus(agreement)
	}

	return agreement, nil
}

func (s *AgreementService) releaseTitles(ctx context.Context, titleIDs []string) {
	var open []string
	for _, titleID := range titleIDs {
		title, err := s.titles.GetByID(ctx, titleID)
		if err != nil {
			log.Printf("[AGREEMENTS] release lookup failed for %s: %v", titleID, err)
			continue
		}
		if title.Status != domain.TitleStatusPaid {
			open = append(open, titleID)
		}
	}
	if len(open) == 0 {
		return
	}
	if err := s.titles.UpdateStatusMany(ctx, open, domain.TitleStatusOpen); err != nil {
		log.Printf("[AGREEMENTS] failed to release titles: %v", err)
	}
}

func (s *AgreementService) notifyStatus(a *domain.Agreement) {
	if s.ws == nil {
		return
	}
	_ = s.ws.NotifyAgreementStatus(context.Background(), a.ID, a.ClientID, string(a.Status))
}
