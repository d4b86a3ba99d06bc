package service

import (
	"context"
	"time"

	"debtster-core/internal/domain"
	"debtster-core/internal/engine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdjustmentTitleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Title, error)
	UpdateBalance(ctx context.Context, id string, newAmount, expected decimal.Decimal) error
}

type AdjustmentRepository interface {
	Insert(ctx context.Context, a *domain.Adjustment) error
	ListByTitle(ctx context.Context, titleID string) ([]domain.Adjustment, error)
}

type AdjustmentService struct {
	titles      AdjustmentTitleRepository
	adjustments AdjustmentRepository
	now         func() time.Time
}

func NewAdjustmentService(titles AdjustmentTitleRepository, adjustments AdjustmentRepository) *AdjustmentService {
	return &AdjustmentService{
		titles:      titles,
		adjustments: adjustments,
		now:         time.Now,
	}
}

type AdjustmentInput struct {
	TitleID     string
	Kind        domain.AdjustmentKind
	Mode        domain.AdjustmentMode
	Value       decimal.Decimal
	Description string
	UserID      *int64
}

// ApplyCharge adds interest or a penalty to one installment's balance. The
// balance write is a compare-and-swap against the balance the charge was
// computed from; on repository.ErrBalanceConflict the caller retries with
// fresh data.
func (s *AdjustmentService) ApplyCharge(ctx context.Context, in AdjustmentInput) (*domain.Adjustment, error) {
	title, err := s.loadAdjustableTitle(ctx, in.TitleID)
	if err != nil {
		return nil, err
	}

	res, err := engine.ApplyCharge(title.Amount, in.Kind, in.Value, in.Mode)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, title, res, in)
}

// ApplyDiscount subtracts a discount from one installment's balance, under
// the same conflict contract as ApplyCharge.
func (s *AdjustmentService) ApplyDiscount(ctx context.Context, in AdjustmentInput) (*domain.Adjustment, error) {
	title, err := s.loadAdjustableTitle(ctx, in.TitleID)
	if err != nil {
		return nil, err
	}

	res, err := engine.ApplyDiscount(title.Amount, in.Value, in.Mode)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, title, res, in)
}

func (s *AdjustmentService) History(ctx context.Context, titleID string) ([]domain.Adjustment, error) {
	return s.adjustments.ListByTitle(ctx, titleID)
}

func (s *AdjustmentService) loadAdjustableTitle(ctx context.Context, id string) (*domain.Title, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title.Kind() == domain.KindParent {
		return nil, &engine.ValidationError{Field: "title_id", Message: "debt headers carry no adjustable balance"}
	}
	if !engine.IsEffectivelyOpen(*title, s.now()) {
		return nil, &engine.ValidationError{Field: "title_id", Message: "title is not open for adjustment"}
	}
	return title, nil
}

func (s *AdjustmentService) persist(ctx context.Context, title *domain.Title, res engine.AdjustmentResult, in AdjustmentInput) (*domain.Adjustment, error) {
	if err := s.titles.UpdateBalance(ctx, title.ID, res.NewBalance, title.Amount); err != nil {
		return nil, err
	}

	record := res.Record
	record.ID = uuid.NewString()
	record.TitleID = title.ID
	record.Description = in.Description
	record.UserID = in.UserID
	now := s.now()
	record.CreatedAt = &now

	if err := s.adjustments.Insert(ctx, &record); err != nil {
		// the balance write already landed; the history row is the audit
		// trail, so surface the failure instead of hiding it
		return nil, err
	}

	return &record, nil
}
