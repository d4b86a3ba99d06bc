package service

import (
	"context"
	"log"
	"time"

	"debtster-core/internal/domain"
	"debtster-core/internal/engine"
	"debtster-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TitleRepository interface {
	List(ctx context.Context, f repository.TitlesFilter) ([]domain.Title, error)
	GetByID(ctx context.Context, id string) (*domain.Title, error)
	Create(ctx context.Context, t *domain.Title) error
	UpdateStatus(ctx context.Context, id string, status domain.TitleStatus) error
	CreateInstallments(ctx context.Context, parentID string, installments []domain.Title) error
}

type DebtService struct {
	titles TitleRepository
	now    func() time.Time
}

func NewDebtService(titles TitleRepository) *DebtService {
	return &DebtService{
		titles: titles,
		now:    time.Now,
	}
}

type CreateTitleInput struct {
	ClientID string
	Amount   decimal.Decimal
	DueDate  time.Time
}

func (s *DebtService) CreateTitle(ctx context.Context, in CreateTitleInput) (*domain.Title, error) {
	if in.ClientID == "" {
		return nil, &engine.ValidationError{Field: "client_id", Message: "is required"}
	}
	if !in.Amount.IsPositive() {
		return nil, &engine.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if in.DueDate.IsZero() {
		return nil, &engine.ValidationError{Field: "due_date", Message: "is required"}
	}

	t := &domain.Title{
		ID:       uuid.NewString(),
		ClientID: in.ClientID,
		Amount:   in.Amount,
		DueDate:  engine.DateOnly(in.DueDate),
		Status:   domain.TitleStatusOpen,
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListOpenDebts fetches a client's titles (or the whole portfolio), resolves
// each effective status, groups them into logical debts and keeps only those
// still carrying an open obligation. Stored statuses that disagree with the
// resolved one are reconciled in the background; the read path never waits
// on those writes.
func (s *DebtService) ListOpenDebts(ctx context.Context, clientID *string) ([]domain.Debt, error) {
	titles, err := s.titles.List(ctx, repository.TitlesFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}

	today := s.now()
	s.reconcileStatuses(titles, today)

	debts, inconsistencies := engine.GroupDebts(titles, today)
	for _, inc := range inconsistencies {
		log.Printf("[DEBTS] inconsistent title excluded: %v", inc)
	}

	return engine.OpenDebts(debts), nil
}

// GetDebt returns one logical debt with its full constituent list, paid and
// in-agreement rows included.
func (s *DebtService) GetDebt(ctx context.Context, debtID string) (*domain.Debt, error) {
	header, err := s.titles.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	titles := []domain.Title{*header}
	if header.Kind() == domain.KindParent {
		children, err := s.titles.List(ctx, repository.TitlesFilter{ParentTitleID: &header.ID})
		if err != nil {
			return nil, err
		}
		titles = append(titles, children...)
	}

	today := s.now()
	s.reconcileStatuses(titles, today)

	debts, inconsistencies := engine.GroupDebts(titles, today)
	for _, inc := range inconsistencies {
		log.Printf("[DEBTS] inconsistent title excluded: %v", inc)
	}
	if len(debts) == 0 {
		return nil, repository.ErrNotFound
	}
	return &debts[0], nil
}

type SplitDebtInput struct {
	TitleID          string
	InstallmentCount int
	StartDate        time.Time
	IntervalDays     int
}

// SplitDebt converts a standalone title into a debt header plus generated
// installment rows, one per scheduler output.
func (s *DebtService) SplitDebt(ctx context.Context, in SplitDebtInput) ([]domain.Title, error) {
	title, err := s.titles.GetByID(ctx, in.TitleID)
	if err != nil {
		return nil, err
	}

	if title.Kind() != domain.KindStandalone {
		return nil, &engine.ValidationError{Field: "title_id", Message: "only a standalone title can be split"}
	}
	if !engine.IsEffectivelyOpen(*title, s.now()) {
		return nil, &engine.ValidationError{Field: "title_id", Message: "title is not open for splitting"}
	}

	plan, err := engine.ScheduleInstallments(title.Amount, in.InstallmentCount, in.StartDate, in.IntervalDays)
	if err != nil {
		return nil, err
	}

	original := title.Amount
	installments := make([]domain.Title, len(plan))
	for i, line := range plan {
		number := line.Number
		installments[i] = domain.Title{
			ID:                uuid.NewString(),
			ClientID:          title.ClientID,
			Amount:            line.Amount,
			DueDate:           line.DueDate,
			Status:            domain.TitleStatusOpen,
			ParentTitleID:     &title.ID,
			InstallmentNumber: &number,
			OriginalAmount:    &original,
		}
	}

	if err := s.titles.CreateInstallments(ctx, title.ID, installments); err != nil {
		return nil, err
	}

	return installments, nil
}

// reconcileStatuses writes corrected statuses back in the background,
// best-effort: a failed write only logs, the next read resolves again.
func (s *DebtService) reconcileStatuses(titles []domain.Title, today time.Time) {
	type correction struct {
		id     string
		status domain.TitleStatus
	}

	var corrections []correction
	for _, t := range titles {
		if t.Kind() == domain.KindParent {
			continue
		}
		if effective := engine.ResolveStatus(t, today); effective != t.Status {
			corrections = append(corrections, correction{id: t.ID, status: effective})
		}
	}
	if len(corrections) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, c := range corrections {
			if err := s.titles.UpdateStatus(ctx, c.id, c.status); err != nil {
				log.Printf("[DEBTS] status reconcile failed for %s: %v", c.id, err)
			}
		}
	}()
}
