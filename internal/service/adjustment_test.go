package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"debtster-core/internal/domain"
	"debtster-core/internal/engine"
	"debtster-core/internal/repository"

	"github.com/shopspring/decimal"
)

func (r *fakeTitleRepo) UpdateBalance(ctx context.Context, id string, newAmount, expected decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.titles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !t.Amount.Equal(expected) {
		return repository.ErrBalanceConflict
	}
	t.Amount = newAmount
	r.titles[id] = t
	return nil
}

type fakeAdjustmentRepo struct {
	records []domain.Adjustment
}

func (r *fakeAdjustmentRepo) Insert(ctx context.Context, a *domain.Adjustment) error {
	r.records = append(r.records, *a)
	return nil
}

func (r *fakeAdjustmentRepo) ListByTitle(ctx context.Context, titleID string) ([]domain.Adjustment, error) {
	var out []domain.Adjustment
	for _, rec := range r.records {
		if rec.TitleID == titleID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestAdjustmentService_ChargeUpdatesBalanceAndHistory(t *testing.T) {
	titles := newFakeTitleRepo(domain.Title{
		ID:       "t1",
		ClientID: "c1",
		Amount:   decimal.NewFromInt(500),
		DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:   domain.TitleStatusOverdue,
	})
	adjustments := &fakeAdjustmentRepo{}

	svc := NewAdjustmentService(titles, adjustments)
	svc.now = fixedNow(2025, time.June, 15)

	rec, err := svc.ApplyCharge(context.Background(), AdjustmentInput{
		TitleID:     "t1",
		Kind:        domain.AdjustmentPenalty,
		Mode:        domain.AdjustPercent,
		Value:       decimal.NewFromInt(10),
		Description: "late fee",
	})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}

	if !rec.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("charge amount %s, want 50", rec.Amount)
	}
	if !rec.BalanceAfter.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("balance after %s, want 550", rec.BalanceAfter)
	}

	title, _ := titles.GetByID(context.Background(), "t1")
	if !title.Amount.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("stored balance %s, want 550", title.Amount)
	}

	history, err := svc.History(context.Background(), "t1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Description != "late fee" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestAdjustmentService_DiscountReducesBalance(t *testing.T) {
	titles := newFakeTitleRepo(domain.Title{
		ID:       "t1",
		ClientID: "c1",
		Amount:   decimal.NewFromInt(500),
		DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:   domain.TitleStatusOverdue,
	})

	svc := NewAdjustmentService(titles, &fakeAdjustmentRepo{})
	svc.now = fixedNow(2025, time.June, 15)

	rec, err := svc.ApplyDiscount(context.Background(), AdjustmentInput{
		TitleID: "t1",
		Kind:    domain.AdjustmentDiscount,
		Mode:    domain.AdjustFixed,
		Value:   decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if !rec.BalanceAfter.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("balance after %s, want 400", rec.BalanceAfter)
	}

	// a discount larger than the balance never lands
	_, err = svc.ApplyDiscount(context.Background(), AdjustmentInput{
		TitleID: "t1",
		Kind:    domain.AdjustmentDiscount,
		Mode:    domain.AdjustFixed,
		Value:   decimal.NewFromInt(600),
	})
	if _, ok := err.(*engine.ValidationError); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}

	title, _ := titles.GetByID(context.Background(), "t1")
	if !title.Amount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("rejected discount must not touch the balance, got %s", title.Amount)
	}
}

func TestAdjustmentService_RejectsSettledAndHeaderTitles(t *testing.T) {
	total := 2
	titles := newFakeTitleRepo(
		domain.Title{
			ID:       "paid",
			ClientID: "c1",
			Amount:   decimal.NewFromInt(500),
			DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Status:   domain.TitleStatusPaid,
		},
		domain.Title{
			ID:                "header",
			ClientID:          "c1",
			Amount:            decimal.NewFromInt(1000),
			DueDate:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Status:            domain.TitleStatusOpen,
			TotalInstallments: &total,
		},
	)

	svc := NewAdjustmentService(titles, &fakeAdjustmentRepo{})
	svc.now = fixedNow(2025, time.June, 15)

	for _, id := range []string{"paid", "header"} {
		_, err := svc.ApplyCharge(context.Background(), AdjustmentInput{
			TitleID: id,
			Kind:    domain.AdjustmentInterest,
			Mode:    domain.AdjustFixed,
			Value:   decimal.NewFromInt(10),
		})
		if _, ok := err.(*engine.ValidationError); !ok {
			t.Fatalf("title %s: expected validation error, got %v", id, err)
		}
	}
}

func TestAdjustmentService_SurfacesBalanceConflict(t *testing.T) {
	titles := newFakeTitleRepo(domain.Title{
		ID:       "t1",
		ClientID: "c1",
		Amount:   decimal.NewFromInt(500),
		DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:   domain.TitleStatusOverdue,
	})

	svc := NewAdjustmentService(&staleBalanceRepo{fakeTitleRepo: titles}, &fakeAdjustmentRepo{})
	svc.now = fixedNow(2025, time.June, 15)

	_, err := svc.ApplyCharge(context.Background(), AdjustmentInput{
		TitleID: "t1",
		Kind:    domain.AdjustmentInterest,
		Mode:    domain.AdjustFixed,
		Value:   decimal.NewFromInt(10),
	})
	if !errors.Is(err, repository.ErrBalanceConflict) {
		t.Fatalf("expected balance conflict, got %v", err)
	}
}

// staleBalanceRepo simulates a concurrent writer changing the balance between
// the read and the compare-and-swap.
type staleBalanceRepo struct {
	*fakeTitleRepo
}

func (r *staleBalanceRepo) GetByID(ctx context.Context, id string) (*domain.Title, error) {
	title, err := r.fakeTitleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *title
	stale.Amount = title.Amount.Sub(decimal.NewFromInt(1))
	return &stale, nil
}
