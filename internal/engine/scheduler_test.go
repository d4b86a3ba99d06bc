package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestScheduleInstallments_ThirtyDaySteps(t *testing.T) {
	plan, err := ScheduleInstallments(dec(1000), 3, date(2025, 1, 1), 30)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(plan))
	}

	// additive 30-day spacing, not calendar months
	wantDue := []string{"2025-01-01", "2025-01-31", "2025-03-02"}
	for i, inst := range plan {
		if got := inst.DueDate.Format("2006-01-02"); got != wantDue[i] {
			t.Errorf("installment %d due %s, want %s", inst.Number, got, wantDue[i])
		}
	}

	if !plan[0].Amount.Equal(dec(333.33)) || !plan[1].Amount.Equal(dec(333.33)) {
		t.Fatalf("expected 333.33 base installments, got %s / %s", plan[0].Amount, plan[1].Amount)
	}
	// the last installment absorbs the rounding remainder
	if !plan[2].Amount.Equal(dec(333.34)) {
		t.Fatalf("expected final installment 333.34, got %s", plan[2].Amount)
	}
}

func TestScheduleInstallments_SumsToPrincipalExactly(t *testing.T) {
	cases := []struct {
		principal float64
		count     int
	}{
		{1000.00, 3},
		{100.01, 7},
		{0.05, 2},
		{999.99, 12},
	}

	for _, tc := range cases {
		plan, err := ScheduleInstallments(dec(tc.principal), tc.count, date(2025, 1, 1), 15)
		if err != nil {
			t.Fatalf("schedule(%v, %d): %v", tc.principal, tc.count, err)
		}

		sum := decimal.Zero
		for _, inst := range plan {
			sum = sum.Add(inst.Amount)
		}
		if !sum.Equal(dec(tc.principal)) {
			t.Errorf("schedule(%v, %d) sums to %s", tc.principal, tc.count, sum)
		}
	}
}

func TestScheduleInstallments_Preconditions(t *testing.T) {
	if _, err := ScheduleInstallments(dec(100), 1, date(2025, 1, 1), 30); !isValidation(err) {
		t.Fatalf("count < 2 should fail validation, got %v", err)
	}
	if _, err := ScheduleInstallments(dec(100), 3, date(2025, 1, 1), 0); !isValidation(err) {
		t.Fatalf("intervalDays < 1 should fail validation, got %v", err)
	}
	if _, err := ScheduleInstallments(dec(0), 3, date(2025, 1, 1), 30); !isValidation(err) {
		t.Fatalf("zero principal should fail validation, got %v", err)
	}
}

func TestScheduleInstallments_RejectsPrincipalTooSmallForCount(t *testing.T) {
	// 0.04 / 7 rounds to a 0.01 base; the absorbing final installment would
	// come out at -0.02, so the split must be refused instead
	if _, err := ScheduleInstallments(dec(0.04), 7, date(2025, 1, 1), 30); !isValidation(err) {
		t.Fatalf("overshooting base should fail validation, got %v", err)
	}
	// 0.01 / 2 rounds the base up to 0.01, leaving a zero final installment
	if _, err := ScheduleInstallments(dec(0.01), 2, date(2025, 1, 1), 30); !isValidation(err) {
		t.Fatalf("zero final installment should fail validation, got %v", err)
	}

	// the smallest splittable principal for the count still works
	plan, err := ScheduleInstallments(dec(0.07), 7, date(2025, 1, 1), 30)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	for _, inst := range plan {
		if !inst.Amount.IsPositive() {
			t.Fatalf("installment %d has non-positive amount %s", inst.Number, inst.Amount)
		}
	}
}

func isValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
