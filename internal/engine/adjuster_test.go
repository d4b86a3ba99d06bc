package engine

import (
	"testing"

	"debtster-core/internal/domain"
)

func TestApplyCharge_Fixed(t *testing.T) {
	res, err := ApplyCharge(dec(500), domain.AdjustmentPenalty, dec(25.50), domain.AdjustFixed)
	if err != nil {
		t.Fatalf("apply charge: %v", err)
	}
	if !res.NewBalance.Equal(dec(525.50)) {
		t.Fatalf("new balance %s, want 525.50", res.NewBalance)
	}
	if res.Record.Kind != domain.AdjustmentPenalty || !res.Record.Amount.Equal(dec(25.50)) {
		t.Fatalf("unexpected audit record: %+v", res.Record)
	}
	if !res.Record.BalanceBefore.Equal(dec(500)) || !res.Record.BalanceAfter.Equal(dec(525.50)) {
		t.Fatalf("audit record balances: %+v", res.Record)
	}
}

func TestApplyCharge_Percent(t *testing.T) {
	// 2% interest on 350.00 → 7.00
	res, err := ApplyCharge(dec(350), domain.AdjustmentInterest, dec(2), domain.AdjustPercent)
	if err != nil {
		t.Fatalf("apply charge: %v", err)
	}
	if !res.Record.Amount.Equal(dec(7)) {
		t.Fatalf("resolved amount %s, want 7", res.Record.Amount)
	}
	if !res.NewBalance.Equal(dec(357)) {
		t.Fatalf("new balance %s, want 357", res.NewBalance)
	}
}

func TestApplyCharge_RejectsNonPositiveAmounts(t *testing.T) {
	if _, err := ApplyCharge(dec(500), domain.AdjustmentInterest, dec(0), domain.AdjustFixed); !isValidation(err) {
		t.Fatalf("zero charge should fail validation, got %v", err)
	}
	if _, err := ApplyCharge(dec(500), domain.AdjustmentInterest, dec(-10), domain.AdjustFixed); !isValidation(err) {
		t.Fatalf("negative charge should fail validation, got %v", err)
	}
	// percent of a zero balance resolves to zero
	if _, err := ApplyCharge(dec(0), domain.AdjustmentPenalty, dec(5), domain.AdjustPercent); !isValidation(err) {
		t.Fatalf("zero resolved amount should fail validation, got %v", err)
	}
	if _, err := ApplyCharge(dec(500), domain.AdjustmentDiscount, dec(10), domain.AdjustFixed); !isValidation(err) {
		t.Fatalf("discount kind is not a charge, got %v", err)
	}
}

func TestApplyDiscount_Fixed(t *testing.T) {
	res, err := ApplyDiscount(dec(500), dec(100), domain.AdjustFixed)
	if err != nil {
		t.Fatalf("apply discount: %v", err)
	}
	if !res.NewBalance.Equal(dec(400)) {
		t.Fatalf("new balance %s, want 400", res.NewBalance)
	}
	if res.Record.Kind != domain.AdjustmentDiscount {
		t.Fatalf("record kind %s, want discount", res.Record.Kind)
	}
}

func TestApplyDiscount_CannotExceedBalance(t *testing.T) {
	if _, err := ApplyDiscount(dec(500), dec(600), domain.AdjustFixed); !isValidation(err) {
		t.Fatalf("discount above balance should fail validation, got %v", err)
	}
}

func TestApplyDiscount_FullBalanceReachesZero(t *testing.T) {
	res, err := ApplyDiscount(dec(500), dec(100), domain.AdjustPercent)
	if err != nil {
		t.Fatalf("apply discount: %v", err)
	}
	if !res.NewBalance.IsZero() {
		t.Fatalf("full discount should zero the balance, got %s", res.NewBalance)
	}
}

func TestApplyDiscount_InvalidMode(t *testing.T) {
	if _, err := ApplyDiscount(dec(500), dec(10), domain.AdjustmentMode("half")); !isValidation(err) {
		t.Fatalf("unknown mode should fail validation, got %v", err)
	}
}
