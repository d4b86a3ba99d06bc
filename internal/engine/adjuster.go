package engine

import (
	"github.com/shopspring/decimal"

	"debtster-core/internal/domain"
)

// AdjustmentResult pairs the recomputed balance with the audit record the
// caller must append to the installment's adjustment history. The engine
// never persists; id and timestamp are assigned by the owning service.
type AdjustmentResult struct {
	NewBalance decimal.Decimal
	Record     domain.Adjustment
}

// ApplyCharge adds an interest or penalty charge to an installment's current
// balance. In percent mode the charge resolves against the current balance.
func ApplyCharge(currentBalance decimal.Decimal, kind domain.AdjustmentKind, value decimal.Decimal, mode domain.AdjustmentMode) (AdjustmentResult, error) {
	if kind != domain.AdjustmentInterest && kind != domain.AdjustmentPenalty {
		return AdjustmentResult{}, &ValidationError{Field: "kind", Message: "must be interest or penalty"}
	}

	amount, err := resolveAmount(currentBalance, value, mode)
	if err != nil {
		return AdjustmentResult{}, err
	}

	newBalance := currentBalance.Add(amount)
	return AdjustmentResult{
		NewBalance: newBalance,
		Record: domain.Adjustment{
			Kind:          kind,
			Mode:          mode,
			Value:         value,
			Amount:        amount,
			BalanceBefore: currentBalance,
			BalanceAfter:  newBalance,
		},
	}, nil
}

// ApplyDiscount subtracts a discount from an installment's current balance.
// A discount can never exceed the outstanding balance.
func ApplyDiscount(currentBalance, value decimal.Decimal, mode domain.AdjustmentMode) (AdjustmentResult, error) {
	amount, err := resolveAmount(currentBalance, value, mode)
	if err != nil {
		return AdjustmentResult{}, err
	}
	if amount.GreaterThan(currentBalance) {
		return AdjustmentResult{}, &ValidationError{Field: "amount", Message: "discount exceeds outstanding balance"}
	}

	newBalance := currentBalance.Sub(amount)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}

	return AdjustmentResult{
		NewBalance: newBalance,
		Record: domain.Adjustment{
			Kind:          domain.AdjustmentDiscount,
			Mode:          mode,
			Value:         value,
			Amount:        amount,
			BalanceBefore: currentBalance,
			BalanceAfter:  newBalance,
		},
	}, nil
}

func resolveAmount(balance, value decimal.Decimal, mode domain.AdjustmentMode) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch mode {
	case domain.AdjustFixed:
		amount = value
	case domain.AdjustPercent:
		amount = balance.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return decimal.Decimal{}, &ValidationError{Field: "mode", Message: "must be fixed or percent"}
	}

	if !amount.IsPositive() {
		return decimal.Decimal{}, &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	return amount, nil
}
