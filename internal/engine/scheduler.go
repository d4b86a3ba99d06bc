package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledInstallment is one line of the cronograma produced when a debt is
// split into installments.
type ScheduledInstallment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// ScheduleInstallments splits a principal into count installments spaced
// intervalDays apart, starting at startDate. Amounts are rounded half-up to
// two decimal places; the final installment absorbs the rounding remainder so
// the schedule always sums to the principal exactly.
func ScheduleInstallments(principal decimal.Decimal, count int, startDate time.Time, intervalDays int) ([]ScheduledInstallment, error) {
	if count < 2 {
		return nil, &ValidationError{Field: "installment_count", Message: "must be at least 2"}
	}
	if intervalDays < 1 {
		return nil, &ValidationError{Field: "interval_days", Message: "must be at least 1"}
	}
	if !principal.IsPositive() {
		return nil, &ValidationError{Field: "principal", Message: "must be greater than zero"}
	}
	if startDate.IsZero() {
		return nil, &ValidationError{Field: "start_date", Message: "is required"}
	}

	base := principal.DivRound(decimal.NewFromInt(int64(count)), 2)

	// the final installment absorbs the rounding remainder; when the rounded
	// base overshoots a tiny principal that remainder would go to zero or
	// negative, and no installment may owe a non-positive amount
	final := principal.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))
	if !base.IsPositive() || !final.IsPositive() {
		return nil, &ValidationError{Field: "principal", Message: "too small to split into that many positive installments"}
	}

	start := DateOnly(startDate)

	out := make([]ScheduledInstallment, count)
	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = principal.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		out[i] = ScheduledInstallment{
			Number:  i + 1,
			Amount:  amount,
			DueDate: start.AddDate(0, 0, i*intervalDays),
		}
	}

	return out, nil
}
