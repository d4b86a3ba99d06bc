package engine

import (
	"time"

	"debtster-core/internal/domain"

	"github.com/shopspring/decimal"
)

// AgreementTerms are the operator-entered parameters of a settlement.
type AgreementTerms struct {
	AgreedAmount        decimal.Decimal
	InstallmentCount    int
	InterestRatePercent decimal.Decimal
	FirstDueDate        time.Time
}

// ComputeAgreementSchedule converts settlement terms into the agreement
// cronograma.
//
// Interest accrues linearly by installment position: installment i carries
// base × rate/100 × i. This is deliberately a simple non-compounding
// schedule, the model the business operates with, not an approximation of
// compound interest. The base amount stays unrounded through the
// computation; only each installment's total is currency-rounded.
func ComputeAgreementSchedule(terms AgreementTerms) ([]domain.AgreementInstallment, error) {
	if !terms.AgreedAmount.IsPositive() {
		return nil, &ValidationError{Field: "agreed_amount", Message: "must be greater than zero"}
	}
	if terms.InstallmentCount < 1 {
		return nil, &ValidationError{Field: "installment_count", Message: "must be at least 1"}
	}
	if terms.InterestRatePercent.IsNegative() {
		return nil, &ValidationError{Field: "interest_rate_percent", Message: "must not be negative"}
	}
	if terms.FirstDueDate.IsZero() {
		return nil, &ValidationError{Field: "first_due_date", Message: "is required"}
	}

	base := terms.AgreedAmount.Div(decimal.NewFromInt(int64(terms.InstallmentCount)))
	rate := terms.InterestRatePercent.Div(decimal.NewFromInt(100))

	schedule := make([]domain.AgreementInstallment, terms.InstallmentCount)
	for i := 1; i <= terms.InstallmentCount; i++ {
		interest := base.Mul(rate).Mul(decimal.NewFromInt(int64(i)))
		total := base.Add(interest).Round(2)

		schedule[i-1] = domain.AgreementInstallment{
			Number:         i,
			BaseAmount:     base.Round(2),
			InterestAmount: interest.Round(2),
			TotalAmount:    total,
			DueDate:        AddMonths(terms.FirstDueDate, i-1),
			Status:         domain.AgreementInstallmentPending,
		}
	}

	return schedule, nil
}

// ScheduleTotal sums the rounded installment totals; this is the definitive
// agreed amount persisted on the agreement.
func ScheduleTotal(schedule []domain.AgreementInstallment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.TotalAmount)
	}
	return total
}

// DiscountPercent is the settlement's effective discount relative to the
// pre-agreement balance. Negative when interest makes the agreed total exceed
// the original; callers display it unclamped. Zero when the original balance
// is zero.
func DiscountPercent(originalAmount, agreedTotal decimal.Decimal) decimal.Decimal {
	if originalAmount.IsZero() {
		return decimal.Zero
	}
	return originalAmount.Sub(agreedTotal).
		Mul(decimal.NewFromInt(100)).
		DivRound(originalAmount, 2)
}
