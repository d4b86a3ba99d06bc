package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustmentKind string

const (
	AdjustmentInterest AdjustmentKind = "interest"
	AdjustmentPenalty  AdjustmentKind = "penalty"
	AdjustmentDiscount AdjustmentKind = "discount"
)

type AdjustmentMode string

const (
	AdjustFixed   AdjustmentMode = "fixed"
	AdjustPercent AdjustmentMode = "percent"
)

// Adjustment is the audit record of one charge or discount applied to a
// single installment's balance.
type Adjustment struct {
	ID      string
	TitleID string

	Kind AdjustmentKind
	Mode AdjustmentMode

	// Value is the operator input (fixed amount or percent); Amount is the
	// resolved currency amount actually added or subtracted.
	Value  decimal.Decimal
	Amount decimal.Decimal

	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal

	Description string
	UserID      *int64

	CreatedAt *time.Time
}
