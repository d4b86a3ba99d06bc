package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AgreementStatus string

const (
	AgreementStatusActive    AgreementStatus = "active"
	AgreementStatusFulfilled AgreementStatus = "fulfilled"
	AgreementStatusBroken    AgreementStatus = "broken"
	AgreementStatusCancelled AgreementStatus = "cancelled"
)

type AgreementInstallmentStatus string

const (
	AgreementInstallmentPending AgreementInstallmentStatus = "pending"
	AgreementInstallmentPaid    AgreementInstallmentStatus = "paid"
	AgreementInstallmentOverdue AgreementInstallmentStatus = "overdue"
)

// Agreement is a negotiated settlement restructuring one or more titles of a
// single client into a new schedule.
type Agreement struct {
	ID       string
	ClientID string
	TitleIDs []string

	// OriginalAmount is the covered titles' outstanding balance at creation
	// time; AgreedAmount is the definitive sum of the schedule totals.
	OriginalAmount decimal.Decimal
	AgreedAmount   decimal.Decimal

	InstallmentCount    int
	InterestRatePercent decimal.Decimal
	FirstDueDate        time.Time

	// DiscountPercent may be negative when interest pushes the agreed
	// total above the original balance.
	DiscountPercent decimal.Decimal

	Status   AgreementStatus
	Schedule []AgreementInstallment

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

type AgreementInstallment struct {
	Number         int
	BaseAmount     decimal.Decimal
	InterestAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	DueDate        time.Time
	Status         AgreementInstallmentStatus
	PaidAt         *time.Time
}
