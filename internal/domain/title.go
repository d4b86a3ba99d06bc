package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TitleStatus string

const (
	TitleStatusOpen        TitleStatus = "open"
	TitleStatusPaid        TitleStatus = "paid"
	TitleStatusOverdue     TitleStatus = "overdue"
	TitleStatusInAgreement TitleStatus = "in_agreement"
)

// TitleKind is derived structurally from ParentTitleID/TotalInstallments,
// never stored.
type TitleKind int

const (
	KindStandalone TitleKind = iota
	KindParent
	KindInstallment
)

type Title struct {
	ID       string
	ClientID string

	Amount  decimal.Decimal
	DueDate time.Time

	// Status is the stored status; it may be stale relative to DueDate.
	// engine.ResolveStatus derives the effective one.
	Status TitleStatus

	ParentTitleID     *string
	InstallmentNumber *int
	TotalInstallments *int
	OriginalAmount    *decimal.Decimal

	// Joined client display fields; not used by the engine itself.
	ClientName  *string
	ClientTaxID *string

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (t Title) Kind() TitleKind {
	if t.ParentTitleID != nil {
		return KindInstallment
	}
	if t.TotalInstallments != nil && *t.TotalInstallments >= 2 {
		return KindParent
	}
	return KindStandalone
}

// GroupKey is the id of the logical debt this title belongs to.
func (t Title) GroupKey() string {
	if t.ParentTitleID != nil {
		return *t.ParentTitleID
	}
	return t.ID
}
