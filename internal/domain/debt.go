package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is the logical grouping of one client's related titles: either a
// single standalone title, or a parent header plus its generated
// installments. It is recomputed on every read, never persisted.
type Debt struct {
	ID       string
	ClientID string

	// Titles holds every fetched constituent (installments sorted by
	// number), including paid and in-agreement rows kept for display.
	// The parent header row is not part of the list.
	Titles []Title

	TotalInstallments int

	// TotalOutstanding sums constituents whose effective status is
	// open or overdue.
	TotalOutstanding decimal.Decimal

	OpenCount int
	PaidCount int

	EarliestDueDate *time.Time
	HasOverdue      bool

	ClientName  *string
	ClientTaxID *string
}
