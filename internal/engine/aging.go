package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingItem is one strictly-overdue installment considered for bucketing.
type AgingItem struct {
	DueDate     time.Time
	Outstanding decimal.Decimal
}

// AgingBucket aggregates count and value for one fixed day range.
// MaxDays < 0 means unbounded (the 91+ bucket).
type AgingBucket struct {
	Label   string
	MinDays int
	MaxDays int
	Color   string

	Count   int
	Value   decimal.Decimal
	Percent decimal.Decimal
}

// agingRanges are the portfolio risk brackets; colors are the fixed display
// colors the dashboards use.
var agingRanges = []AgingBucket{
	{Label: "0-30", MinDays: 0, MaxDays: 30, Color: "#facc15"},
	{Label: "31-60", MinDays: 31, MaxDays: 60, Color: "#fb923c"},
	{Label: "61-90", MinDays: 61, MaxDays: 90, Color: "#f87171"},
	{Label: "91+", MinDays: 91, MaxDays: -1, Color: "#b91c1c"},
}

// ClassifyAging buckets overdue installments into the four fixed day ranges.
// Only items strictly overdue at asOf are counted; all four buckets are
// always returned, empty ones with zero count and value, so dashboards render
// a stable layout. Percent is each bucket's share of the total overdue value,
// zero when nothing is overdue.
func ClassifyAging(items []AgingItem, asOf time.Time) []AgingBucket {
	buckets := make([]AgingBucket, len(agingRanges))
	copy(buckets, agingRanges)
	for i := range buckets {
		buckets[i].Value = decimal.Zero
		buckets[i].Percent = decimal.Zero
	}

	total := decimal.Zero
	for _, item := range items {
		days := DaysBetween(item.DueDate, asOf)
		if days <= 0 {
			continue
		}
		for i := range buckets {
			if days < buckets[i].MinDays {
				continue
			}
			if buckets[i].MaxDays >= 0 && days > buckets[i].MaxDays {
				continue
			}
			buckets[i].Count++
			buckets[i].Value = buckets[i].Value.Add(item.Outstanding)
			total = total.Add(item.Outstanding)
			break
		}
	}

	if total.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for i := range buckets {
			buckets[i].Percent = buckets[i].Value.Mul(hundred).DivRound(total, 2)
		}
	}

	return buckets
}
