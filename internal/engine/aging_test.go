package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyAging_PlacesItemsInRanges(t *testing.T) {
	asOf := date(2025, 6, 15)

	items := []AgingItem{
		{DueDate: date(2025, 5, 1), Outstanding: dec(500)},  // 45 days overdue
		{DueDate: date(2025, 6, 5), Outstanding: dec(200)},  // 10 days overdue
		{DueDate: date(2025, 6, 15), Outstanding: dec(999)}, // due today: not overdue
		{DueDate: date(2025, 7, 1), Outstanding: dec(999)},  // future: not overdue
	}

	buckets := ClassifyAging(items, asOf)
	if len(buckets) != 4 {
		t.Fatalf("expected the 4 fixed buckets, got %d", len(buckets))
	}

	if buckets[0].Count != 1 || !buckets[0].Value.Equal(dec(200)) {
		t.Fatalf("0-30 bucket: count=%d value=%s", buckets[0].Count, buckets[0].Value)
	}
	if buckets[1].Count != 1 || !buckets[1].Value.Equal(dec(500)) {
		t.Fatalf("31-60 bucket: count=%d value=%s", buckets[1].Count, buckets[1].Value)
	}
	if buckets[2].Count != 0 || buckets[3].Count != 0 {
		t.Fatalf("61-90 and 91+ buckets should be empty: %+v", buckets[2:])
	}

	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Value)
	}
	if !total.Equal(dec(700)) {
		t.Fatalf("bucket values should sum to the overdue total, got %s", total)
	}

	// 200/700 and 500/700
	if !buckets[0].Percent.Equal(dec(28.57)) {
		t.Fatalf("0-30 percent: %s", buckets[0].Percent)
	}
	if !buckets[1].Percent.Equal(dec(71.43)) {
		t.Fatalf("31-60 percent: %s", buckets[1].Percent)
	}
}

func TestClassifyAging_BoundariesAndUnboundedBucket(t *testing.T) {
	asOf := date(2025, 6, 15)

	items := []AgingItem{
		{DueDate: date(2025, 6, 14), Outstanding: dec(10)},  // 1 day
		{DueDate: date(2025, 5, 16), Outstanding: dec(20)},  // 30 days
		{DueDate: date(2025, 5, 15), Outstanding: dec(30)},  // 31 days
		{DueDate: date(2025, 3, 17), Outstanding: dec(40)},  // 90 days
		{DueDate: date(2025, 3, 16), Outstanding: dec(50)},  // 91 days
		{DueDate: date(2020, 1, 1), Outstanding: dec(60)},   // years overdue
	}

	buckets := ClassifyAging(items, asOf)
	if buckets[0].Count != 2 {
		t.Fatalf("0-30 should hold days 1 and 30, got %d", buckets[0].Count)
	}
	if buckets[1].Count != 1 {
		t.Fatalf("31-60 should hold day 31, got %d", buckets[1].Count)
	}
	if buckets[2].Count != 1 {
		t.Fatalf("61-90 should hold day 90, got %d", buckets[2].Count)
	}
	if buckets[3].Count != 2 || !buckets[3].Value.Equal(dec(110)) {
		t.Fatalf("91+ should hold days 91 and beyond: count=%d value=%s", buckets[3].Count, buckets[3].Value)
	}
}

func TestClassifyAging_EmptyPortfolio(t *testing.T) {
	buckets := ClassifyAging(nil, date(2025, 6, 15))
	if len(buckets) != 4 {
		t.Fatalf("expected 4 buckets even when empty, got %d", len(buckets))
	}
	for _, b := range buckets {
		if b.Count != 0 || !b.Value.IsZero() || !b.Percent.IsZero() {
			t.Fatalf("bucket %s should be zeroed: %+v", b.Label, b)
		}
		if b.Color == "" {
			t.Fatalf("bucket %s lost its display color", b.Label)
		}
	}
}

func TestClassifyAging_Idempotent(t *testing.T) {
	asOf := date(2025, 6, 15)
	items := []AgingItem{{DueDate: date(2025, 5, 1), Outstanding: dec(500)}}

	first := ClassifyAging(items, asOf)
	second := ClassifyAging(items, asOf)
	for i := range first {
		if first[i].Count != second[i].Count || !first[i].Value.Equal(second[i].Value) {
			t.Fatalf("bucket %s differs between identical calls", first[i].Label)
		}
	}
}
