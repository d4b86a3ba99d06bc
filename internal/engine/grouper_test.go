package engine

import (
	"testing"
	"time"

	"debtster-core/internal/domain"

	"github.com/shopspring/decimal"
)

func intPtr(i int) *int          { return &i }
func strPtr(s string) *string    { return &s }
func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func installmentRow(id, parentID string, number int, amount float64, status domain.TitleStatus, due time.Time) domain.Title {
	return domain.Title{
		ID:                id,
		ClientID:          "client-1",
		Amount:            dec(amount),
		DueDate:           due,
		Status:            status,
		ParentTitleID:     strPtr(parentID),
		InstallmentNumber: intPtr(number),
	}
}

func TestGroupDebts_ParentWithChildren(t *testing.T) {
	today := date(2025, 6, 15)

	orig := dec(900)
	parent := domain.Title{
		ID:                "parent-1",
		ClientID:          "client-1",
		Amount:            dec(900), // header row amount carries no obligation
		DueDate:           date(2025, 7, 1),
		Status:            domain.TitleStatusOpen,
		TotalInstallments: intPtr(3),
		OriginalAmount:    &orig,
	}

	titles := []domain.Title{
		// deliberately out of order
		installmentRow("c2", "parent-1", 2, 300, domain.TitleStatusOpen, date(2025, 8, 1)),
		parent,
		installmentRow("c3", "parent-1", 3, 300, domain.TitleStatusOpen, date(2025, 9, 1)),
		installmentRow("c1", "parent-1", 1, 300, domain.TitleStatusPaid, date(2025, 7, 1)),
	}

	debts, inconsistencies := GroupDebts(titles, today)
	if len(inconsistencies) != 0 {
		t.Fatalf("unexpected inconsistencies: %v", inconsistencies)
	}
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(debts))
	}

	d := debts[0]
	if d.ID != "parent-1" {
		t.Fatalf("expected debt id parent-1, got %s", d.ID)
	}
	if d.TotalInstallments != 3 {
		t.Fatalf("expected 3 total installments, got %d", d.TotalInstallments)
	}
	// the parent's own 900 must not leak into the outstanding sum
	if !d.TotalOutstanding.Equal(dec(600)) {
		t.Fatalf("expected outstanding 600, got %s", d.TotalOutstanding)
	}
	if d.OpenCount != 2 || d.PaidCount != 1 {
		t.Fatalf("expected 2 open / 1 paid, got %d/%d", d.OpenCount, d.PaidCount)
	}
	if len(d.Titles) != 3 {
		t.Fatalf("paid constituents must stay listed, got %d titles", len(d.Titles))
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if d.Titles[i].ID != want {
			t.Fatalf("constituents not sorted by number: pos %d is %s", i, d.Titles[i].ID)
		}
	}
	if d.EarliestDueDate == nil || !d.EarliestDueDate.Equal(date(2025, 8, 1)) {
		t.Fatalf("earliest due date should be the first unpaid installment, got %v", d.EarliestDueDate)
	}
}

func TestGroupDebts_StandaloneAndOverdueFlag(t *testing.T) {
	today := date(2025, 6, 15)

	titles := []domain.Title{
		{ID: "s1", ClientID: "client-1", Amount: dec(150), DueDate: date(2025, 5, 1), Status: domain.TitleStatusOpen},
		{ID: "s2", ClientID: "client-2", Amount: dec(80), DueDate: date(2025, 7, 1), Status: domain.TitleStatusOpen},
	}

	debts, _ := GroupDebts(titles, today)
	if len(debts) != 2 {
		t.Fatalf("expected 2 debts, got %d", len(debts))
	}

	byID := map[string]domain.Debt{}
	for _, d := range debts {
		byID[d.ID] = d
	}

	if !byID["s1"].HasOverdue {
		t.Fatal("s1 is past due and should be flagged overdue")
	}
	if byID["s2"].HasOverdue {
		t.Fatal("s2 is not yet due")
	}
	if byID["s1"].TotalInstallments != 1 {
		t.Fatalf("standalone debt should report 1 installment, got %d", byID["s1"].TotalInstallments)
	}
}

func TestGroupDebts_OrphanedChildrenFallback(t *testing.T) {
	today := date(2025, 6, 15)

	// parent filtered out upstream; children must still form a debt
	titles := []domain.Title{
		installmentRow("c1", "ghost-parent", 1, 100, domain.TitleStatusOpen, date(2025, 7, 1)),
		installmentRow("c2", "ghost-parent", 2, 100, domain.TitleStatusOpen, date(2025, 8, 1)),
	}

	debts, inconsistencies := GroupDebts(titles, today)
	if len(inconsistencies) != 0 {
		t.Fatalf("fallback grouping should not report inconsistencies: %v", inconsistencies)
	}
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(debts))
	}
	if debts[0].ID != "ghost-parent" {
		t.Fatalf("expected group keyed by parent id, got %s", debts[0].ID)
	}
	if debts[0].TotalInstallments != 2 {
		t.Fatalf("total installments should fall back to child count, got %d", debts[0].TotalInstallments)
	}
}

func TestGroupDebts_ReportsInconsistentRows(t *testing.T) {
	today := date(2025, 6, 15)

	broken := domain.Title{
		ID:            "bad-1",
		ClientID:      "client-1",
		Amount:        dec(50),
		DueDate:       date(2025, 7, 1),
		Status:        domain.TitleStatusOpen,
		ParentTitleID: strPtr("parent-1"),
		// missing installment number
	}
	ok := domain.Title{ID: "s1", ClientID: "client-1", Amount: dec(70), DueDate: date(2025, 7, 1), Status: domain.TitleStatusOpen}

	debts, inconsistencies := GroupDebts([]domain.Title{broken, ok}, today)
	if len(inconsistencies) != 1 {
		t.Fatalf("expected 1 inconsistency, got %d", len(inconsistencies))
	}
	if inconsistencies[0].TitleID != "bad-1" {
		t.Fatalf("unexpected inconsistency: %v", inconsistencies[0])
	}
	// the healthy row still aggregates
	if len(debts) != 1 || debts[0].ID != "s1" {
		t.Fatalf("expected the valid title grouped, got %+v", debts)
	}
}

func TestOpenDebts_DropsFullySettledGroups(t *testing.T) {
	today := date(2025, 6, 15)

	titles := []domain.Title{
		{ID: "s1", ClientID: "client-1", Amount: dec(150), DueDate: date(2025, 5, 1), Status: domain.TitleStatusPaid},
		{ID: "s2", ClientID: "client-1", Amount: dec(80), DueDate: date(2025, 7, 1), Status: domain.TitleStatusOpen},
	}

	debts, _ := GroupDebts(titles, today)
	open := OpenDebts(debts)
	if len(open) != 1 || open[0].ID != "s2" {
		t.Fatalf("expected only s2 in open debts, got %+v", open)
	}
}
