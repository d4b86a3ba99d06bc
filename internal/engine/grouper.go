package engine

import (
	"sort"
	"time"

	"debtster-core/internal/domain"
)

// GroupDebts folds flat title rows into logical debts: one debt per
// standalone title, one debt per parent header plus its installments.
//
// The parent row carries no obligation of its own — it contributes header
// metadata (total installments, original amount) but never its amount.
// Children referencing a parent that was not fetched (filtered out upstream)
// still form a debt; total installments then falls back to the number of
// children present.
//
// The returned inconsistencies are advisory: affected rows are excluded from
// aggregates, the computation never aborts.
func GroupDebts(titles []domain.Title, today time.Time) ([]domain.Debt, []*InconsistentDataError) {
	type group struct {
		parent   *domain.Title
		children []domain.Title
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(titles))
	var inconsistencies []*InconsistentDataError

	upsert := func(key string) *group {
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		return g
	}

	for _, t := range titles {
		switch t.Kind() {
		case domain.KindParent:
			g := upsert(t.ID)
			parent := t
			g.parent = &parent
		case domain.KindInstallment:
			if t.InstallmentNumber == nil {
				inconsistencies = append(inconsistencies, &InconsistentDataError{
					TitleID: t.ID,
					Message: "installment row without installment number",
				})
				continue
			}
			g := upsert(*t.ParentTitleID)
			g.children = append(g.children, t)
		default:
			g := upsert(t.ID)
			g.children = append(g.children, t)
		}
	}

	debts := make([]domain.Debt, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		if len(g.children) == 0 {
			// a parent header fetched without any of its installments
			// has nothing to aggregate
			if g.parent != nil {
				inconsistencies = append(inconsistencies, &InconsistentDataError{
					TitleID: g.parent.ID,
					Message: "parent header without installment rows",
				})
			}
			continue
		}

		sort.SliceStable(g.children, func(i, j int) bool {
			return installmentNumber(g.children[i]) < installmentNumber(g.children[j])
		})

		debts = append(debts, buildDebt(key, g.parent, g.children, today))
	}

	return debts, inconsistencies
}

// OpenDebts filters to debts that still have at least one open or overdue
// constituent.
func OpenDebts(debts []domain.Debt) []domain.Debt {
	out := make([]domain.Debt, 0, len(debts))
	for _, d := range debts {
		if d.OpenCount > 0 {
			out = append(out, d)
		}
	}
	return out
}

func installmentNumber(t domain.Title) int {
	if t.InstallmentNumber == nil {
		return 0
	}
	return *t.InstallmentNumber
}

func buildDebt(id string, parent *domain.Title, children []domain.Title, today time.Time) domain.Debt {
	d := domain.Debt{
		ID:     id,
		Titles: children,
	}

	if parent != nil {
		d.ClientID = parent.ClientID
		d.ClientName = parent.ClientName
		d.ClientTaxID = parent.ClientTaxID
		if parent.TotalInstallments != nil {
			d.TotalInstallments = *parent.TotalInstallments
		}
	} else {
		d.ClientID = children[0].ClientID
		d.ClientName = children[0].ClientName
		d.ClientTaxID = children[0].ClientTaxID
		if children[0].Kind() == domain.KindInstallment {
			// orphaned children: best effort from what was fetched
			d.TotalInstallments = len(children)
		} else {
			d.TotalInstallments = 1
		}
	}

	for _, c := range children {
		switch ResolveStatus(c, today) {
		case domain.TitleStatusPaid:
			d.PaidCount++
		case domain.TitleStatusOpen:
			d.OpenCount++
			d.TotalOutstanding = d.TotalOutstanding.Add(c.Amount)
			trackEarliest(&d, c)
		case domain.TitleStatusOverdue:
			d.OpenCount++
			d.HasOverdue = true
			d.TotalOutstanding = d.TotalOutstanding.Add(c.Amount)
			trackEarliest(&d, c)
		case domain.TitleStatusInAgreement:
			trackEarliest(&d, c)
		}
	}

	return d
}

func trackEarliest(d *domain.Debt, t domain.Title) {
	due := DateOnly(t.DueDate)
	if d.EarliestDueDate == nil || due.Before(*d.EarliestDueDate) {
		d.EarliestDueDate = &due
	}
}
