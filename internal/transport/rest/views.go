package rest

import (
	"debtster-core/internal/domain"
	"debtster-core/internal/service"
)

func titleView(t domain.Title) map[string]interface{} {
	v := map[string]interface{}{
		"id":        t.ID,
		"client_id": t.ClientID,
		"amount":    t.Amount.StringFixed(2),
		"due_date":  t.DueDate.Format("2006-01-02"),
		"status":    string(t.Status),
	}
	if t.ParentTitleID != nil {
		v["parent_title_id"] = *t.ParentTitleID
	}
	if t.InstallmentNumber != nil {
		v["installment_number"] = *t.InstallmentNumber
	}
	if t.TotalInstallments != nil {
		v["total_installments"] = *t.TotalInstallments
	}
	if t.OriginalAmount != nil {
		v["original_amount"] = t.OriginalAmount.StringFixed(2)
	}
	return v
}

func debtView(d domain.Debt) map[string]interface{} {
	titles := make([]interface{}, 0, len(d.Titles))
	for _, t := range d.Titles {
		titles = append(titles, titleView(t))
	}

	v := map[string]interface{}{
		"id":                 d.ID,
		"client_id":          d.ClientID,
		"titles":             titles,
		"total_installments": d.TotalInstallments,
		"total_outstanding":  d.TotalOutstanding.StringFixed(2),
		"open_count":         d.OpenCount,
		"paid_count":         d.PaidCount,
		"has_overdue":        d.HasOverdue,
	}
	if d.EarliestDueDate != nil {
		v["earliest_due_date"] = d.EarliestDueDate.Format("2006-01-02")
	}
	if d.ClientName != nil {
		v["client_name"] = *d.ClientName
	}
	if d.ClientTaxID != nil {
		v["client_tax_id"] = *d.ClientTaxID
	}
	return v
}

func agreementView(a *domain.Agreement) map[string]interface{} {
	schedule := make([]interface{}, 0, len(a.Schedule))
	for _, inst := range a.Schedule {
		line := map[string]interface{}{
			"number":          inst.Number,
			"base_amount":     inst.BaseAmount.StringFixed(2),
			"interest_amount": inst.InterestAmount.StringFixed(2),
			"total_amount":    inst.TotalAmount.StringFixed(2),
			"due_date":        inst.DueDate.Format("2006-01-02"),
			"status":          string(inst.Status),
		}
		if inst.PaidAt != nil {
			line["paid_at"] = inst.PaidAt.Format("2006-01-02 15:04:05")
		}
		schedule = append(schedule, line)
	}

	return map[string]interface{}{
		"id":                    a.ID,
		"client_id":             a.ClientID,
		"title_ids":             a.TitleIDs,
		"original_amount":       a.OriginalAmount.StringFixed(2),
		"agreed_amount":         a.AgreedAmount.StringFixed(2),
		"discount_percent":      a.DiscountPercent.StringFixed(2),
		"installment_count":     a.InstallmentCount,
		"interest_rate_percent": a.InterestRatePercent.String(),
		"first_due_date":        a.FirstDueDate.Format("2006-01-02"),
		"status":                string(a.Status),
		"schedule":              schedule,
	}
}

func adjustmentView(a domain.Adjustment) map[string]interface{} {
	v := map[string]interface{}{
		"id":             a.ID,
		"title_id":       a.TitleID,
		"kind":           string(a.Kind),
		"mode":           string(a.Mode),
		"value":          a.Value.String(),
		"amount":         a.Amount.StringFixed(2),
		"balance_before": a.BalanceBefore.StringFixed(2),
		"balance_after":  a.BalanceAfter.StringFixed(2),
	}
	if a.Description != "" {
		v["description"] = a.Description
	}
	if a.UserID != nil {
		v["user_id"] = *a.UserID
	}
	if a.CreatedAt != nil {
		v["created_at"] = a.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return v
}

func agingReportView(r *service.AgingReport) map[string]interface{} {
	buckets := make([]interface{}, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets = append(buckets, map[string]interface{}{
			"label":   b.Label,
			"color":   b.Color,
			"count":   b.Count,
			"value":   b.Value.StringFixed(2),
			"percent": b.Percent.StringFixed(2),
		})
	}

	return map[string]interface{}{
		"as_of":         r.AsOf.Format("2006-01-02"),
		"buckets":       buckets,
		"total_overdue": r.TotalOverdue.StringFixed(2),
		"item_count":    r.ItemCount,
	}
}
