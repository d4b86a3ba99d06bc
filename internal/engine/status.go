package engine

import (
	"time"

	"debtster-core/internal/domain"
)

// ResolveStatus derives a title's effective status from its stored status
// and due date. Paid is terminal; an open title whose due date has passed is
// overdue. An in-agreement title keeps that status regardless of its own due
// date: missed payments surface as agreement breakage, not on the covered
// title. Pure function of (title, today) — callers own any write-back of a
// corrected status.
func ResolveStatus(t domain.Title, today time.Time) domain.TitleStatus {
	if t.Status == domain.TitleStatusPaid {
		return domain.TitleStatusPaid
	}
	if DateOnly(t.DueDate).Before(DateOnly(today)) {
		if t.Status == domain.TitleStatusInAgreement {
			return domain.TitleStatusInAgreement
		}
		return domain.TitleStatusOverdue
	}
	return t.Status
}

// IsEffectivelyOpen reports whether a title still carries a collectible
// obligation (effective status open or overdue).
func IsEffectivelyOpen(t domain.Title, today time.Time) bool {
	switch ResolveStatus(t, today) {
	case domain.TitleStatusOpen, domain.TitleStatusOverdue:
		return true
	default:
		return false
	}
}
