package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"debtster-core/internal/domain"
)

type AgreementRepository struct {
	db *sql.DB
}

func NewAgreementRepository(db *sql.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

// Create persists the agreement, its covered-title links and the full
// schedule in one transaction; a validation failure upstream means nothing
// reaches this point, so no partial schedule is ever written.
func (r *AgreementRepository) Create(ctx context.Context, a *domain.Agreement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO agreements (
			id, client_id, original_amount, agreed_amount,
			installment_count, interest_rate_percent, first_due_date,
			discount_percent, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`,
		a.ID,
		a.ClientID,
		a.OriginalAmount,
		a.AgreedAmount,
		a.InstallmentCount,
		a.InterestRatePercent,
		a.FirstDueDate,
		a.DiscountPercent,
		string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("insert agreement: %w", err)
	}

	for _, titleID := range a.TitleIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO agreement_titles (agreement_id, title_id) VALUES ($1, $2)`,
			a.ID, titleID,
		)
		if err != nil {
			return fmt.Errorf("link title %s: %w", titleID, err)
		}
	}

	for _, inst := range a.Schedule {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agreement_installments (
				agreement_id, number, base_amount, interest_amount,
				total_amount, due_date, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			a.ID,
			inst.Number,
			inst.BaseAmount,
			inst.InterestAmount,
			inst.TotalAmount,
			inst.DueDate,
			string(inst.Status),
		)
		if err != nil {
			return fmt.Errorf("insert schedule installment %d: %w", inst.Number, err)
		}
	}

	return tx.Commit()
}

func (r *AgreementRepository) GetByID(ctx context.Context, id string) (*domain.Agreement, error) {
	var a domain.Agreement
	var status string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, original_amount, agreed_amount,
		       installment_count, interest_rate_percent, first_due_date,
		       discount_percent, status, created_at, updated_at
		FROM agreements
		WHERE id = $1
	`, id).Scan(
		&a.ID,
		&a.ClientID,
		&a.OriginalAmount,
		&a.AgreedAmount,
		&a.InstallmentCount,
		&a.InterestRatePercent,
		&a.FirstDueDate,
		&a.DiscountPercent,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = domain.AgreementStatus(status)

	titleRows, err := r.db.QueryContext(ctx,
		`SELECT title_id FROM agreement_titles WHERE agreement_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer titleRows.Close()

	for titleRows.Next() {
		var titleID string
		if err := titleRows.Scan(&titleID); err != nil {
			return nil, err
		}
		a.TitleIDs = append(a.TitleIDs, titleID)
	}
	if err := titleRows.Err(); err != nil {
		return nil, err
	}

	schedule, err := r.schedule(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Schedule = schedule

	return &a, nil
}

func (r *AgreementRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Agreement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, original_amount, agreed_amount,
		       installment_count, interest_rate_percent, first_due_date,
		       discount_percent, status, created_at, updated_at
		FROM agreements
		WHERE client_id = $1
		ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agreement
	for rows.Next() {
		var a domain.Agreement
		var status string
		if err := rows.Scan(
			&a.ID,
			&a.ClientID,
			&a.OriginalAmount,
			&a.AgreedAmount,
			&a.InstallmentCount,
			&a.InterestRatePercent,
			&a.FirstDueDate,
			&a.DiscountPercent,
			&status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = domain.AgreementStatus(status)
		result = append(result, a)
	}

	return result, rows.Err()
}

func (r *AgreementRepository) UpdateStatus(ctx context.Context, id string, status domain.AgreementStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agreements SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AgreementRepository) MarkInstallmentPaid(ctx context.Context, agreementID string, number int, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE agreement_installments
		SET status = $1, paid_at = $2
		WHERE agreement_id = $3 AND number = $4 AND status <> $1
	`, string(domain.AgreementInstallmentPaid), paidAt, agreementID, number)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UnpaidCount reports how many schedule installments are still pending, and
// how many of those are past asOf (breakage candidates).
func (r *AgreementRepository) UnpaidCount(ctx context.Context, agreementID string, asOf time.Time) (unpaid, pastDue int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status <> $1),
			COUNT(*) FILTER (WHERE status <> $1 AND due_date < $2)
		FROM agreement_installments
		WHERE agreement_id = $3
	`, string(domain.AgreementInstallmentPaid), asOf, agreementID).Scan(&unpaid, &pastDue)
	return unpaid, pastDue, err
}

func (r *AgreementRepository) schedule(ctx context.Context, agreementID string) ([]domain.AgreementInstallment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, base_amount, interest_amount, total_amount, due_date, status, paid_at
		FROM agreement_installments
		WHERE agreement_id = $1
		ORDER BY number
	`, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule []domain.AgreementInstallment
	for rows.Next() {
		var inst domain.AgreementInstallment
		var status string
		if err := rows.Scan(
			&inst.Number,
			&inst.BaseAmount,
			&inst.InterestAmount,
			&inst.TotalAmount,
			&inst.DueDate,
			&status,
			&inst.PaidAt,
		); err != nil {
			return nil, err
		}
		inst.Status = domain.AgreementInstallmentStatus(status)
		schedule = append(schedule, inst)
	}

	return schedule, rows.Err()
}
