package repository

import (
	"context"
	"database/sql"
	"fmt"

	"debtster-core/internal/domain"
)

type AdjustmentRepository struct {
	db *sql.DB
}

func NewAdjustmentRepository(db *sql.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Insert(ctx context.Context, a *domain.Adjustment) error {
	query := `
		INSERT INTO title_adjustments (
			id, title_id, kind, mode, value, amount,
			balance_before, balance_after, description, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.TitleID,
		string(a.Kind),
		string(a.Mode),
		a.Value,
		a.Amount,
		a.BalanceBefore,
		a.BalanceAfter,
		a.Description,
		a.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

func (r *AdjustmentRepository) ListByTitle(ctx context.Context, titleID string) ([]domain.Adjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title_id, kind, mode, value, amount,
		       balance_before, balance_after, description, user_id, created_at
		FROM title_adjustments
		WHERE title_id = $1
		ORDER BY created_at DESC
	`, titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Adjustment
	for rows.Next() {
		var a domain.Adjustment
		var kind, mode string
		if err := rows.Scan(
			&a.ID,
			&a.TitleID,
			&kind,
			&mode,
			&a.Value,
			&a.Amount,
			&a.BalanceBefore,
			&a.BalanceAfter,
			&a.Description,
			&a.UserID,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Kind = domain.AdjustmentKind(kind)
		a.Mode = domain.AdjustmentMode(mode)
		result = append(result, a)
	}

	return result, rows.Err()
}
