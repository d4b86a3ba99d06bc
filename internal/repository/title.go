package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"debtster-core/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrBalanceConflict is returned when a compare-and-swap balance update loses
// to a concurrent mutation; callers re-read and re-apply.
var ErrBalanceConflict = errors.New("title balance changed concurrently")

var ErrNotFound = errors.New("record not found")

type TitlesFilter struct {
	ClientID      *string
	Status        *domain.TitleStatus
	ParentTitleID *string
	DueFrom       *time.Time
	DueTo         *time.Time
}

type TitleRepository struct {
	db *sql.DB
}

func NewTitleRepository(db *sql.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

const titleColumns = `
	t.id,
	t.client_id,
	t.amount,
	t.due_date,
	t.status,
	t.parent_title_id,
	t.installment_number,
	t.total_installments,
	t.original_amount,
	c.name    AS client_name,
	c.tax_id  AS client_tax_id,
	t.created_at,
	t.updated_at
`

func (r *TitleRepository) List(ctx context.Context, f TitlesFilter) ([]domain.Title, error) {
	baseQuery := `
		SELECT ` + titleColumns + `
		FROM titles t
		LEFT JOIN clients c ON c.id = t.client_id
	`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.ClientID != nil {
		where = append(where, fmt.Sprintf("t.client_id = $%d", i))
		args = append(args, *f.ClientID)
		i++
	}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("t.status = $%d", i))
		args = append(args, string(*f.Status))
		i++
	}

	if f.ParentTitleID != nil {
		where = append(where, fmt.Sprintf("t.parent_title_id = $%d", i))
		args = append(args, *f.ParentTitleID)
		i++
	}

	if f.DueFrom != nil {
		where = append(where, fmt.Sprintf("t.due_date >= $%d", i))
		args = append(args, *f.DueFrom)
		i++
	}

	if f.DueTo != nil {
		where = append(where, fmt.Sprintf("t.due_date <= $%d", i))
		args = append(args, *f.DueTo)
		i++
	}

	query := baseQuery + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.due_date, t.installment_number NULLS FIRST"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *TitleRepository) GetByID(ctx context.Context, id string) (*domain.Title, error) {
	query := `
		SELECT ` + titleColumns + `
		FROM titles t
		LEFT JOIN clients c ON c.id = t.client_id
		WHERE t.id = $1
	`

	t, err := scanTitle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) error {
	query := `
		INSERT INTO titles (id, client_id, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.ClientID, t.Amount, t.DueDate, string(t.Status))
	if err != nil {
		return fmt.Errorf("insert title: %w", err)
	}
	return nil
}

// UpdateStatus is the reconcile target for corrected effective statuses;
// callers treat failures as best-effort.
func (r *TitleRepository) UpdateStatus(ctx context.Context, id string, status domain.TitleStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE titles SET status = $1, updated_at = now() WHERE id = $2`,
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

// UpdateBalance swaps the stored amount only if it still equals expected.
func (r *TitleRepository) UpdateBalance(ctx context.Context, id string, newAmount, expected decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE titles SET amount = $1, updated_at = now() WHERE id = $2 AND amount = $3`,
		newAmount, id, expected,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBalanceConflict
	}
	return nil
}

// CreateInstallments turns a standalone title into a debt header and inserts
// its generated installment rows in one transaction.
func (r *TitleRepository) CreateInstallments(ctx context.Context, parentID string, installments []domain.Title) error {
	if len(installments) == 0 {
		return errors.New("no installments to insert")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE titles
		SET total_installments = $1,
		    original_amount    = amount,
		    updated_at         = now()
		WHERE id = $2
	`, len(installments), parentID)
	if err != nil {
		return fmt.Errorf("stamp parent title: %w", err)
	}

	insert := `
		INSERT INTO titles (
			id, client_id, amount, due_date, status,
			parent_title_id, installment_number, original_amount,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`
	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, insert,
			inst.ID,
			inst.ClientID,
			inst.Amount,
			inst.DueDate,
			string(inst.Status),
			inst.ParentTitleID,
			inst.InstallmentNumber,
			nullDecimal(inst.OriginalAmount),
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", derefInt(inst.InstallmentNumber), err)
		}
	}

	return tx.Commit()
}

// UpdateStatusMany moves a set of titles to a new status atomically, used
// when an agreement covers or releases them.
func (r *TitleRepository) UpdateStatusMany(ctx context.Context, ids []string, status domain.TitleStatus) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := []any{string(status)}
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`UPDATE titles SET status = $1, updated_at = now() WHERE id IN (%s)`,
		strings.Join(placeholders, ", "),
	)
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTitle(row rowScanner) (domain.Title, error) {
	var t domain.Title
	var status string
	var original decimal.NullDecimal

	err := row.Scan(
		&t.ID,
		&t.ClientID,
		&t.Amount,
		&t.DueDate,
		&status,
		&t.ParentTitleID,
		&t.InstallmentNumber,
		&t.TotalInstallments,
		&original,
		&t.ClientName,
		&t.ClientTaxID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Title{}, err
	}

	t.Status = domain.TitleStatus(status)
	if original.Valid {
		t.OriginalAmount = &original.Decimal
	}
	return t, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func nullDecimal(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

