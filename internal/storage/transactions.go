package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

const transactionDetailColumns = `
	t.id, t.user_id, t.account_id, t.category_id, t.amount_cents,
	t.description, t.date, t.kind, t.created_at,
	a.name, a.currency, a.is_credit,
	c.name, c.kind, c.icon`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, account_id, category_id, amount_cents, description, date, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, t.CategoryID, t.Amount.Cents, t.Description, t.Date, string(t.Kind), t.CreatedAt,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites every mutable field of the row. Ownership
// is enforced in the WHERE clause; a mismatch affects zero rows. The
// row is also marked unexported again so the worker re-syncs it.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, amount_cents = ?, description = ?, date = ?, kind = ?, exported_at = NULL
		WHERE id = ? AND user_id = ?`,
		t.AccountID, t.CategoryID, t.Amount.Cents, t.Description, t.Date, string(t.Kind), t.ID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	return res.RowsAffected()
}

// GetTransactionDetail loads a single transaction with its joined
// account and category. It is not user scoped: the export worker looks
// rows up by the id carried in change messages.
func (r *SQLiteRepository) GetTransactionDetail(ctx context.Context, id int64) (core.TransactionDetail, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionDetailColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`, id)

	d, err := scanTransactionDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionDetail{}, ErrNotFound
	}
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("get transaction: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionDetailColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactionDetails(rows)
}

// ListUnexported returns the oldest transactions that have not been
// written to the spreadsheet yet, up to limit rows.
func (r *SQLiteRepository) ListUnexported(ctx context.Context, limit int) ([]core.TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionDetailColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.exported_at IS NULL
		ORDER BY t.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported: %w", err)
	}
	defer rows.Close()

	return collectTransactionDetails(rows)
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionDetail(row rowScanner) (core.TransactionDetail, error) {
	var (
		d          core.TransactionDetail
		categoryID sql.NullInt64
		kind       string
		catName    sql.NullString
		catKind    sql.NullString
		catIcon    sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.AccountID, &categoryID, &d.Amount.Cents,
		&d.Description, &d.Date, &kind, &d.CreatedAt,
		&d.Account.Name, &d.Account.Currency, &d.Account.IsCredit,
		&catName, &catKind, &catIcon,
	)
	if err != nil {
		return core.TransactionDetail{}, err
	}

	d.Kind = core.Kind(kind)
	d.Account.ID = d.AccountID
	d.Account.UserID = d.UserID
	if categoryID.Valid {
		d.CategoryID = &categoryID.Int64
		d.Category = &core.Category{
			ID:     categoryID.Int64,
			UserID: d.UserID,
			Name:   catName.String,
			Kind:   core.Kind(catKind.String),
			Icon:   catIcon.String,
		}
	}
	return d, nil
}

func collectTransactionDetails(rows *sql.Rows) ([]core.TransactionDetail, error) {
	var details []core.TransactionDetail
	for rows.Next() {
		d, err := scanTransactionDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
