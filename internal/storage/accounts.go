package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.CreatedAt = time.Now().UTC()
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, currency, is_credit, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Currency, a.IsCredit, a.CreatedAt,
	)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return a, nil
}

// UpdateAccount renames an account and toggles its credit flag. The row
// must belong to userID; a mismatch affects zero rows.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID string, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, currency = ?, is_credit = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.Currency, a.IsCredit, a.ID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("update account: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID string, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrAccountInUse
		}
		return 0, fmt.Errorf("delete account: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID string, id int64) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, currency, is_credit, created_at
		FROM accounts
		WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&a.ID, &a.UserID, &a.Name, &a.Currency, &a.IsCredit, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, currency, is_credit, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Currency, &a.IsCredit, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
