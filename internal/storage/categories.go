package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finanzas/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var icon any
	if c.Icon != "" {
		icon = c.Icon
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, kind, icon)
		VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Kind), icon,
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID string, id int64) (core.Category, error) {
	var (
		c    core.Category
		kind string
		icon sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, icon
		FROM categories
		WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &kind, &icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Kind = core.Kind(kind)
	c.Icon = icon.String
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, icon
		FROM categories
		WHERE user_id = ?
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c    core.Category
			kind string
			icon sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind, &icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.Kind(kind)
		c.Icon = icon.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
