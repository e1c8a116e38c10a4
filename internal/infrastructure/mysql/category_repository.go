package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func (r *MySQLCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
        INSERT INTO categories (id, name, description, created_at)
        VALUES (?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Description, category.CreatedAt)
	return err
}

func (r *MySQLCategoryRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, description, created_at FROM categories ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}

	return categories, rows.Err()
}

func (r *MySQLCategoryRepository) GetCommission(ctx context.Context, category string) (*domain.Commission, error) {
	query := `
        SELECT category, rate, cap_amount, updated_at
        FROM commissions WHERE category = ?
    `

	var commission domain.Commission
	err := r.db.QueryRowContext(ctx, query, category).Scan(
		&commission.Category, &commission.Rate, &commission.CapAmount, &commission.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}

	return &commission, nil
}

func (r *MySQLCategoryRepository) UpsertCommission(ctx context.Context, commission *domain.Commission) error {
	query := `
        INSERT INTO commissions (category, rate, cap_amount, updated_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE rate = VALUES(rate), cap_amount = VALUES(cap_amount), updated_at = VALUES(updated_at)
    `
	_, err := r.db.ExecContext(ctx, query,
		commission.Category, commission.Rate, commission.CapAmount, time.Now())
	return err
}
