package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, payment_verified,
        provider_customer_id, payment_method_id, created_at`

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.PaymentVerified, user.ProviderCustomerID, user.PaymentMethodID, user.CreatedAt)
	return err
}

func (r *MySQLUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getUser(ctx, query, userID)
}

func (r *MySQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getUser(ctx, query, email)
}

func (r *MySQLUserRepository) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	var role string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role,
		&user.PaymentVerified, &user.ProviderCustomerID, &user.PaymentMethodID, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.Role = domain.UserRole(role)
	return &user, nil
}

func (r *MySQLUserRepository) UpdatePaymentMethod(ctx context.Context, userID, customerID, paymentMethodID string, verified bool) error {
	query := `
        UPDATE users
        SET provider_customer_id = ?, payment_method_id = ?, payment_verified = ?
        WHERE id = ?
    `
	result, err := r.db.ExecContext(ctx, query, customerID, paymentMethodID, verified, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
