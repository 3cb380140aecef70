package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// RegisterUser saves a new user and returns its ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (int, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO users (uid, email, password_hash, plan, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.Plan,
		user.SubscriptionStatus).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var subscriptionExpiry sql.NullTime
	if err := row.Scan(&u.ID, &u.UID, &u.Email, &u.PasswordHash,
		&u.Plan, &u.SubscriptionStatus, &subscriptionExpiry, &u.CreatedAt); err != nil {
		return nil, err
	}
	if subscriptionExpiry.Valid {
		u.SubscriptionExpiry = &subscriptionExpiry.Time
	}
	return u, nil
}

// GetUserByEmail returns a user by login email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, uid, email, password_hash, plan, subscription_status,
			      subscription_expiry, created_at
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *Storage) GetUser(ctx context.Context, userID int) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, uid, email, password_hash, plan, subscription_status,
			      subscription_expiry, created_at
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSubscription changes a user's plan, status and paid-period end.
func (s *Storage) UpdateSubscription(ctx context.Context, userID int, planName, status string, expiry *time.Time) (int, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET plan = $1, subscription_status = $2, subscription_expiry = $3
			  WHERE id = $4`
	var expiryValue sql.NullTime
	if expiry != nil {
		expiryValue = sql.NullTime{Time: *expiry, Valid: true}
	}
	result, err := s.DB.ExecContext(ctx, query, planName, status, expiryValue, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}
