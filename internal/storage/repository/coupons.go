package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// CreateCoupon inserts a coupon and returns its ID.
func (s *Storage) CreateCoupon(ctx context.Context, c models.Coupon) (int, error) {
	const op = "storage.CreateCoupon"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO coupons (code, discount_type, discount_value, target_plan,
			      max_redemptions, valid_from, valid_until, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		c.Code, c.DiscountType, c.DiscountValue, nullString(c.TargetPlan),
		c.MaxRedemptions, nullTime(c.ValidFrom), nullTime(c.ValidUntil), c.Active).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanCoupon(row *sql.Row) (*models.Coupon, error) {
	c := &models.Coupon{}
	var targetPlan sql.NullString
	var validFrom, validUntil sql.NullTime
	if err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &targetPlan,
		&c.MaxRedemptions, &validFrom, &validUntil, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	if targetPlan.Valid {
		c.TargetPlan = targetPlan.String
	}
	if validFrom.Valid {
		c.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		c.ValidUntil = &validUntil.Time
	}
	return c, nil
}

const couponColumns = `id, code, discount_type, discount_value, target_plan,
			      max_redemptions, valid_from, valid_until, active, created_at`

// GetCouponByCode returns a coupon by its unique code.
func (s *Storage) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	const op = "storage.GetCouponByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	c, err := scanCoupon(s.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// GetCoupon returns a coupon by ID.
func (s *Storage) GetCoupon(ctx context.Context, id int) (*models.Coupon, error) {
	const op = "storage.GetCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	c, err := scanCoupon(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListCoupons returns all coupons ordered by creation.
func (s *Storage) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	const op = "storage.ListCoupons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Coupon
	for rows.Next() {
		c := &models.Coupon{}
		var targetPlan sql.NullString
		var validFrom, validUntil sql.NullTime
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &targetPlan,
			&c.MaxRedemptions, &validFrom, &validUntil, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if targetPlan.Valid {
			c.TargetPlan = targetPlan.String
		}
		if validFrom.Valid {
			c.ValidFrom = &validFrom.Time
		}
		if validUntil.Valid {
			c.ValidUntil = &validUntil.Time
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCoupon updates a coupon by ID and returns the number of changed rows.
func (s *Storage) UpdateCoupon(ctx context.Context, c models.Coupon) (int, error) {
	const op = "storage.UpdateCoupon"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE coupons
			  SET code = $1, discount_type = $2, discount_value = $3, target_plan = $4,
			      max_redemptions = $5, valid_from = $6, valid_until = $7, active = $8
			  WHERE id = $9`
	result, err := s.DB.ExecContext(ctx, query,
		c.Code, c.DiscountType, c.DiscountValue, nullString(c.TargetPlan),
		c.MaxRedemptions, nullTime(c.ValidFrom), nullTime(c.ValidUntil), c.Active, c.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteCoupon removes a coupon by ID.
func (s *Storage) DeleteCoupon(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteCoupon"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM coupons WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountRedemptions counts all redemptions of one coupon across users.
func (s *Storage) CountRedemptions(ctx context.Context, couponID int) (int, error) {
	const op = "storage.CountRedemptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, couponID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// HasUserRedeemed reports whether a user has already redeemed a coupon.
func (s *Storage) HasUserRedeemed(ctx context.Context, couponID, userID int) (bool, error) {
	const op = "storage.HasUserRedeemed"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			  SELECT 1 FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, couponID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateRedemption records one coupon usage and returns its ID. The coupon
// row stays locked while the global cap is re-checked, so two concurrent
// redemptions cannot both take the last slot.
func (s *Storage) CreateRedemption(ctx context.Context, r models.CouponRedemption) (int, error) {
	const op = "storage.CreateRedemption"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	var maxRedemptions int
	if err := dbTx.QueryRowContext(ctx,
		`SELECT max_redemptions FROM coupons WHERE id = $1 FOR UPDATE`,
		r.CouponID).Scan(&maxRedemptions); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if maxRedemptions > 0 {
		var count int
		if err := dbTx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`,
			r.CouponID).Scan(&count); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if count >= maxRedemptions {
			return 0, fmt.Errorf("%s: %w", op, models.ErrInvalidCoupon)
		}
	}

	query := `INSERT INTO coupon_redemptions (coupon_id, user_id, plan, discounted)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := dbTx.QueryRowContext(ctx, query,
		r.CouponID, r.UserID, r.Plan, r.Discounted).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListRedemptions returns the redemption history of one coupon.
func (s *Storage) ListRedemptions(ctx context.Context, couponID int) ([]*models.CouponRedemption, error) {
	const op = "storage.ListRedemptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, coupon_id, user_id, plan, discounted, redeemed_at
			  FROM coupon_redemptions
			  WHERE coupon_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, couponID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.CouponRedemption
	for rows.Next() {
		var item models.CouponRedemption
		if err := rows.Scan(&item.ID, &item.CouponID, &item.UserID, &item.Plan,
			&item.Discounted, &item.RedeemedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCouponStats aggregates the redemption count and total discounted yen
// of one coupon.
func (s *Storage) GetCouponStats(ctx context.Context, couponID int) (*models.CouponStats, error) {
	const op = "storage.GetCouponStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*), COALESCE(SUM(discounted), 0)
			  FROM coupon_redemptions
			  WHERE coupon_id = $1`
	stats := &models.CouponStats{CouponID: couponID}
	if err := s.DB.QueryRowContext(ctx, query, couponID).Scan(
		&stats.RedemptionCount, &stats.TotalDiscounted); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
