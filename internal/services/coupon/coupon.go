// Package services contains the business logic for coupon validation,
// redemption and administration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// CouponRepository defines the storage methods for coupons and redemptions.
type CouponRepository interface {
	CreateCoupon(ctx context.Context, c models.Coupon) (int, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetCoupon(ctx context.Context, id int) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]*models.Coupon, error)
	UpdateCoupon(ctx context.Context, c models.Coupon) (int, error)
	DeleteCoupon(ctx context.Context, id int) (int, error)
	CountRedemptions(ctx context.Context, couponID int) (int, error)
	HasUserRedeemed(ctx context.Context, couponID, userID int) (bool, error)
	CreateRedemption(ctx context.Context, r models.CouponRedemption) (int, error)
	ListRedemptions(ctx context.Context, couponID int) ([]*models.CouponRedemption, error)
	GetCouponStats(ctx context.Context, couponID int) (*models.CouponStats, error)
}

// CouponService implements coupon validation and administration.
type CouponService struct {
	repo CouponRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo CouponRepository, log *slog.Logger) *CouponService {
	return &CouponService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Validate checks a coupon against a target plan and prices the discount.
// A coupon is valid only while active, within its validity window, under
// its global redemption cap and, when restricted, against the matching
// plan. Every failure mode reports the same ErrInvalidCoupon.
func (s *CouponService) Validate(ctx context.Context, code, planName string) (*models.CouponQuote, error) {
	coupon, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidCoupon
		}
		return nil, err
	}

	if !coupon.Active {
		return nil, models.ErrInvalidCoupon
	}
	now := s.now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, models.ErrInvalidCoupon
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, models.ErrInvalidCoupon
	}
	if coupon.TargetPlan != "" && coupon.TargetPlan != planName {
		return nil, models.ErrInvalidCoupon
	}
	if coupon.MaxRedemptions > 0 {
		count, err := s.repo.CountRedemptions(ctx, coupon.ID)
		if err != nil {
			return nil, err
		}
		if count >= coupon.MaxRedemptions {
			return nil, models.ErrInvalidCoupon
		}
	}

	return s.quote(coupon, planName), nil
}

func (s *CouponService) quote(coupon *models.Coupon, planName string) *models.CouponQuote {
	price := plan.Price(planName)
	var discounted int
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discounted = price * coupon.DiscountValue / 100
	case models.DiscountFixed:
		discounted = coupon.DiscountValue
	}
	if discounted > price {
		discounted = price
	}
	return &models.CouponQuote{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		PlanPrice:     price,
		Discounted:    discounted,
		FinalPrice:    price - discounted,
	}
}

// Redeem validates a coupon and records its usage by one user. A user may
// redeem a given coupon only once.
func (s *CouponService) Redeem(ctx context.Context, code, planName string, userID int) (*models.CouponQuote, error) {
	quote, err := s.Validate(ctx, code, planName)
	if err != nil {
		return nil, err
	}

	coupon, err := s.repo.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	redeemed, err := s.repo.HasUserRedeemed(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if redeemed {
		return nil, models.ErrInvalidCoupon
	}

	if _, err := s.repo.CreateRedemption(ctx, models.CouponRedemption{
		CouponID:   coupon.ID,
		UserID:     userID,
		Plan:       planName,
		Discounted: quote.Discounted,
	}); err != nil {
		return nil, err
	}
	s.log.Info("coupon redeemed", slog.String("code", code), slog.Int("user_id", userID))
	return quote, nil
}

// Create creates a coupon from a validated request.
func (s *CouponService) Create(ctx context.Context, req models.DummyCoupon) (int, error) {
	coupon, err := couponFromRequest(req)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateCoupon(ctx, *coupon)
}

// List returns all coupons.
func (s *CouponService) List(ctx context.Context) ([]*models.Coupon, error) {
	return s.repo.ListCoupons(ctx)
}

// Update replaces a coupon's data by ID.
func (s *CouponService) Update(ctx context.Context, id int, req models.DummyCoupon) error {
	coupon, err := couponFromRequest(req)
	if err != nil {
		return err
	}
	coupon.ID = id
	count, err := s.repo.UpdateCoupon(ctx, *coupon)
	if err != nil {
		return err
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Remove deletes a coupon by ID.
func (s *CouponService) Remove(ctx context.Context, id int) error {
	count, err := s.repo.DeleteCoupon(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats aggregates usage of one coupon.
func (s *CouponService) Stats(ctx context.Context, id int) (*models.CouponStats, error) {
	if _, err := s.repo.GetCoupon(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetCouponStats(ctx, id)
}

// Redemptions returns the redemption history of one coupon.
func (s *CouponService) Redemptions(ctx context.Context, id int) ([]*models.CouponRedemption, error) {
	if _, err := s.repo.GetCoupon(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return s.repo.ListRedemptions(ctx, id)
}

func couponFromRequest(req models.DummyCoupon) (*models.Coupon, error) {
	coupon := &models.Coupon{
		Code:           req.Code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		TargetPlan:     req.TargetPlan,
		MaxRedemptions: req.MaxRedemptions,
		Active:         req.Active,
	}
	if req.ValidFrom != "" {
		validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid valid_from date: %w", models.ErrInvalidCoupon)
		}
		coupon.ValidFrom = &validFrom
	}
	if req.ValidUntil != "" {
		validUntil, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid valid_until date: %w", models.ErrInvalidCoupon)
		}
		coupon.ValidUntil = &validUntil
	}
	if coupon.DiscountType == models.DiscountPercentage && coupon.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100: %w", models.ErrInvalidCoupon)
	}
	return coupon, nil
}
