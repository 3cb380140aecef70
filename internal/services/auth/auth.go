// Package services contains the business logic for registration, login
// and subscription management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zenibo-dev/zenibo/internal/lib/jwt"
	"github.com/zenibo-dev/zenibo/internal/lib/password"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// UserRepository defines the storage methods the auth service relies on.
type UserRepository interface {
	RegisterUser(ctx context.Context, u models.User) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	UpdateSubscription(ctx context.Context, userID int, planName, status string, expiry *time.Time) (int, error)
}

// CouponRedeemer applies a coupon to a plan change on behalf of one user.
type CouponRedeemer interface {
	Redeem(ctx context.Context, code, planName string, userID int) (*models.CouponQuote, error)
}

// AuthService implements registration, login and subscription changes.
type AuthService struct {
	repo    UserRepository
	coupons CouponRedeemer
	maker   jwt.Maker
	log     *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, coupons CouponRedeemer, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		coupons: coupons,
		maker:   maker,
		log:     log,
		now:     time.Now,
	}
}

// AuthResult carries a freshly issued token together with the user it
// belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user on the free plan and issues a token.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (*AuthResult, error) {
	const op = "services.Register"

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:                uuid.NewString(),
		Email:              req.Email,
		PasswordHash:       hash,
		Plan:               models.PlanFree,
		SubscriptionStatus: models.SubscriptionActive,
	}
	id, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(created.ID, created.UID, created.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int("user_id", created.ID))
	return &AuthResult{Token: token, User: created}, nil
}

// Login verifies a user's credentials and issues a token. A missing user
// and a wrong password report the same error.
func (s *AuthService) Login(ctx context.Context, req models.DummyLogin) (*AuthResult, error) {
	const op = "services.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidPassword
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(req.Password, user.PasswordHash); err != nil {
		return nil, models.ErrInvalidPassword
	}

	token, err := s.maker.GenerateToken(user.ID, user.UID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Subscribe switches the user to a paid plan, optionally applying a coupon,
// and extends the subscription by one month.
func (s *AuthService) Subscribe(ctx context.Context, userID int, req models.DummySubscribe) (*models.User, error) {
	const op = "services.Subscribe"

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	price := plan.Price(req.Plan)
	if req.CouponCode != "" {
		quote, err := s.coupons.Redeem(ctx, req.CouponCode, req.Plan, userID)
		if err != nil {
			return nil, err
		}
		price = quote.FinalPrice
		s.log.Info("coupon applied",
			slog.String("code", req.CouponCode),
			slog.Int("final_price", price))
	}

	expiry := s.now().AddDate(0, 1, 0)
	count, err := s.repo.UpdateSubscription(ctx, userID, req.Plan, models.SubscriptionActive, &expiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription updated",
		slog.Int("user_id", userID),
		slog.String("plan", req.Plan))
	return user, nil
}

// Unsubscribe cancels the subscription. The user keeps the paid plan until
// the current expiry, after which entitlement checks fall back to free.
func (s *AuthService) Unsubscribe(ctx context.Context, userID int) (*models.User, error) {
	const op = "services.Unsubscribe"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.UpdateSubscription(ctx, userID, user.Plan, models.SubscriptionCanceled, user.SubscriptionExpiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	updated, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription canceled", slog.Int("user_id", userID))
	return updated, nil
}
