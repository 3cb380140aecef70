package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateCoupon(ctx context.Context, c models.Coupon) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}
func (m *RepoMock) GetCoupon(ctx context.Context, id int) (*models.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}
func (m *RepoMock) ListCoupons(ctx context.Context) ([]*models.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Coupon), args.Error(1)
}
func (m *RepoMock) UpdateCoupon(ctx context.Context, c models.Coupon) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) DeleteCoupon(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) CountRedemptions(ctx context.Context, couponID int) (int, error) {
	args := m.Called(ctx, couponID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) HasUserRedeemed(ctx context.Context, couponID, userID int) (bool, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) CreateRedemption(ctx context.Context, r models.CouponRedemption) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListRedemptions(ctx context.Context, couponID int) ([]*models.CouponRedemption, error) {
	args := m.Called(ctx, couponID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CouponRedemption), args.Error(1)
}
func (m *RepoMock) GetCouponStats(ctx context.Context, couponID int) (*models.CouponStats, error) {
	args := m.Called(ctx, couponID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CouponStats), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(repo *RepoMock, now time.Time) *CouponService {
	s := NewCouponService(repo, newNoopLogger())
	s.now = func() time.Time { return now }
	return s
}

func datePtr(t time.Time) *time.Time { return &t }

func TestCouponService_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	active := &models.Coupon{
		ID:            1,
		Code:          "LAUNCH20",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		Active:        true,
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		code       string
		plan       string
		wantFinal  int
		wantErr    error
	}{
		{
			name: "percentage discount on basic",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "LAUNCH20").Return(active, nil).Once()
			},
			code:      "LAUNCH20",
			plan:      models.PlanBasic,
			wantFinal: 784,
		},
		{
			name: "fixed discount on professional",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "YEN500").Return(&models.Coupon{
					ID:            2,
					Code:          "YEN500",
					DiscountType:  models.DiscountFixed,
					DiscountValue: 500,
					Active:        true,
				}, nil).Once()
			},
			code:      "YEN500",
			plan:      models.PlanProfessional,
			wantFinal: 2480,
		},
		{
			name: "fixed discount clamps at plan price",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "BIG").Return(&models.Coupon{
					ID:            3,
					Code:          "BIG",
					DiscountType:  models.DiscountFixed,
					DiscountValue: 5000,
					Active:        true,
				}, nil).Once()
			},
			code:      "BIG",
			plan:      models.PlanBasic,
			wantFinal: 0,
		},
		{
			name: "unknown code",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "NOPE").Return(nil, sql.ErrNoRows).Once()
			},
			code:    "NOPE",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "inactive coupon",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "OLD").Return(&models.Coupon{
					ID: 4, Code: "OLD", DiscountType: models.DiscountFixed, DiscountValue: 100,
				}, nil).Once()
			},
			code:    "OLD",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "not yet valid",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "SOON").Return(&models.Coupon{
					ID: 5, Code: "SOON", DiscountType: models.DiscountFixed,
					DiscountValue: 100, Active: true,
					ValidFrom: datePtr(now.AddDate(0, 0, 1)),
				}, nil).Once()
			},
			code:    "SOON",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "expired",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "PAST").Return(&models.Coupon{
					ID: 6, Code: "PAST", DiscountType: models.DiscountFixed,
					DiscountValue: 100, Active: true,
					ValidUntil: datePtr(now.AddDate(0, 0, -1)),
				}, nil).Once()
			},
			code:    "PAST",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "plan restriction mismatch",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "PROONLY").Return(&models.Coupon{
					ID: 7, Code: "PROONLY", DiscountType: models.DiscountFixed,
					DiscountValue: 100, Active: true,
					TargetPlan: models.PlanProfessional,
				}, nil).Once()
			},
			code:    "PROONLY",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "global cap reached",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "CAPPED").Return(&models.Coupon{
					ID: 8, Code: "CAPPED", DiscountType: models.DiscountFixed,
					DiscountValue: 100, Active: true, MaxRedemptions: 3,
				}, nil).Once()
				r.On("CountRedemptions", mock.Anything, 8).Return(3, nil).Once()
			},
			code:    "CAPPED",
			plan:    models.PlanBasic,
			wantErr: models.ErrInvalidCoupon,
		},
		{
			name: "under global cap",
			setupMocks: func(r *RepoMock) {
				r.On("GetCouponByCode", mock.Anything, "CAPPED").Return(&models.Coupon{
					ID: 8, Code: "CAPPED", DiscountType: models.DiscountFixed,
					DiscountValue: 100, Active: true, MaxRedemptions: 3,
				}, nil).Once()
				r.On("CountRedemptions", mock.Anything, 8).Return(2, nil).Once()
			},
			code:      "CAPPED",
			plan:      models.PlanBasic,
			wantFinal: 880,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			s := newTestService(repo, now)

			quote, err := s.Validate(context.Background(), tt.code, tt.plan)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, quote)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantFinal, quote.FinalPrice)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCouponService_Redeem(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            1,
		Code:          "LAUNCH20",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 20,
		Active:        true,
	}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCouponByCode", mock.Anything, "LAUNCH20").Return(coupon, nil).Twice()
		repo.On("HasUserRedeemed", mock.Anything, 1, 7).Return(false, nil).Once()
		repo.On("CreateRedemption", mock.Anything, mock.MatchedBy(func(r models.CouponRedemption) bool {
			return r.CouponID == 1 && r.UserID == 7 && r.Discounted == 196
		})).Return(10, nil).Once()

		s := newTestService(repo, now)
		quote, err := s.Redeem(context.Background(), "LAUNCH20", models.PlanBasic, 7)
		assert.NoError(t, err)
		assert.Equal(t, 784, quote.FinalPrice)
		repo.AssertExpectations(t)
	})

	t.Run("already redeemed by user", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCouponByCode", mock.Anything, "LAUNCH20").Return(coupon, nil).Twice()
		repo.On("HasUserRedeemed", mock.Anything, 1, 7).Return(true, nil).Once()

		s := newTestService(repo, now)
		_, err := s.Redeem(context.Background(), "LAUNCH20", models.PlanBasic, 7)
		assert.ErrorIs(t, err, models.ErrInvalidCoupon)
		repo.AssertExpectations(t)
	})

	t.Run("cap taken between validation and insert", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCouponByCode", mock.Anything, "LAUNCH20").Return(coupon, nil).Twice()
		repo.On("HasUserRedeemed", mock.Anything, 1, 7).Return(false, nil).Once()
		repo.On("CreateRedemption", mock.Anything, mock.Anything).
			Return(0, fmt.Errorf("storage.CreateRedemption: %w", models.ErrInvalidCoupon)).Once()

		s := newTestService(repo, now)
		_, err := s.Redeem(context.Background(), "LAUNCH20", models.PlanBasic, 7)
		assert.ErrorIs(t, err, models.ErrInvalidCoupon)
		repo.AssertExpectations(t)
	})
}

func TestCouponService_Stats(t *testing.T) {
	t.Run("missing coupon", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, 99).Return(nil, sql.ErrNoRows).Once()

		s := newTestService(repo, time.Now())
		_, err := s.Stats(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("aggregates usage", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, 1).Return(&models.Coupon{ID: 1}, nil).Once()
		repo.On("GetCouponStats", mock.Anything, 1).Return(&models.CouponStats{
			CouponID: 1, RedemptionCount: 4, TotalDiscounted: 784,
		}, nil).Once()

		s := newTestService(repo, time.Now())
		stats, err := s.Stats(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, 4, stats.RedemptionCount)
		repo.AssertExpectations(t)
	})
}
