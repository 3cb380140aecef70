package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/lib/jwt"
	"github.com/zenibo-dev/zenibo/internal/lib/password"
	"github.com/zenibo-dev/zenibo/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, u models.User) (int, error) {
	args := m.Called(ctx, u)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) UpdateSubscription(ctx context.Context, userID int, planName, status string, expiry *time.Time) (int, error) {
	args := m.Called(ctx, userID, planName, status, expiry)
	return args.Int(0), args.Error(1)
}

type MakerMock struct{ mock.Mock }

func (m *MakerMock) GenerateToken(userID int, userUID, email string) (string, error) {
	args := m.Called(userID, userUID, email)
	return args.String(0), args.Error(1)
}
func (m *MakerMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

type RedeemerMock struct{ mock.Mock }

func (m *RedeemerMock) Redeem(ctx context.Context, code, planName string, userID int) (*models.CouponQuote, error) {
	args := m.Called(ctx, code, planName, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CouponQuote), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		maker := new(MakerMock)
		repo.On("GetUserByEmail", mock.Anything, "sato@example.com").Return(nil, sql.ErrNoRows).Once()
		repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "sato@example.com" &&
				u.Plan == models.PlanFree &&
				u.SubscriptionStatus == models.SubscriptionActive &&
				u.UID != "" && u.PasswordHash != ""
		})).Return(7, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(&models.User{
			ID: 7, UID: "uid-7", Email: "sato@example.com", Plan: models.PlanFree,
		}, nil).Once()
		maker.On("GenerateToken", 7, "uid-7", "sato@example.com").Return("token-7", nil).Once()

		s := NewAuthService(repo, new(RedeemerMock), maker, newNoopLogger())
		res, err := s.Register(context.Background(), models.DummyRegister{
			Email:    "sato@example.com",
			Password: "correct horse",
		})
		assert.NoError(t, err)
		assert.Equal(t, "token-7", res.Token)
		assert.Equal(t, 7, res.User.ID)
		repo.AssertExpectations(t)
		maker.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "sato@example.com").Return(&models.User{ID: 7}, nil).Once()

		s := NewAuthService(repo, new(RedeemerMock), new(MakerMock), newNoopLogger())
		_, err := s.Register(context.Background(), models.DummyRegister{
			Email:    "sato@example.com",
			Password: "correct horse",
		})
		assert.ErrorIs(t, err, models.ErrEmailTaken)
		repo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("correct horse")
	assert.NoError(t, err)
	user := &models.User{ID: 7, UID: "uid-7", Email: "sato@example.com", PasswordHash: hash}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, mk *MakerMock)
		password   string
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(r *RepoMock, mk *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "sato@example.com").Return(user, nil).Once()
				mk.On("GenerateToken", 7, "uid-7", "sato@example.com").Return("token-7", nil).Once()
			},
			password: "correct horse",
		},
		{
			name: "wrong password",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "sato@example.com").Return(user, nil).Once()
			},
			password: "battery staple",
			wantErr:  models.ErrInvalidPassword,
		},
		{
			name: "unknown email reports the same error",
			setupMocks: func(r *RepoMock, _ *MakerMock) {
				r.On("GetUserByEmail", mock.Anything, "sato@example.com").Return(nil, sql.ErrNoRows).Once()
			},
			password: "correct horse",
			wantErr:  models.ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			maker := new(MakerMock)
			tt.setupMocks(repo, maker)

			s := NewAuthService(repo, new(RedeemerMock), maker, newNoopLogger())
			res, err := s.Login(context.Background(), models.DummyLogin{
				Email:    "sato@example.com",
				Password: tt.password,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "token-7", res.Token)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Subscribe(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	user := &models.User{ID: 7, Plan: models.PlanFree, SubscriptionStatus: models.SubscriptionActive}

	t.Run("plan change extends expiry by one month", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, 7).Return(user, nil).Once()
		repo.On("UpdateSubscription", mock.Anything, 7, models.PlanBasic, models.SubscriptionActive,
			mock.MatchedBy(func(expiry *time.Time) bool {
				return expiry != nil && expiry.Equal(now.AddDate(0, 1, 0))
			})).Return(1, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(&models.User{
			ID: 7, Plan: models.PlanBasic, SubscriptionStatus: models.SubscriptionActive,
		}, nil).Once()

		s := NewAuthService(repo, new(RedeemerMock), new(MakerMock), newNoopLogger())
		s.now = func() time.Time { return now }
		updated, err := s.Subscribe(context.Background(), 7, models.DummySubscribe{Plan: models.PlanBasic})
		assert.NoError(t, err)
		assert.Equal(t, models.PlanBasic, updated.Plan)
		repo.AssertExpectations(t)
	})

	t.Run("invalid coupon blocks the change", func(t *testing.T) {
		repo := new(RepoMock)
		redeemer := new(RedeemerMock)
		repo.On("GetUser", mock.Anything, 7).Return(user, nil).Once()
		redeemer.On("Redeem", mock.Anything, "NOPE", models.PlanBasic, 7).
			Return(nil, models.ErrInvalidCoupon).Once()

		s := NewAuthService(repo, redeemer, new(MakerMock), newNoopLogger())
		s.now = func() time.Time { return now }
		_, err := s.Subscribe(context.Background(), 7, models.DummySubscribe{
			Plan:       models.PlanBasic,
			CouponCode: "NOPE",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCoupon)
		repo.AssertExpectations(t)
		redeemer.AssertExpectations(t)
	})

	t.Run("coupon applied", func(t *testing.T) {
		repo := new(RepoMock)
		redeemer := new(RedeemerMock)
		repo.On("GetUser", mock.Anything, 7).Return(user, nil).Once()
		redeemer.On("Redeem", mock.Anything, "LAUNCH20", models.PlanBasic, 7).
			Return(&models.CouponQuote{FinalPrice: 784}, nil).Once()
		repo.On("UpdateSubscription", mock.Anything, 7, models.PlanBasic, models.SubscriptionActive, mock.Anything).
			Return(1, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(&models.User{ID: 7, Plan: models.PlanBasic}, nil).Once()

		s := NewAuthService(repo, redeemer, new(MakerMock), newNoopLogger())
		s.now = func() time.Time { return now }
		_, err := s.Subscribe(context.Background(), 7, models.DummySubscribe{
			Plan:       models.PlanBasic,
			CouponCode: "LAUNCH20",
		})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
		redeemer.AssertExpectations(t)
	})
}

func TestAuthService_Unsubscribe(t *testing.T) {
	expiry := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	repo := new(RepoMock)
	repo.On("GetUser", mock.Anything, 7).Return(&models.User{
		ID: 7, Plan: models.PlanBasic, SubscriptionStatus: models.SubscriptionActive, SubscriptionExpiry: &expiry,
	}, nil).Once()
	repo.On("UpdateSubscription", mock.Anything, 7, models.PlanBasic, models.SubscriptionCanceled, &expiry).
		Return(1, nil).Once()
	repo.On("GetUser", mock.Anything, 7).Return(&models.User{
		ID: 7, Plan: models.PlanBasic, SubscriptionStatus: models.SubscriptionCanceled, SubscriptionExpiry: &expiry,
	}, nil).Once()

	s := NewAuthService(repo, new(RedeemerMock), new(MakerMock), newNoopLogger())
	updated, err := s.Unsubscribe(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionCanceled, updated.SubscriptionStatus)
	repo.AssertExpectations(t)
}
