package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/export"
	"github.com/zenibo-dev/zenibo/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetBook(ctx context.Context, id, userID int) (*models.Book, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}
func (m *RepoMock) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}
func (m *RepoMock) ListTransactions(ctx context.Context, bookID int) ([]models.Transaction, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(repo *RepoMock, cache *CacheMock, now time.Time) *ClosingService {
	s := NewClosingService(repo, cache, newNoopLogger())
	s.now = func() time.Time { return now }
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTxs() []models.Transaction {
	return []models.Transaction{
		{ID: 1, BookID: 3, Date: date(2025, 5, 20), Type: models.TypeIncome, Description: "may sale", Amount: 2000},
		{ID: 2, BookID: 3, Date: date(2025, 6, 1), Type: models.TypeIncome, Description: "june sale", Amount: 500},
		{ID: 3, BookID: 3, Date: date(2025, 6, 10), Type: models.TypeExpense, Description: "supplies", Amount: 300},
		{ID: 4, BookID: 3, Date: date(2025, 7, 1), Type: models.TypeIncome, Description: "july sale", Amount: 900},
	}
}

func TestClosingService_Close(t *testing.T) {
	book := &models.Book{ID: 3, UserID: 7, OpeningBalance: 1000}
	june := date(2025, 6, 1)

	t.Run("chains opening through prior months", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		repo.On("ListTransactions", mock.Anything, 3).Return(sampleTxs(), nil).Once()
		cache.On("Get", "closing:3:2025-06", mock.Anything).Return(false, nil).Once()
		cache.On("Set", "closing:3:2025-06", mock.Anything, 10*time.Minute).Return(nil).Once()

		s := newTestService(repo, cache, time.Now())
		summary, err := s.Close(context.Background(), 3, 7, june)
		assert.NoError(t, err)
		assert.Equal(t, 3000, summary.Opening)
		assert.Equal(t, 500, summary.TotalIncome)
		assert.Equal(t, 300, summary.TotalExpense)
		assert.Equal(t, 3200, summary.Closing)
		assert.Equal(t, 2, summary.TransactionCount)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("serves from cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		cache.On("Get", "closing:3:2025-06", mock.Anything).Return(true, nil).Once()

		s := newTestService(repo, cache, time.Now())
		_, err := s.Close(context.Background(), 3, 7, june)
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})
}

func TestClosingService_Export(t *testing.T) {
	book := &models.Book{ID: 3, UserID: 7, BusinessName: "Sato Design", OpeningBalance: 1000, ExportFormat: export.FormatMF}
	june := date(2025, 6, 1)
	now := date(2025, 6, 15)
	basicUser := &models.User{ID: 7, Plan: models.PlanBasic, SubscriptionStatus: models.SubscriptionActive}
	freeUser := &models.User{ID: 7, Plan: models.PlanFree, SubscriptionStatus: models.SubscriptionActive}

	t.Run("defaults to the book format", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(basicUser, nil).Once()
		repo.On("ListTransactions", mock.Anything, 3).Return(sampleTxs(), nil).Once()

		s := newTestService(repo, new(CacheMock), now)
		result, err := s.Export(context.Background(), 3, 7, june, "")
		assert.NoError(t, err)
		assert.Equal(t, export.FormatMF, result.Format)
		assert.Equal(t, "Sato Design_2025-06_mf.csv", result.FileName)
		assert.True(t, strings.HasSuffix(result.FileName, ".csv"))
		repo.AssertExpectations(t)
	})

	t.Run("free plan limited to basic dialect", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(freeUser, nil).Once()

		s := newTestService(repo, new(CacheMock), now)
		_, err := s.Export(context.Background(), 3, 7, june, export.FormatYayoi)
		assert.ErrorIs(t, err, models.ErrForbiddenFormat)
		repo.AssertExpectations(t)
	})

	t.Run("free plan may export basic", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(freeUser, nil).Once()
		repo.On("ListTransactions", mock.Anything, 3).Return(sampleTxs(), nil).Once()

		s := newTestService(repo, new(CacheMock), now)
		result, err := s.Export(context.Background(), 3, 7, june, export.FormatBasic)
		assert.NoError(t, err)
		assert.Equal(t, export.FormatBasic, result.Format)
		repo.AssertExpectations(t)
	})

	t.Run("unknown format", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()

		s := newTestService(repo, new(CacheMock), now)
		_, err := s.Export(context.Background(), 3, 7, june, "quickbooks")
		assert.ErrorIs(t, err, export.ErrUnknownFormat)
		repo.AssertExpectations(t)
	})

	t.Run("empty month reports no data", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetBook", mock.Anything, 3, 7).Return(book, nil).Once()
		repo.On("GetUser", mock.Anything, 7).Return(basicUser, nil).Once()
		repo.On("ListTransactions", mock.Anything, 3).Return([]models.Transaction{}, nil).Once()

		s := newTestService(repo, new(CacheMock), now)
		_, err := s.Export(context.Background(), 3, 7, date(2030, 1, 1), export.FormatBasic)
		assert.ErrorIs(t, err, export.ErrNoData)
		repo.AssertExpectations(t)
	})
}

func TestClosingService_RenderForBook(t *testing.T) {
	book := &models.Book{ID: 3, UserID: 7, BusinessName: "Sato Design", OpeningBalance: 1000}
	june := date(2025, 6, 1)

	repo := new(RepoMock)
	repo.On("GetBookByID", mock.Anything, 3).Return(book, nil).Once()
	repo.On("ListTransactions", mock.Anything, 3).Return(sampleTxs(), nil).Once()

	s := newTestService(repo, new(CacheMock), time.Now())
	result, err := s.RenderForBook(context.Background(), 3, june)
	assert.NoError(t, err)
	assert.Equal(t, export.FormatBasic, result.Format)
	assert.NotEmpty(t, result.Data)
	repo.AssertExpectations(t)
}

func TestClosingService_RenderForBook_PlanFallback(t *testing.T) {
	book := &models.Book{ID: 3, UserID: 7, BusinessName: "Sato Design", OpeningBalance: 1000, ExportFormat: export.FormatMF}
	freeUser := &models.User{ID: 7, Plan: models.PlanFree, SubscriptionStatus: models.SubscriptionActive}
	june := date(2025, 6, 1)

	repo := new(RepoMock)
	repo.On("GetBookByID", mock.Anything, 3).Return(book, nil).Once()
	repo.On("GetUser", mock.Anything, 7).Return(freeUser, nil).Once()
	repo.On("ListTransactions", mock.Anything, 3).Return(sampleTxs(), nil).Once()

	s := newTestService(repo, new(CacheMock), date(2025, 7, 1))
	result, err := s.RenderForBook(context.Background(), 3, june)
	assert.NoError(t, err)
	assert.Equal(t, export.FormatBasic, result.Format)
	repo.AssertExpectations(t)
}
