package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListBooksWithRecipients(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "mid month",
			now:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			want: "2025-05",
		},
		{
			name: "first of month",
			now:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			want: "2025-05",
		},
		{
			name: "january rolls to previous year",
			now:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			want: "2024-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, previousMonth(tt.now))
		})
	}
}

func TestSchedulerService_DispatchDueReports(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no books with recipients publishes nothing", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListBooksWithRecipients", mock.Anything).Return([]int{}, nil).Once()

		s := NewSchedulerService(repo, nil, newNoopLogger())
		s.now = func() time.Time { return now }
		err := s.DispatchDueReports(context.Background())
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("a month is dispatched once per process", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListBooksWithRecipients", mock.Anything).Return([]int{}, nil).Once()

		s := NewSchedulerService(repo, nil, newNoopLogger())
		s.now = func() time.Time { return now }
		assert.NoError(t, s.DispatchDueReports(context.Background()))
		assert.NoError(t, s.DispatchDueReports(context.Background()))
		repo.AssertNumberOfCalls(t, "ListBooksWithRecipients", 1)
	})
}
