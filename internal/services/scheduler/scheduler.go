// Package services contains the scheduler that turns finished calendar
// months into closing-report jobs.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/rabbitmq"
)

// SchedulerRepository defines the storage methods the scheduler relies on.
type SchedulerRepository interface {
	ListBooksWithRecipients(ctx context.Context) ([]int, error)
}

// SchedulerService publishes one closing-report job per book with
// recipients once a calendar month has finished.
type SchedulerService struct {
	repo       SchedulerRepository
	channel    *amqp.Channel
	log        *slog.Logger
	now        func() time.Time
	dispatched string // Last month already dispatched, in YYYY-MM form
}

// NewSchedulerService creates a new SchedulerService.
func NewSchedulerService(repo SchedulerRepository, channel *amqp.Channel, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:    repo,
		channel: channel,
		log:     log,
		now:     time.Now,
	}
}

// Start runs the dispatch loop until the context is canceled. Each tick
// checks whether the previous month still needs dispatching, so a restart
// mid-month publishes at most one extra round per book.
func (s *SchedulerService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.DispatchDueReports(ctx); err != nil {
		s.log.Error("failed to dispatch reports", sl.Err(err))
	}
	for {
		select {
		case <-ticker.C:
			if err := s.DispatchDueReports(ctx); err != nil {
				s.log.Error("failed to dispatch reports", sl.Err(err))
			}
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		}
	}
}

// DispatchDueReports publishes jobs for the previous calendar month unless
// that month was already dispatched in this process.
func (s *SchedulerService) DispatchDueReports(ctx context.Context) error {
	const op = "services.DispatchDueReports"

	month := previousMonth(s.now())
	if month == s.dispatched {
		return nil
	}

	bookIDs, err := s.repo.ListBooksWithRecipients(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, bookID := range bookIDs {
		job := models.ReportJob{BookID: bookID, Month: month}
		if err := rabbitmq.PublishMessage(s.channel, rabbitmq.ReportsExchange, rabbitmq.ClosingRoutingKey, job); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("report job published",
			slog.Int("book_id", bookID),
			slog.String("month", month))
	}

	s.dispatched = month
	return nil
}

func previousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("2006-01")
}
