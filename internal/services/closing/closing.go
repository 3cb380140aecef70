// Package services contains the business logic for monthly closing
// summaries and CSV export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenibo-dev/zenibo/internal/export"
	"github.com/zenibo-dev/zenibo/internal/ledger"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// ClosingRepository defines the storage methods the closing service
// relies on.
type ClosingRepository interface {
	GetBook(ctx context.Context, id, userID int) (*models.Book, error)
	GetBookByID(ctx context.Context, id int) (*models.Book, error)
	ListTransactions(ctx context.Context, bookID int) ([]models.Transaction, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// Cache describes the caching methods the closing service uses.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// ClosingService computes monthly summaries and renders CSV exports.
type ClosingService struct {
	repo  ClosingRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewClosingService creates a new ClosingService.
func NewClosingService(repo ClosingRepository, cache Cache, log *slog.Logger) *ClosingService {
	return &ClosingService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		log:   log,
	}
}

// MonthlySummary is the closing result of one book for one calendar month.
// Opening carries everything recorded before the month, so the figures
// chain month to month.
type MonthlySummary struct {
	BookID           int    `json:"book_id"`
	Month            string `json:"month"`
	Opening          int    `json:"opening"`
	TotalIncome      int    `json:"total_income"`
	TotalExpense     int    `json:"total_expense"`
	Closing          int    `json:"closing"`
	TransactionCount int    `json:"transaction_count"`
}

func closingCacheKey(bookID int, month time.Time) string {
	return fmt.Sprintf("closing:%d:%s", bookID, month.Format("2006-01"))
}

// ParseMonth parses a calendar month in YYYY-MM form.
func ParseMonth(month string) (time.Time, error) {
	return time.Parse("2006-01", month)
}

// monthWindow splits txs around one calendar month, entries before the
// month and entries within it.
func monthWindow(txs []models.Transaction, month time.Time) (before, within []models.Transaction) {
	next := month.AddDate(0, 1, 0)
	for _, tx := range txs {
		switch {
		case tx.Date.Before(month):
			before = append(before, tx)
		case tx.Date.Before(next):
			within = append(within, tx)
		}
	}
	return before, within
}

// Close computes a book's closing summary for one month, served from cache
// when possible.
func (s *ClosingService) Close(ctx context.Context, bookID, userID int, month time.Time) (*MonthlySummary, error) {
	const op = "services.Close"

	book, err := s.repo.GetBook(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cached MonthlySummary
	found, err := s.cache.Get(closingCacheKey(bookID, month), &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	summary, err := s.summarize(ctx, book, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(closingCacheKey(bookID, month), summary, 10*time.Minute); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return summary, nil
}

func (s *ClosingService) summarize(ctx context.Context, book *models.Book, month time.Time) (*MonthlySummary, error) {
	txs, err := s.repo.ListTransactions(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	before, within := monthWindow(txs, month)
	opening := ledger.Accumulate(before, book.OpeningBalance).Closing
	acc := ledger.Accumulate(within, opening)
	return &MonthlySummary{
		BookID:           book.ID,
		Month:            month.Format("2006-01"),
		Opening:          opening,
		TotalIncome:      acc.TotalIncome,
		TotalExpense:     acc.TotalExpense,
		Closing:          acc.Closing,
		TransactionCount: len(within),
	}, nil
}

// Export renders one month of a book as CSV. The format defaults to the
// book's preference, then to basic; free-plan users may export only the
// basic dialect. A month with no entries reports export.ErrNoData.
func (s *ClosingService) Export(ctx context.Context, bookID, userID int, month time.Time, format string) (*export.Result, error) {
	const op = "services.Export"

	book, err := s.repo.GetBook(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if format == "" {
		format = book.ExportFormat
	}
	if format == "" {
		format = export.FormatBasic
	}
	if !export.ValidFormat(format) {
		return nil, export.ErrUnknownFormat
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !plan.AllowsFormat(user.EffectivePlan(s.now()), format) {
		return nil, models.ErrForbiddenFormat
	}

	return s.render(ctx, book, month, format)
}

// RenderForBook renders one month of a book without user scoping. The
// report pipeline calls it for books it already resolved by schedule.
func (s *ClosingService) RenderForBook(ctx context.Context, bookID int, month time.Time) (*export.Result, error) {
	const op = "services.RenderForBook"

	book, err := s.repo.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	format := book.ExportFormat
	if format == "" || !export.ValidFormat(format) {
		format = export.FormatBasic
	}
	if format != export.FormatBasic {
		user, err := s.repo.GetUser(ctx, book.UserID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !plan.AllowsFormat(user.EffectivePlan(s.now()), format) {
			format = export.FormatBasic
		}
	}
	return s.render(ctx, book, month, format)
}

func (s *ClosingService) render(ctx context.Context, book *models.Book, month time.Time, format string) (*export.Result, error) {
	txs, err := s.repo.ListTransactions(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	before, within := monthWindow(txs, month)
	opening := ledger.Accumulate(before, book.OpeningBalance).Closing

	data, err := export.Render(format, within, opening)
	if err != nil {
		return nil, err
	}
	return &export.Result{
		FileName: fmt.Sprintf("%s_%s_%s.csv", book.BusinessName, month.Format("2006-01"), format),
		Format:   format,
		Data:     data,
	}, nil
}
