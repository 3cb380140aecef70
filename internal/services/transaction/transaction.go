// Package services contains the business logic for ledger transactions
// and receipt attachments.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenibo-dev/zenibo/internal/ledger"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// TransactionRepository defines the storage methods the transaction
// service relies on.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (int, error)
	ListTransactions(ctx context.Context, bookID int) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id, userID int) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx models.Transaction, id, userID int) (int, error)
	DeleteTransaction(ctx context.Context, id, userID int) (int, error)
	CountTransactionsInMonth(ctx context.Context, userID int, date time.Time) (int, error)
	AttachReceipt(ctx context.Context, txID, userID int, fileName, contentType string) (int, error)
	DetachReceipt(ctx context.Context, txID, userID int) (int, error)
	GetBook(ctx context.Context, id, userID int) (*models.Book, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// Cache describes the caching methods the transaction service uses.
type Cache interface {
	Invalidate(key string) error
}

// TransactionService implements transaction management with plan ceilings
// and ledger views.
type TransactionService struct {
	repo  TransactionRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(repo TransactionRepository, cache Cache, log *slog.Logger) *TransactionService {
	return &TransactionService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		log:   log,
	}
}

// LedgerView is a filtered ledger slice with running balances attached.
type LedgerView struct {
	Filter  string         `json:"filter"`
	Summary ledger.Summary `json:"summary"`
}

func closingCacheKey(bookID int, month time.Time) string {
	return fmt.Sprintf("closing:%d:%s", bookID, month.Format("2006-01"))
}

func (s *TransactionService) invalidateClosing(bookID int, month time.Time) {
	if err := s.cache.Invalidate(closingCacheKey(bookID, month)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
}

// Create adds a transaction to a book the user owns, enforcing the plan's
// monthly transaction ceiling. The ceiling counts entries recorded in the
// calendar month of the transaction date across all of the user's books.
func (s *TransactionService) Create(ctx context.Context, bookID, userID int, req models.DummyTransaction) (int, error) {
	const op = "services.CreateTransaction"

	if _, err := s.repo.GetBook(ctx, bookID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	caps := plan.Get(user.EffectivePlan(s.now()))
	if caps.MaxTransactionsPerMonth != plan.Unlimited {
		count, err := s.repo.CountTransactionsInMonth(ctx, userID, date)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if count >= caps.MaxTransactionsPerMonth {
			return 0, models.ErrLimitExceeded
		}
	}

	tx := models.Transaction{
		BookID:           bookID,
		Date:             date,
		Type:             req.Type,
		Description:      req.Description,
		ClientName:       req.ClientName,
		Amount:           req.Amount,
		AccountSubjectID: req.AccountSubjectID,
		SubAccountID:     req.SubAccountID,
		TaxCode:          req.TaxCode,
	}
	id, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateClosing(bookID, date)
	s.log.Info("transaction created",
		slog.Int("transaction_id", id),
		slog.Int("book_id", bookID))
	return id, nil
}

// List returns a book's ledger restricted by the filter, with running
// balances accumulated from the book's opening balance. An empty filter
// returns the full ledger.
func (s *TransactionService) List(ctx context.Context, bookID, userID int, filter ledger.Filter) (*LedgerView, error) {
	const op = "services.ListTransactions"

	book, err := s.repo.GetBook(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	txs, err := s.repo.ListTransactions(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	matched := ledger.Apply(txs, filter)
	return &LedgerView{
		Filter:  filter.Describe(),
		Summary: ledger.Accumulate(matched, book.OpeningBalance),
	}, nil
}

// Update replaces a transaction's data. Ownership runs through the parent
// book.
func (s *TransactionService) Update(ctx context.Context, id, userID int, req models.DummyTransaction) error {
	const op = "services.UpdateTransaction"

	existing, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx := models.Transaction{
		Date:             date,
		Type:             req.Type,
		Description:      req.Description,
		ClientName:       req.ClientName,
		Amount:           req.Amount,
		AccountSubjectID: req.AccountSubjectID,
		SubAccountID:     req.SubAccountID,
		TaxCode:          req.TaxCode,
	}
	count, err := s.repo.UpdateTransaction(ctx, tx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	// A date change moves the entry between closing periods.
	s.invalidateClosing(existing.BookID, existing.Date)
	s.invalidateClosing(existing.BookID, date)
	return nil
}

// Remove deletes a transaction together with its receipt.
func (s *TransactionService) Remove(ctx context.Context, id, userID int) error {
	const op = "services.RemoveTransaction"

	existing, err := s.repo.GetTransaction(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	s.invalidateClosing(existing.BookID, existing.Date)
	return nil
}

// AttachReceipt stores receipt metadata against a transaction. Receipt
// attachments are a paid feature.
func (s *TransactionService) AttachReceipt(ctx context.Context, txID, userID int, req models.DummyReceipt) (int, error) {
	const op = "services.AttachReceipt"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !plan.Get(user.EffectivePlan(s.now())).CanAttachReceipt {
		return 0, models.ErrReceiptDenied
	}

	id, err := s.repo.AttachReceipt(ctx, txID, userID, req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// DetachReceipt removes a transaction's receipt.
func (s *TransactionService) DetachReceipt(ctx context.Context, txID, userID int) error {
	const op = "services.DetachReceipt"

	count, err := s.repo.DetachReceipt(ctx, txID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}
