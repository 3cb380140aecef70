// Package services contains the business logic for cash books.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/models"
	"github.com/zenibo-dev/zenibo/internal/plan"
)

// BookRepository defines the storage methods the book service relies on.
type BookRepository interface {
	CreateBook(ctx context.Context, b models.Book) (int, error)
	ListBooks(ctx context.Context, userID int) ([]*models.Book, error)
	GetBook(ctx context.Context, id, userID int) (*models.Book, error)
	UpdateBook(ctx context.Context, b models.Book) (int, error)
	DeleteBook(ctx context.Context, id, userID int) (int, error)
	CountBooks(ctx context.Context, userID int) (int, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// Cache describes the caching methods the book service uses.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// BookService implements book management with plan ceilings.
type BookService struct {
	repo  BookRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewBookService creates a new BookService.
func NewBookService(repo BookRepository, cache Cache, log *slog.Logger) *BookService {
	return &BookService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		log:   log,
	}
}

func bookCacheKey(id int) string {
	return fmt.Sprintf("book:%d", id)
}

// Create adds a book for the user, enforcing the plan's book ceiling.
func (s *BookService) Create(ctx context.Context, userID int, req models.DummyBook) (int, error) {
	const op = "services.CreateBook"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	caps := plan.Get(user.EffectivePlan(s.now()))
	if caps.MaxBooks != plan.Unlimited {
		count, err := s.repo.CountBooks(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if count >= caps.MaxBooks {
			return 0, models.ErrLimitExceeded
		}
	}

	book := models.Book{
		UserID:         userID,
		BusinessName:   req.BusinessName,
		AccountName:    req.AccountName,
		OpeningBalance: req.OpeningBalance,
		ExportFormat:   req.ExportFormat,
	}
	id, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("book created", slog.Int("book_id", id), slog.Int("user_id", userID))
	return id, nil
}

// List returns the user's books.
func (s *BookService) List(ctx context.Context, userID int) ([]*models.Book, error) {
	return s.repo.ListBooks(ctx, userID)
}

// Read returns one book of the user, served from cache when possible.
func (s *BookService) Read(ctx context.Context, id, userID int) (*models.Book, error) {
	const op = "services.ReadBook"

	var cached models.Book
	found, err := s.cache.Get(bookCacheKey(id), &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err))
	}
	if found && cached.UserID == userID {
		return &cached, nil
	}

	book, err := s.repo.GetBook(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(bookCacheKey(id), book, 10*time.Minute); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return book, nil
}

// Update replaces a book's data.
func (s *BookService) Update(ctx context.Context, id, userID int, req models.DummyBook) error {
	const op = "services.UpdateBook"

	book := models.Book{
		ID:             id,
		UserID:         userID,
		BusinessName:   req.BusinessName,
		AccountName:    req.AccountName,
		OpeningBalance: req.OpeningBalance,
		ExportFormat:   req.ExportFormat,
	}
	count, err := s.repo.UpdateBook(ctx, book)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	if err := s.cache.Invalidate(bookCacheKey(id)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
	return nil
}

// Remove deletes a book together with its transactions and subjects.
func (s *BookService) Remove(ctx context.Context, id, userID int) error {
	const op = "services.RemoveBook"

	count, err := s.repo.DeleteBook(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	if err := s.cache.Invalidate(bookCacheKey(id)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
	s.log.Info("book removed", slog.Int("book_id", id), slog.Int("user_id", userID))
	return nil
}
