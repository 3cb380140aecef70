// Package services contains the business logic for account subjects and
// their sub-accounts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// SubjectRepository defines the storage methods the subject service
// relies on.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject models.AccountSubject) (int, error)
	ListSubjects(ctx context.Context, bookID int) ([]*models.AccountSubject, error)
	DeleteSubject(ctx context.Context, id, userID int) (int, error)
	GetSubject(ctx context.Context, id, userID int) (*models.AccountSubject, error)
	CreateSubAccount(ctx context.Context, sub models.SubAccount) (int, error)
	DeleteSubAccount(ctx context.Context, id, userID int) (int, error)
	GetBook(ctx context.Context, id, userID int) (*models.Book, error)
}

// SubjectService implements the chart-of-accounts management of one book.
type SubjectService struct {
	repo SubjectRepository
	log  *slog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(repo SubjectRepository, log *slog.Logger) *SubjectService {
	return &SubjectService{repo: repo, log: log}
}

// Create adds an account subject to a book the user owns.
func (s *SubjectService) Create(ctx context.Context, bookID, userID int, req models.DummyAccountSubject) (int, error) {
	const op = "services.CreateSubject"

	if _, err := s.repo.GetBook(ctx, bookID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateSubject(ctx, models.AccountSubject{
		BookID:    bookID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List returns a book's subjects with their sub-accounts, in sort order.
func (s *SubjectService) List(ctx context.Context, bookID, userID int) ([]*models.AccountSubject, error) {
	const op = "services.ListSubjects"

	if _, err := s.repo.GetBook(ctx, bookID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subjects, err := s.repo.ListSubjects(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subjects, nil
}

// Remove deletes a subject together with its sub-accounts. Transactions
// referencing it keep their rows but lose the classification.
func (s *SubjectService) Remove(ctx context.Context, id, userID int) error {
	const op = "services.RemoveSubject"

	count, err := s.repo.DeleteSubject(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CreateSubAccount adds a sub-account under a subject the user owns.
func (s *SubjectService) CreateSubAccount(ctx context.Context, subjectID, userID int, req models.DummySubAccount) (int, error) {
	const op = "services.CreateSubAccount"

	if _, err := s.repo.GetSubject(ctx, subjectID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateSubAccount(ctx, models.SubAccount{
		AccountSubjectID: subjectID,
		Name:             req.Name,
		SortOrder:        req.SortOrder,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// RemoveSubAccount deletes a sub-account.
func (s *SubjectService) RemoveSubAccount(ctx context.Context, id, userID int) error {
	const op = "services.RemoveSubAccount"

	count, err := s.repo.DeleteSubAccount(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}
