// Package services contains the business logic for report recipients and
// their book assignments.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// RecipientRepository defines the storage methods the recipient service
// relies on.
type RecipientRepository interface {
	CreateRecipient(ctx context.Context, r models.Recipient) (int, error)
	ListRecipients(ctx context.Context, userID int) ([]*models.Recipient, error)
	GetRecipient(ctx context.Context, id, userID int) (*models.Recipient, error)
	UpdateRecipient(ctx context.Context, r models.Recipient) (int, error)
	DeleteRecipient(ctx context.Context, id, userID int) (int, error)
	ReplaceBookAssignments(ctx context.Context, recipientID, userID int, bookIDs []int) error
}

// RecipientService implements recipient management.
type RecipientService struct {
	repo RecipientRepository
	log  *slog.Logger
}

// NewRecipientService creates a new RecipientService.
func NewRecipientService(repo RecipientRepository, log *slog.Logger) *RecipientService {
	return &RecipientService{repo: repo, log: log}
}

// Create adds a recipient for the user.
func (s *RecipientService) Create(ctx context.Context, userID int, req models.DummyRecipient) (int, error) {
	const op = "services.CreateRecipient"

	id, err := s.repo.CreateRecipient(ctx, models.Recipient{
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List returns the user's recipients together with their book assignments.
func (s *RecipientService) List(ctx context.Context, userID int) ([]*models.Recipient, error) {
	return s.repo.ListRecipients(ctx, userID)
}

// Update replaces a recipient's contact data. Book assignments are managed
// separately through ReplaceAssignments.
func (s *RecipientService) Update(ctx context.Context, id, userID int, req models.DummyRecipient) error {
	const op = "services.UpdateRecipient"

	count, err := s.repo.UpdateRecipient(ctx, models.Recipient{
		ID:        id,
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Remove deletes a recipient together with its assignments.
func (s *RecipientService) Remove(ctx context.Context, id, userID int) error {
	const op = "services.RemoveRecipient"

	count, err := s.repo.DeleteRecipient(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ReplaceAssignments swaps a recipient's book assignments for the given
// set in one transaction. Duplicate IDs collapse; a book the user does not
// own fails the whole replacement.
func (s *RecipientService) ReplaceAssignments(ctx context.Context, id, userID int, req models.DummyAssignments) (*models.Recipient, error) {
	const op = "services.ReplaceAssignments"

	seen := make(map[int]struct{}, len(req.BookIDs))
	bookIDs := make([]int, 0, len(req.BookIDs))
	for _, bookID := range req.BookIDs {
		if _, ok := seen[bookID]; ok {
			continue
		}
		seen[bookID] = struct{}{}
		bookIDs = append(bookIDs, bookID)
	}

	if err := s.repo.ReplaceBookAssignments(ctx, id, userID, bookIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recipient, err := s.repo.GetRecipient(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("assignments replaced",
		slog.Int("recipient_id", id),
		slog.Int("books", len(bookIDs)))
	return recipient, nil
}
