package repository

import (
	"context"
	"fmt"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// CreateSubject inserts an account subject and returns its ID.
func (s *Storage) CreateSubject(ctx context.Context, subject models.AccountSubject) (int, error) {
	const op = "storage.CreateSubject"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO account_subjects (book_id, name, sort_order)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		subject.BookID, subject.Name, subject.SortOrder).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListSubjects returns the account subjects of one book with their
// sub-accounts, both ordered by sort order then id.
func (s *Storage) ListSubjects(ctx context.Context, bookID int) ([]*models.AccountSubject, error) {
	const op = "storage.ListSubjects"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, book_id, name, sort_order
			  FROM account_subjects
			  WHERE book_id = $1
			  ORDER BY sort_order, id`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccountSubject
	byID := make(map[int]*models.AccountSubject)
	for rows.Next() {
		var item models.AccountSubject
		if err := rows.Scan(&item.ID, &item.BookID, &item.Name, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
		byID[item.ID] = &item
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subQuery := `SELECT sa.id, sa.account_subject_id, sa.name, sa.sort_order
			  FROM sub_accounts sa
			  JOIN account_subjects a ON sa.account_subject_id = a.id
			  WHERE a.book_id = $1
			  ORDER BY sa.sort_order, sa.id`
	subRows, err := s.DB.QueryContext(ctx, subQuery, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = subRows.Close()
	}()

	for subRows.Next() {
		var sub models.SubAccount
		if err := subRows.Scan(&sub.ID, &sub.AccountSubjectID, &sub.Name, &sub.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if parent, ok := byID[sub.AccountSubjectID]; ok {
			parent.SubAccounts = append(parent.SubAccounts, sub)
		}
	}
	if err = subRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteSubject removes an account subject scoped through book ownership.
// Its sub-accounts go with it through the cascade.
func (s *Storage) DeleteSubject(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.DeleteSubject"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM account_subjects a
			  USING books b
			  WHERE a.book_id = b.id AND a.id = $1 AND b.user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetSubject returns one account subject scoped through book ownership.
func (s *Storage) GetSubject(ctx context.Context, id, userID int) (*models.AccountSubject, error) {
	const op = "storage.GetSubject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.book_id, a.name, a.sort_order
			  FROM account_subjects a
			  JOIN books b ON a.book_id = b.id
			  WHERE a.id = $1 AND b.user_id = $2`
	var result models.AccountSubject
	row := s.DB.QueryRowContext(ctx, query, id, userID)
	if err := row.Scan(&result.ID, &result.BookID, &result.Name, &result.SortOrder); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// CreateSubAccount inserts a sub-account and returns its ID.
func (s *Storage) CreateSubAccount(ctx context.Context, sub models.SubAccount) (int, error) {
	const op = "storage.CreateSubAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sub_accounts (account_subject_id, name, sort_order)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.AccountSubjectID, sub.Name, sub.SortOrder).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// DeleteSubAccount removes a sub-account scoped through subject and book
// ownership.
func (s *Storage) DeleteSubAccount(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.DeleteSubAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM sub_accounts sa
			  USING account_subjects a, books b
			  WHERE sa.account_subject_id = a.id AND a.book_id = b.id
			    AND sa.id = $1 AND b.user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
