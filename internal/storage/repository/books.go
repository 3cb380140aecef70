package repository

import (
	"context"
	"fmt"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// CreateBook inserts a new book and returns its ID.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int, error) {
	const op = "storage.CreateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO books (user_id, business_name, account_name, opening_balance, export_format)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		book.UserID, book.BusinessName, book.AccountName, book.OpeningBalance,
		book.ExportFormat).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListBooks returns all books of one user ordered by creation.
func (s *Storage) ListBooks(ctx context.Context, userID int) ([]*models.Book, error) {
	const op = "storage.ListBooks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, business_name, account_name, opening_balance, export_format, created_at
			  FROM books
			  WHERE user_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Book
	for rows.Next() {
		var item models.Book
		if err := rows.Scan(&item.ID, &item.UserID, &item.BusinessName, &item.AccountName,
			&item.OpeningBalance, &item.ExportFormat, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetBook returns one book scoped to its owner.
func (s *Storage) GetBook(ctx context.Context, id, userID int) (*models.Book, error) {
	const op = "storage.GetBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, business_name, account_name, opening_balance, export_format, created_at
			  FROM books
			  WHERE id = $1 AND user_id = $2`
	var result models.Book
	row := s.DB.QueryRowContext(ctx, query, id, userID)
	if err := row.Scan(&result.ID, &result.UserID, &result.BusinessName, &result.AccountName,
		&result.OpeningBalance, &result.ExportFormat, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateBook updates a book scoped to its owner and returns the number of
// changed rows.
func (s *Storage) UpdateBook(ctx context.Context, book models.Book) (int, error) {
	const op = "storage.UpdateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE books
			  SET business_name = $1, account_name = $2, opening_balance = $3, export_format = $4
			  WHERE id = $5 AND user_id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		book.BusinessName, book.AccountName, book.OpeningBalance, book.ExportFormat,
		book.ID, book.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteBook removes a book scoped to its owner. Transactions, account
// subjects and recipient assignments go with it through the cascade.
func (s *Storage) DeleteBook(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.DeleteBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM books WHERE id = $1 AND user_id = $2`
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

// CountBooks returns how many books a user owns.
func (s *Storage) CountBooks(ctx context.Context, userID int) (int, error) {
	const op = "storage.CountBooks"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM books WHERE user_id = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetBookByID returns a book without owner scoping. Used by the report
// pipeline, which acts on behalf of the system rather than a caller.
func (s *Storage) GetBookByID(ctx context.Context, id int) (*models.Book, error) {
	const op = "storage.GetBookByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, business_name, account_name, opening_balance, export_format, created_at
			  FROM books
			  WHERE id = $1`
	var result models.Book
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&result.ID, &result.UserID, &result.BusinessName, &result.AccountName,
		&result.OpeningBalance, &result.ExportFormat, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
