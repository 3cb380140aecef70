package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// CreateRecipient inserts a recipient and returns its ID.
func (s *Storage) CreateRecipient(ctx context.Context, r models.Recipient) (int, error) {
	const op = "storage.CreateRecipient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO recipients (user_id, name, email, sort_order)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		r.UserID, r.Name, r.Email, r.SortOrder).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListRecipients returns one user's recipients with their book assignments.
func (s *Storage) ListRecipients(ctx context.Context, userID int) ([]*models.Recipient, error) {
	const op = "storage.ListRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, name, email, sort_order
			  FROM recipients
			  WHERE user_id = $1
			  ORDER BY sort_order, id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Recipient
	byID := make(map[int]*models.Recipient)
	for rows.Next() {
		var item models.Recipient
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Email, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
		byID[item.ID] = &item
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assignQuery := `SELECT rba.recipient_id, rba.book_id
			  FROM recipient_book_assignments rba
			  JOIN recipients r ON rba.recipient_id = r.id
			  WHERE r.user_id = $1
			  ORDER BY rba.book_id`
	assignRows, err := s.DB.QueryContext(ctx, assignQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = assignRows.Close()
	}()

	for assignRows.Next() {
		var recipientID, bookID int
		if err := assignRows.Scan(&recipientID, &bookID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if r, ok := byID[recipientID]; ok {
			r.BookIDs = append(r.BookIDs, bookID)
		}
	}
	if err = assignRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetRecipient returns one recipient scoped to its owner.
func (s *Storage) GetRecipient(ctx context.Context, id, userID int) (*models.Recipient, error) {
	const op = "storage.GetRecipient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, name, email, sort_order
			  FROM recipients
			  WHERE id = $1 AND user_id = $2`
	var result models.Recipient
	row := s.DB.QueryRowContext(ctx, query, id, userID)
	if err := row.Scan(&result.ID, &result.UserID, &result.Name, &result.Email, &result.SortOrder); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateRecipient updates a recipient scoped to its owner and returns the
// number of changed rows.
func (s *Storage) UpdateRecipient(ctx context.Context, r models.Recipient) (int, error) {
	const op = "storage.UpdateRecipient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE recipients
			  SET name = $1, email = $2, sort_order = $3
			  WHERE id = $4 AND user_id = $5`
	result, err := s.DB.ExecContext(ctx, query, r.Name, r.Email, r.SortOrder, r.ID, r.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteRecipient removes a recipient scoped to its owner. Assignments go
// with it through the cascade.
func (s *Storage) DeleteRecipient(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.DeleteRecipient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM recipients WHERE id = $1 AND user_id = $2`
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

// ReplaceBookAssignments makes the recipient's assignment set equal to
// bookIDs inside one database transaction: the existing set is read, and
// only the deltas are applied. Books not owned by the user are rejected by
// the insert's ownership subquery.
func (s *Storage) ReplaceBookAssignments(ctx context.Context, recipientID, userID int, bookIDs []int) error {
	const op = "storage.ReplaceBookAssignments"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	var owned int
	if err := dbTx.QueryRowContext(ctx,
		`SELECT id FROM recipients WHERE id = $1 AND user_id = $2`,
		recipientID, userID).Scan(&owned); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := dbTx.QueryContext(ctx,
		`SELECT book_id FROM recipient_book_assignments WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	existing := make(map[int]bool)
	for rows.Next() {
		var bookID int
		if err := rows.Scan(&bookID); err != nil {
			_ = rows.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
		existing[bookID] = true
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rows.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	wanted := make(map[int]bool, len(bookIDs))
	for _, bookID := range bookIDs {
		wanted[bookID] = true
	}

	for bookID := range existing {
		if wanted[bookID] {
			continue
		}
		if _, err := dbTx.ExecContext(ctx,
			`DELETE FROM recipient_book_assignments WHERE recipient_id = $1 AND book_id = $2`,
			recipientID, bookID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for bookID := range wanted {
		if existing[bookID] {
			continue
		}
		result, err := dbTx.ExecContext(ctx,
			`INSERT INTO recipient_book_assignments (recipient_id, book_id)
			 SELECT $1, id FROM books WHERE id = $2 AND user_id = $3`,
			recipientID, bookID, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if inserted == 0 {
			return fmt.Errorf("%s: book %d: %w", op, bookID, sql.ErrNoRows)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRecipientsForBook returns the recipients assigned to one book. Used
// by the report sender.
func (s *Storage) ListRecipientsForBook(ctx context.Context, bookID int) ([]*models.Recipient, error) {
	const op = "storage.ListRecipientsForBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.user_id, r.name, r.email, r.sort_order
			  FROM recipients r
			  JOIN recipient_book_assignments rba ON rba.recipient_id = r.id
			  WHERE rba.book_id = $1
			  ORDER BY r.sort_order, r.id`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Recipient
	for rows.Next() {
		var item models.Recipient
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Email, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListBooksWithRecipients returns the ids of books that have at least one
// assigned recipient. Used by the report scheduler.
func (s *Storage) ListBooksWithRecipients(ctx context.Context) ([]int, error) {
	const op = "storage.ListBooksWithRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT book_id FROM recipient_book_assignments ORDER BY book_id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int
	for rows.Next() {
		var bookID int
		if err := rows.Scan(&bookID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, bookID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
