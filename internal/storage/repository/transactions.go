package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// CreateTransaction inserts a new transaction and returns its ID. The book
// ownership check happens in the service before this call.
func (s *Storage) CreateTransaction(ctx context.Context, tx models.Transaction) (int, error) {
	const op = "storage.CreateTransaction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO transactions (book_id, date, type, description, client_name,
			      amount, account_subject_id, sub_account_id, tax_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		tx.BookID, tx.Date, tx.Type, tx.Description, tx.ClientName,
		tx.Amount, tx.AccountSubjectID, tx.SubAccountID, nullString(tx.TaxCode)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const transactionColumns = `t.id, t.book_id, t.date, t.type, t.description, t.client_name,
			      t.amount, t.account_subject_id, t.sub_account_id, t.tax_code, t.receipt_id,
			      COALESCE(a.name, ''), COALESCE(sa.name, ''), t.created_at`

func scanTransaction(rows *sql.Rows) (*models.Transaction, error) {
	var item models.Transaction
	var taxCode sql.NullString
	if err := rows.Scan(&item.ID, &item.BookID, &item.Date, &item.Type, &item.Description,
		&item.ClientName, &item.Amount, &item.AccountSubjectID, &item.SubAccountID,
		&taxCode, &item.ReceiptID, &item.SubjectName, &item.SubAccountName,
		&item.CreatedAt); err != nil {
		return nil, err
	}
	if taxCode.Valid {
		item.TaxCode = taxCode.String
	}
	return &item, nil
}

// ListTransactions returns all transactions of one book in the canonical
// ledger order (date ascending, then id), with classification names
// resolved.
func (s *Storage) ListTransactions(ctx context.Context, bookID int) ([]models.Transaction, error) {
	const op = "storage.ListTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + `
			  FROM transactions t
			  LEFT JOIN account_subjects a ON t.account_subject_id = a.id
			  LEFT JOIN sub_accounts sa ON t.sub_account_id = sa.id
			  WHERE t.book_id = $1
			  ORDER BY t.date, t.id`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Transaction
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTransaction returns one transaction scoped through book ownership.
func (s *Storage) GetTransaction(ctx context.Context, id, userID int) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + `
			  FROM transactions t
			  JOIN books b ON t.book_id = b.id
			  LEFT JOIN account_subjects a ON t.account_subject_id = a.id
			  LEFT JOIN sub_accounts sa ON t.sub_account_id = sa.id
			  WHERE t.id = $1 AND b.user_id = $2`
	rows, err := s.DB.QueryContext(ctx, query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	item, err := scanTransaction(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// UpdateTransaction updates a transaction scoped through book ownership and
// returns the number of changed rows.
func (s *Storage) UpdateTransaction(ctx context.Context, tx models.Transaction, id, userID int) (int, error) {
	const op = "storage.UpdateTransaction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE transactions t
			  SET date = $1, type = $2, description = $3, client_name = $4,
			      amount = $5, account_subject_id = $6, sub_account_id = $7, tax_code = $8
			  FROM books b
			  WHERE t.book_id = b.id AND t.id = $9 AND b.user_id = $10`
	result, err := s.DB.ExecContext(ctx, query,
		tx.Date, tx.Type, tx.Description, tx.ClientName,
		tx.Amount, tx.AccountSubjectID, tx.SubAccountID, nullString(tx.TaxCode),
		id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteTransaction removes a transaction scoped through book ownership.
func (s *Storage) DeleteTransaction(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.DeleteTransaction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM transactions t
			  USING books b
			  WHERE t.book_id = b.id AND t.id = $1 AND b.user_id = $2`
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

// CountTransactionsInMonth counts a user's transactions across all books
// within the calendar month containing date. Used for the plan ceiling.
func (s *Storage) CountTransactionsInMonth(ctx context.Context, userID int, date time.Time) (int, error) {
	const op = "storage.CountTransactionsInMonth"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	query := `SELECT COUNT(*)
			  FROM transactions t
			  JOIN books b ON t.book_id = b.id
			  WHERE b.user_id = $1 AND t.date >= $2 AND t.date < $3`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, monthStart, monthEnd).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// AttachReceipt stores receipt metadata and links it to the transaction,
// both inside one database transaction.
func (s *Storage) AttachReceipt(ctx context.Context, txID, userID int, fileName, contentType string) (int, error) {
	const op = "storage.AttachReceipt"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	var receiptID int
	query := `INSERT INTO receipts (transaction_id, file_name, content_type)
			  SELECT t.id, $2, $3
			  FROM transactions t
			  JOIN books b ON t.book_id = b.id
			  WHERE t.id = $1 AND b.user_id = $4
			  RETURNING id`
	if err := dbTx.QueryRowContext(ctx, query, txID, fileName, contentType, userID).Scan(&receiptID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET receipt_id = $1 WHERE id = $2`, receiptID, txID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return receiptID, nil
}

// DetachReceipt unlinks and removes the receipt of a transaction.
func (s *Storage) DetachReceipt(ctx context.Context, txID, userID int) (int, error) {
	const op = "storage.DetachReceipt"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if _, err := dbTx.ExecContext(ctx, `UPDATE transactions t
			  SET receipt_id = NULL
			  FROM books b
			  WHERE t.book_id = b.id AND t.id = $1 AND b.user_id = $2`, txID, userID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	result, err := dbTx.ExecContext(ctx, `DELETE FROM receipts r
			  USING transactions t, books b
			  WHERE r.transaction_id = t.id AND t.book_id = b.id
			    AND t.id = $1 AND b.user_id = $2`, txID, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
