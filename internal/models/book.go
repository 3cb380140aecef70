package models

import "time"

// Book is one user's cash-book ledger: a named set of transactions with its
// own opening balance and export settings. Deleting a book cascades to its
// transactions, account subjects and recipient assignments.
type Book struct {
	ID             int
	UserID         int
	BusinessName   string // Trading name shown on reports
	AccountName    string // Name of the cash account the book tracks
	OpeningBalance int    // Integer yen, may be negative
	ExportFormat   string // Preferred CSV dialect: basic, mf, freee or yayoi
	CreatedAt      time.Time
}

// DummyBook receives book data from a JSON request.
type DummyBook struct {
	BusinessName   string `json:"business_name" validate:"required"`
	AccountName    string `json:"account_name" validate:"required"`
	OpeningBalance int    `json:"opening_balance"`
	ExportFormat   string `json:"export_format" validate:"omitempty,oneof=basic mf freee yayoi"`
}
