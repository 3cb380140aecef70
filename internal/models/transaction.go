package models

import "time"

// Transaction types. An amount belongs to exactly one of the income or
// expense columns, never both.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Tax classification keys. Each export dialect maps these to its own display
// labels; an unset or unrecognized code is treated as TaxTaxable10.
const (
	TaxTaxable10  = "taxable-10"
	TaxTaxable8   = "taxable-8"
	TaxNonTaxable = "non-taxable"
	TaxExempt     = "tax-exempt"
	TaxOutOfScope = "out-of-scope"
)

// Transaction is one income or expense entry within a book. The date is a
// calendar date without a time component; the amount is a non-negative
// integer in yen.
type Transaction struct {
	ID               int
	BookID           int
	Date             time.Time
	Type             string // income or expense
	Description      string
	ClientName       string // Counterparty
	Amount           int
	AccountSubjectID *int   // Optional classification
	SubAccountID     *int   // Optional sub-classification
	TaxCode          string // One of the tax classification keys, may be empty
	ReceiptID        *int   // Optional attached receipt
	SubjectName      string // Resolved account subject name, empty when unclassified
	SubAccountName   string // Resolved sub-account name, empty when unclassified
	CreatedAt        time.Time
}

// DummyTransaction receives transaction data from a JSON request. The date
// arrives as a string so it can be validated and parsed explicitly.
type DummyTransaction struct {
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	Type             string `json:"type" validate:"required,oneof=income expense"`
	Description      string `json:"description" validate:"required"`
	ClientName       string `json:"client_name,omitempty" validate:"omitempty"`
	Amount           int    `json:"amount" validate:"required,gte=0"`
	AccountSubjectID *int   `json:"account_subject_id,omitempty"`
	SubAccountID     *int   `json:"sub_account_id,omitempty"`
	TaxCode          string `json:"tax_code,omitempty" validate:"omitempty,oneof=taxable-10 taxable-8 non-taxable tax-exempt out-of-scope"`
}

// Receipt is a stored reference to an uploaded receipt file.
type Receipt struct {
	ID            int
	TransactionID int
	FileName      string
	ContentType   string
	UploadedAt    time.Time
}

// DummyReceipt receives receipt metadata from a JSON request.
type DummyReceipt struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}
