package models

// AccountSubject is a chart-of-accounts category scoped to one book.
// Deleting a subject cascades to its sub-accounts.
type AccountSubject struct {
	ID          int
	BookID      int
	Name        string
	SortOrder   int
	SubAccounts []SubAccount
}

// SubAccount is a sub-category under one account subject.
type SubAccount struct {
	ID               int
	AccountSubjectID int
	Name             string
	SortOrder        int
}

// DummyAccountSubject receives account subject data from a JSON request.
type DummyAccountSubject struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

// DummySubAccount receives sub-account data from a JSON request.
type DummySubAccount struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
}
