package models

// Recipient is an email contact owned by one user. A recipient can be
// assigned to several books and receives closing reports for each of them.
type Recipient struct {
	ID        int
	UserID    int
	Name      string
	Email     string
	SortOrder int
	BookIDs   []int // Books the recipient is assigned to
}

// DummyRecipient receives recipient data from a JSON request.
type DummyRecipient struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	SortOrder int    `json:"sort_order"`
}

// DummyAssignments receives the full replacement set of book assignments
// for one recipient. An empty list clears every assignment.
type DummyAssignments struct {
	BookIDs []int `json:"book_ids" validate:"dive,gt=0"`
}
