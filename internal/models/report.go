package models

// ReportJob is one closing-report task published by the scheduler and
// consumed by the sender. Month is in YYYY-MM format.
type ReportJob struct {
	BookID int    `json:"book_id"`
	Month  string `json:"month"`
}
