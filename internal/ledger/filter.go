// Package ledger implements the in-memory ledger computations: filtering a
// book's transaction sequence by a conjunction of optional predicates, the
// canonical transaction ordering, and the running-balance accumulation.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zenibo-dev/zenibo/internal/models"
)

// Filter holds the recognized filter options. A nil or zero field means the
// predicate is not applied. Date bounds and amount bounds are inclusive;
// the keyword matches the description or the client name case-insensitively.
type Filter struct {
	DateFrom         *time.Time
	DateTo           *time.Time
	Keyword          string
	MinAmount        *int
	MaxAmount        *int
	AccountSubjectID *int
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil && f.Keyword == "" &&
		f.MinAmount == nil && f.MaxAmount == nil && f.AccountSubjectID == nil
}

// Matches reports whether one transaction satisfies every supplied predicate.
func (f Filter) Matches(tx models.Transaction) bool {
	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(tx.Description), kw) &&
			!strings.Contains(strings.ToLower(tx.ClientName), kw) {
			return false
		}
	}
	if f.MinAmount != nil && tx.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && tx.Amount > *f.MaxAmount {
		return false
	}
	if f.AccountSubjectID != nil {
		if tx.AccountSubjectID == nil || *tx.AccountSubjectID != *f.AccountSubjectID {
			return false
		}
	}
	return true
}

// Apply returns the subset of txs satisfying the filter, preserving the
// original relative order. An empty filter returns the input unchanged.
func Apply(txs []models.Transaction, f Filter) []models.Transaction {
	if f.IsZero() {
		return txs
	}
	result := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			result = append(result, tx)
		}
	}
	return result
}

// Describe renders a human-readable summary of the active predicates for
// status display. An empty filter describes itself as showing everything.
func (f Filter) Describe() string {
	if f.IsZero() {
		return "all transactions"
	}
	var parts []string
	if f.DateFrom != nil && f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("from %s to %s",
			f.DateFrom.Format("2006-01-02"), f.DateTo.Format("2006-01-02")))
	} else if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("from %s", f.DateFrom.Format("2006-01-02")))
	} else if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("until %s", f.DateTo.Format("2006-01-02")))
	}
	if f.Keyword != "" {
		parts = append(parts, fmt.Sprintf("keyword %q", f.Keyword))
	}
	if f.MinAmount != nil {
		parts = append(parts, fmt.Sprintf("amount >= %d", *f.MinAmount))
	}
	if f.MaxAmount != nil {
		parts = append(parts, fmt.Sprintf("amount <= %d", *f.MaxAmount))
	}
	if f.AccountSubjectID != nil {
		parts = append(parts, fmt.Sprintf("subject #%d", *f.AccountSubjectID))
	}
	return strings.Join(parts, ", ")
}

// Sort returns a copy of txs in the canonical ledger order: ascending by
// date, ties broken by ascending id (insertion order). Balances are always
// accumulated over this order.
func Sort(txs []models.Transaction) []models.Transaction {
	result := make([]models.Transaction, len(txs))
	copy(result, txs)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}
