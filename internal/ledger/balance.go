package ledger

import "github.com/zenibo-dev/zenibo/internal/models"

// Line is one transaction together with the running balance after it.
type Line struct {
	Transaction models.Transaction
	Balance     int
}

// Summary is the result of folding an opening balance over a transaction
// sequence. Balances are integer yen and may go negative; they are never
// clamped.
type Summary struct {
	Opening      int
	Closing      int
	TotalIncome  int
	TotalExpense int
	Lines        []Line
}

// Accumulate walks txs in the given order, folding the opening balance into
// a running balance. Income adds to the balance, expense subtracts. The
// caller is responsible for passing the canonical order (see Sort); an empty
// sequence yields zero totals and an unchanged balance.
func Accumulate(txs []models.Transaction, opening int) Summary {
	s := Summary{
		Opening: opening,
		Closing: opening,
		Lines:   make([]Line, 0, len(txs)),
	}
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeIncome:
			s.Closing += tx.Amount
			s.TotalIncome += tx.Amount
		case models.TypeExpense:
			s.Closing -= tx.Amount
			s.TotalExpense += tx.Amount
		}
		s.Lines = append(s.Lines, Line{Transaction: tx, Balance: s.Closing})
	}
	return s
}
