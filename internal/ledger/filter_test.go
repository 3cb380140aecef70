package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zenibo-dev/zenibo/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func intPtr(v int) *int { return &v }

func sampleTxs() []models.Transaction {
	return []models.Transaction{
		{ID: 1, Date: date(2024, 1, 5), Type: models.TypeIncome, Description: "Consulting", ClientName: "Acme Inc", Amount: 10000},
		{ID: 2, Date: date(2024, 1, 10), Type: models.TypeExpense, Description: "Taxi fare to airport", ClientName: "City Cab", Amount: 3500},
		{ID: 3, Date: date(2024, 2, 1), Type: models.TypeExpense, Description: "Consulting", ClientName: "Taxi Co.", Amount: 999},
		{ID: 4, Date: date(2024, 2, 15), Type: models.TypeIncome, Description: "Design work", ClientName: "Beta LLC", Amount: 5000, AccountSubjectID: intPtr(7)},
		{ID: 5, Date: date(2024, 3, 1), Type: models.TypeExpense, Description: "Office supplies", ClientName: "Stationery", Amount: 5001},
	}
}

func TestApply_EmptyFilterIsIdentity(t *testing.T) {
	txs := sampleTxs()
	got := Apply(txs, Filter{})
	assert.Equal(t, txs, got)
}

func TestApply_DateBoundsInclusive(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Date: date(2024, 1, 4), Type: models.TypeIncome, Amount: 100},
		{ID: 2, Date: date(2024, 1, 5), Type: models.TypeIncome, Amount: 100},
		{ID: 3, Date: date(2024, 1, 20), Type: models.TypeIncome, Amount: 100},
		{ID: 4, Date: date(2024, 1, 21), Type: models.TypeIncome, Amount: 100},
	}
	got := Apply(txs, Filter{DateFrom: datePtr(2024, 1, 5), DateTo: datePtr(2024, 1, 20)})

	ids := make([]int, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	// Transactions dated exactly on either bound are included, one day
	// outside either bound excluded.
	assert.Equal(t, []int{2, 3}, ids)
}

func TestApply_KeywordMatchesDescriptionAndClient(t *testing.T) {
	txs := sampleTxs()

	got := Apply(txs, Filter{Keyword: "taxi"})

	ids := make([]int, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	// Case-insensitive over description OR client name: "Taxi fare to
	// airport" and client "Taxi Co." both match.
	assert.Equal(t, []int{2, 3}, ids)
}

func TestApply_AmountBoundsInclusive(t *testing.T) {
	txs := sampleTxs()

	got := Apply(txs, Filter{MinAmount: intPtr(1000), MaxAmount: intPtr(5000)})

	ids := make([]int, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	// 999 and 5001 excluded, 5000 exactly included.
	assert.Equal(t, []int{2, 4}, ids)
}

func TestApply_AccountSubject(t *testing.T) {
	got := Apply(sampleTxs(), Filter{AccountSubjectID: intPtr(7)})

	assert.Len(t, got, 1)
	assert.Equal(t, 4, got[0].ID)
}

func TestApply_Conjunction(t *testing.T) {
	got := Apply(sampleTxs(), Filter{
		DateFrom:  datePtr(2024, 1, 1),
		DateTo:    datePtr(2024, 1, 31),
		Keyword:   "taxi",
		MinAmount: intPtr(1000),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)
}

func TestApply_EmptyResult(t *testing.T) {
	got := Apply(sampleTxs(), Filter{Keyword: "no such thing"})
	assert.Empty(t, got)

	// An empty filtered set must flow cleanly into accumulation.
	summary := Accumulate(got, 5000)
	assert.Equal(t, 5000, summary.Closing)
	assert.Zero(t, summary.TotalIncome)
	assert.Zero(t, summary.TotalExpense)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{name: "empty", filter: Filter{}, want: "all transactions"},
		{
			name:   "date range",
			filter: Filter{DateFrom: datePtr(2024, 1, 1), DateTo: datePtr(2024, 1, 31)},
			want:   "from 2024-01-01 to 2024-01-31",
		},
		{
			name:   "keyword and amounts",
			filter: Filter{Keyword: "taxi", MinAmount: intPtr(1000), MaxAmount: intPtr(5000)},
			want:   `keyword "taxi", amount >= 1000, amount <= 5000`,
		},
		{
			name:   "subject only",
			filter: Filter{AccountSubjectID: intPtr(7)},
			want:   "subject #7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Describe())
		})
	}
}

func TestSort_CanonicalOrder(t *testing.T) {
	txs := []models.Transaction{
		{ID: 3, Date: date(2024, 1, 10)},
		{ID: 1, Date: date(2024, 1, 10)},
		{ID: 2, Date: date(2024, 1, 5)},
	}

	got := Sort(txs)

	ids := make([]int, 0, len(got))
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	// Date ascending, ties broken by id ascending.
	assert.Equal(t, []int{2, 1, 3}, ids)

	// The input slice is untouched.
	assert.Equal(t, 3, txs[0].ID)
}
