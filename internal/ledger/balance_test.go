package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenibo-dev/zenibo/internal/models"
)

func TestAccumulate_SingleIncome(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Date: date(2024, 1, 5), Type: models.TypeIncome, Amount: 10000},
	}

	got := Accumulate(txs, 0)

	assert.Equal(t, 10000, got.Closing)
	assert.Equal(t, 10000, got.TotalIncome)
	assert.Equal(t, 0, got.TotalExpense)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 10000, got.Lines[0].Balance)
}

func TestAccumulate_RunningBalances(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Date: date(2024, 1, 5), Type: models.TypeIncome, Amount: 3000},
		{ID: 2, Date: date(2024, 1, 10), Type: models.TypeExpense, Amount: 2000},
	}

	got := Accumulate(txs, 5000)

	require.Len(t, got.Lines, 2)
	assert.Equal(t, 8000, got.Lines[0].Balance)
	assert.Equal(t, 6000, got.Lines[1].Balance)
	assert.Equal(t, 6000, got.Closing)
	assert.Equal(t, 3000, got.TotalIncome)
	assert.Equal(t, 2000, got.TotalExpense)
}

func TestAccumulate_BalanceMayGoNegative(t *testing.T) {
	txs := []models.Transaction{
		{ID: 1, Date: date(2024, 1, 5), Type: models.TypeExpense, Amount: 7000},
	}

	got := Accumulate(txs, 5000)

	assert.Equal(t, -2000, got.Closing)
}

func TestAccumulate_Empty(t *testing.T) {
	got := Accumulate(nil, 1234)

	assert.Equal(t, 1234, got.Opening)
	assert.Equal(t, 1234, got.Closing)
	assert.Zero(t, got.TotalIncome)
	assert.Zero(t, got.TotalExpense)
	assert.Empty(t, got.Lines)
}

// The fundamental ledger invariant: income minus expense plus the opening
// balance equals the final balance, for any sequence.
func TestAccumulate_Invariant(t *testing.T) {
	txs := sampleTxs()

	got := Accumulate(Sort(txs), 42)

	assert.Equal(t, got.Opening+got.TotalIncome-got.TotalExpense, got.Closing)
}
