package export

import (
	"bytes"

	"github.com/zenibo-dev/zenibo/internal/ledger"
	"github.com/zenibo-dev/zenibo/internal/models"
)

var basicHeader = []string{
	"日付", "区分", "摘要", "取引先", "勘定科目", "補助科目",
	"収入金額", "支出金額", "残高", "税区分",
}

// renderBasic writes one row per transaction with a running balance. The
// income and expense columns are mutually exclusive: the inapplicable one
// stays blank, never zero.
func renderBasic(buf *bytes.Buffer, txs []models.Transaction, opening int) {
	writeRow(buf, basicHeader)

	summary := ledger.Accumulate(txs, opening)
	for _, line := range summary.Lines {
		tx := line.Transaction
		income, expense := "", ""
		if tx.Type == models.TypeIncome {
			income = amount(tx.Amount)
		} else {
			expense = amount(tx.Amount)
		}
		writeRow(buf, []string{
			tx.Date.Format(dateFormat),
			quote(typeLabel(tx.Type)),
			quote(tx.Description),
			quote(tx.ClientName),
			quote(tx.SubjectName),
			quote(tx.SubAccountName),
			income,
			expense,
			amount(line.Balance),
			quote(taxLabel(basicTaxLabels, tx.TaxCode)),
		})
	}
}
