package export

import (
	"bytes"
	"strconv"

	"github.com/zenibo-dev/zenibo/internal/models"
)

var mfHeader = []string{
	"取引No", "取引日", "借方勘定科目", "借方金額", "貸方勘定科目", "貸方金額",
	"税区分", "摘要", "取引先",
}

// renderMF writes MF Cloud journal rows: each transaction becomes one
// double-entry row. Income debits cash and credits sales for the same
// amount; expense debits the expense account and credits cash.
func renderMF(buf *bytes.Buffer, txs []models.Transaction) {
	writeRow(buf, mfHeader)

	for i, tx := range txs {
		debit, credit := accountCash, accountSales
		if tx.Type == models.TypeExpense {
			debit, credit = accountExpense, accountCash
		}
		writeRow(buf, []string{
			strconv.Itoa(i + 1),
			tx.Date.Format(dateFormat),
			quote(debit),
			amount(tx.Amount),
			quote(credit),
			amount(tx.Amount),
			quote(taxLabel(mfTaxLabels, tx.TaxCode)),
			quote(tx.Description),
			quote(tx.ClientName),
		})
	}
}
