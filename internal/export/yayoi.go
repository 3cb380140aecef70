package export

import (
	"bytes"
	"strconv"

	"github.com/zenibo-dev/zenibo/internal/models"
)

var yayoiHeader = []string{
	"伝票No", "取引日", "借方勘定科目", "貸方勘定科目", "金額", "税区分", "摘要",
}

// renderYayoi writes Yayoi voucher rows, mirroring the mf double-entry
// accounts with a sequential voucher number.
func renderYayoi(buf *bytes.Buffer, txs []models.Transaction) {
	writeRow(buf, yayoiHeader)

	for i, tx := range txs {
		debit, credit := accountCash, accountSales
		if tx.Type == models.TypeExpense {
			debit, credit = accountExpense, accountCash
		}
		writeRow(buf, []string{
			strconv.Itoa(i + 1),
			tx.Date.Format(dateFormat),
			quote(debit),
			quote(credit),
			amount(tx.Amount),
			quote(taxLabel(yayoiTaxLabels, tx.TaxCode)),
			quote(tx.Description),
		})
	}
}
