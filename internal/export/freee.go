package export

import (
	"bytes"

	"github.com/zenibo-dev/zenibo/internal/models"
)

var freeeHeader = []string{
	"収支区分", "発生日", "税区分", "勘定科目", "金額", "備考",
}

// renderFreee writes single-entry freee rows: a type label, the dialect's
// tax code, and either the sales or the expense account.
func renderFreee(buf *bytes.Buffer, txs []models.Transaction) {
	writeRow(buf, freeeHeader)

	for _, tx := range txs {
		account := accountSales
		if tx.Type == models.TypeExpense {
			account = accountExpense
		}
		writeRow(buf, []string{
			quote(typeLabel(tx.Type)),
			tx.Date.Format(dateFormat),
			quote(taxLabel(freeeTaxLabels, tx.TaxCode)),
			quote(account),
			amount(tx.Amount),
			quote(tx.Description),
		})
	}
}
