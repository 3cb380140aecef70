// Package export renders a book's transaction sequence into one of the four
// supported CSV dialects: the generic basic layout plus the MF Cloud, freee
// and Yayoi accounting-software formats. Every payload is prefixed with a
// UTF-8 byte-order mark so the consuming software detects the charset, all
// text fields are quoted with embedded quotes doubled, and an empty period
// yields ErrNoData instead of a header-only file.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zenibo-dev/zenibo/internal/ledger"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Format keys.
const (
	FormatBasic = "basic"
	FormatMF    = "mf"
	FormatFreee = "freee"
	FormatYayoi = "yayoi"
)

// Fixed double-entry accounts used by the mf and yayoi dialects.
const (
	accountCash    = "現金"
	accountSales   = "売上高"
	accountExpense = "経費"
)

// Type labels for single-entry dialects.
const (
	labelIncome  = "収入"
	labelExpense = "支出"
)

// utf8BOM prefixes every payload for charset detection.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	// ErrNoData signals an empty filtered period; the caller must not get
	// a header-only file.
	ErrNoData = errors.New("no transactions in requested period")
	// ErrUnknownFormat signals an unrecognized format key.
	ErrUnknownFormat = errors.New("unknown export format")
)

const dateFormat = "2006-01-02"

// Result is a rendered CSV payload with its suggested filename.
type Result struct {
	FileName string
	Format   string
	Data     []byte
}

// ValidFormat reports whether key names a supported dialect.
func ValidFormat(key string) bool {
	switch key {
	case FormatBasic, FormatMF, FormatFreee, FormatYayoi:
		return true
	}
	return false
}

// Render produces the CSV payload for the given dialect from a transaction
// sequence and the book's opening balance. Transactions are first put into
// the canonical ledger order.
func Render(format string, txs []models.Transaction, opening int) ([]byte, error) {
	const op = "export.Render"

	if !ValidFormat(format) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownFormat, format)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	sorted := ledger.Sort(txs)

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	switch format {
	case FormatBasic:
		renderBasic(&buf, sorted, opening)
	case FormatMF:
		renderMF(&buf, sorted)
	case FormatFreee:
		renderFreee(&buf, sorted)
	case FormatYayoi:
		renderYayoi(&buf, sorted)
	}

	return buf.Bytes(), nil
}

// quote wraps a text field in double quotes, doubling embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// amount renders an integer yen amount without quoting.
func amount(v int) string {
	return strconv.Itoa(v)
}

// writeRow joins the already-rendered fields with commas.
func writeRow(buf *bytes.Buffer, fields []string) {
	buf.WriteString(strings.Join(fields, ","))
	buf.WriteByte('\n')
}

func typeLabel(txType string) string {
	if txType == models.TypeIncome {
		return labelIncome
	}
	return labelExpense
}
