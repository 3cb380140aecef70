package export

import "github.com/zenibo-dev/zenibo/internal/models"

// Each dialect maps the five fixed tax classification keys to its own
// display strings. An unset or unrecognized code falls back to the
// 10%-taxable label of the dialect.

var basicTaxLabels = map[string]string{
	models.TaxTaxable10:  "課税 10%",
	models.TaxTaxable8:   "課税 8%（軽減）",
	models.TaxNonTaxable: "非課税",
	models.TaxExempt:     "免税",
	models.TaxOutOfScope: "対象外",
}

var mfTaxLabels = map[string]string{
	models.TaxTaxable10:  "課税売上 10%",
	models.TaxTaxable8:   "課税売上 8%（軽減）",
	models.TaxNonTaxable: "非課税売上",
	models.TaxExempt:     "免税売上",
	models.TaxOutOfScope: "対象外",
}

var freeeTaxLabels = map[string]string{
	models.TaxTaxable10:  "課税売上10%",
	models.TaxTaxable8:   "課税売上8%（軽減）",
	models.TaxNonTaxable: "非課税",
	models.TaxExempt:     "免税",
	models.TaxOutOfScope: "対象外",
}

var yayoiTaxLabels = map[string]string{
	models.TaxTaxable10:  "課税売上込10%",
	models.TaxTaxable8:   "課税売上込8%（軽減）",
	models.TaxNonTaxable: "非課税売上",
	models.TaxExempt:     "免税売上",
	models.TaxOutOfScope: "対象外",
}

func taxLabel(table map[string]string, code string) string {
	if label, ok := table[code]; ok {
		return label
	}
	return table[models.TaxTaxable10]
}
