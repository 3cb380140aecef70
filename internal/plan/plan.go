// Package plan implements the entitlement gate: a pure lookup from a
// subscription plan to its capability set. Services consult the gate on
// every write path so the ceilings hold server-side, not only in a client.
package plan

import "github.com/zenibo-dev/zenibo/internal/models"

// Unlimited marks a ceiling that is not enforced.
const Unlimited = 0

// Capabilities is the feature set granted by a subscription plan.
type Capabilities struct {
	CanAttachReceipt        bool `json:"can_attach_receipt"`
	CanChooseExportFormat   bool `json:"can_choose_export_format"`
	MaxBooks                int  `json:"max_books"`                  // 0 = unlimited
	MaxTransactionsPerMonth int  `json:"max_transactions_per_month"` // 0 = unlimited
}

// Monthly plan prices in yen.
var prices = map[string]int{
	models.PlanFree:         0,
	models.PlanBasic:        980,
	models.PlanProfessional: 2980,
}

var capabilities = map[string]Capabilities{
	models.PlanFree: {
		CanAttachReceipt:        false,
		CanChooseExportFormat:   false,
		MaxBooks:                1,
		MaxTransactionsPerMonth: 30,
	},
	models.PlanBasic: {
		CanAttachReceipt:        true,
		CanChooseExportFormat:   true,
		MaxBooks:                3,
		MaxTransactionsPerMonth: 500,
	},
	models.PlanProfessional: {
		CanAttachReceipt:        true,
		CanChooseExportFormat:   true,
		MaxBooks:                Unlimited,
		MaxTransactionsPerMonth: Unlimited,
	},
}

// Get returns the capability set for a plan. Unknown plans fall back to the
// free plan, the most restrictive one.
func Get(planName string) Capabilities {
	caps, ok := capabilities[planName]
	if !ok {
		return capabilities[models.PlanFree]
	}
	return caps
}

// Price returns the monthly price of a plan in yen. Unknown plans cost
// nothing because they grant nothing.
func Price(planName string) int {
	return prices[planName]
}

// AllowsFormat reports whether a plan may export in the given dialect.
// Plans without dialect choice are restricted to the basic dialect.
func AllowsFormat(planName, format string) bool {
	if Get(planName).CanChooseExportFormat {
		return true
	}
	return format == "basic"
}
