// Package models contains the domain structures of the cash-book service
// together with helper types used to receive data from JSON requests.
package models

import "time"

// Subscription plan identifiers.
const (
	PlanFree         = "free"
	PlanBasic        = "basic"
	PlanProfessional = "professional"
)

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// User represents a registered account holder.
type User struct {
	ID                 int        // Auto-increment primary key
	UID                string     // Stable UUID used in tokens and logs
	Email              string     // Login email, unique
	PasswordHash       string     // bcrypt hash of the password
	Plan               string     // free, basic or professional
	SubscriptionStatus string     // active or canceled
	SubscriptionExpiry *time.Time // End of the paid period, nil on the free plan
	CreatedAt          time.Time
}

// EffectivePlan returns the plan whose limits apply right now. A canceled
// subscription keeps its plan until expiry, then falls back to free.
func (u *User) EffectivePlan(now time.Time) string {
	if u.SubscriptionStatus == SubscriptionCanceled &&
		u.SubscriptionExpiry != nil && now.After(*u.SubscriptionExpiry) {
		return PlanFree
	}
	return u.Plan
}

// DummyRegister receives registration data from a JSON request.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin receives login data from a JSON request.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummySubscribe receives a plan change request. CouponCode is optional.
type DummySubscribe struct {
	Plan       string `json:"plan" validate:"required,oneof=free basic professional"`
	CouponCode string `json:"coupon_code,omitempty" validate:"omitempty,alphanum"`
}
