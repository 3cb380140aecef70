package models

import "time"

// Discount types for coupons.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a global discount code. It is usable only while active, within
// its validity window, under its redemption cap and, when restricted,
// against the matching plan.
type Coupon struct {
	ID             int
	Code           string // Unique code
	DiscountType   string // percentage or fixed
	DiscountValue  int    // Percent (0-100) or yen amount
	TargetPlan     string // Restricting plan, empty when unrestricted
	MaxRedemptions int    // 0 means uncapped
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Active         bool
	CreatedAt      time.Time
}

// CouponRedemption records one usage of a coupon by one user.
type CouponRedemption struct {
	ID         int
	CouponID   int
	UserID     int
	Plan       string // Plan the coupon was applied to
	Discounted int    // Yen discounted at redemption time
	RedeemedAt time.Time
}

// CouponStats aggregates usage of one coupon.
type CouponStats struct {
	CouponID        int
	RedemptionCount int
	TotalDiscounted int
}

// DummyCoupon receives coupon data from a JSON request. Dates arrive as
// strings in ISO calendar-date format.
type DummyCoupon struct {
	Code           string `json:"code" validate:"required,alphanum"`
	DiscountType   string `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue  int    `json:"discount_value" validate:"required,gt=0"`
	TargetPlan     string `json:"target_plan,omitempty" validate:"omitempty,oneof=basic professional"`
	MaxRedemptions int    `json:"max_redemptions,omitempty" validate:"omitempty,gte=0"`
	ValidFrom      string `json:"valid_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil     string `json:"valid_until,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Active         bool   `json:"active"`
}

// DummyValidateCoupon receives a coupon validation request.
type DummyValidateCoupon struct {
	Code string `json:"code" validate:"required"`
	Plan string `json:"plan" validate:"required,oneof=basic professional"`
}

// CouponQuote is the result of validating a coupon against a plan price.
type CouponQuote struct {
	Code          string `json:"code"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int    `json:"discount_value"`
	PlanPrice     int    `json:"plan_price"`
	Discounted    int    `json:"discounted"`
	FinalPrice    int    `json:"final_price"`
}
