package coupon

// Coupon types. Fixed coupons take Amount cents off; percent coupons take
// Amount percent off. Either way the order total must reach MinAmount first.
const (
	TypeFixed   = 1
	TypePercent = 2
)

// User coupon states.
const (
	StatusUnused  = 0
	StatusUsed    = 1
	StatusExpired = 2
)

type Coupon struct {
	ID        int    `json:"couponId"`
	Name      string `json:"name"`
	Type      int    `json:"type"`
	Amount    int64  `json:"amount"`
	MinAmount int64  `json:"minAmount"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

// UserCoupon is one user's claim on a coupon. A user claims a coupon at most
// once and spends it at most once.
type UserCoupon struct {
	ID        int    `json:"userCouponId"`
	UserID    int    `json:"userId"`
	CouponID  int    `json:"couponId"`
	Status    int    `json:"status"`
	ClaimedAt string `json:"claimedAt,omitempty"`
	UsedAt    string `json:"usedAt,omitempty"`
	Coupon    Coupon `json:"coupon"`
}

// Discount computes the cents a coupon takes off an order total. Totals
// below the coupon minimum get no discount.
func Discount(c Coupon, total int64) int64 {
	if total < c.MinAmount {
		return 0
	}
	switch c.Type {
	case TypeFixed:
		if c.Amount > total {
			return total
		}
		return c.Amount
	case TypePercent:
		return total * c.Amount / 100
	}
	return 0
}
