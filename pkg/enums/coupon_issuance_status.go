package enums

import "fmt"

// CouponIssuanceStatus tracks a single coupon grant to one user.
type CouponIssuanceStatus string

const (
	CouponIssuanceStatusAvailable CouponIssuanceStatus = "available"
	CouponIssuanceStatusUsed      CouponIssuanceStatus = "used"
	CouponIssuanceStatusExpired   CouponIssuanceStatus = "expired"
	CouponIssuanceStatusRevoked   CouponIssuanceStatus = "revoked"
)

var validCouponIssuanceStatuses = []CouponIssuanceStatus{
	CouponIssuanceStatusAvailable,
	CouponIssuanceStatusUsed,
	CouponIssuanceStatusExpired,
	CouponIssuanceStatusRevoked,
}

// String implements fmt.Stringer.
func (c CouponIssuanceStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponIssuanceStatus.
func (c CouponIssuanceStatus) IsValid() bool {
	for _, candidate := range validCouponIssuanceStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponIssuanceStatus converts raw input into a CouponIssuanceStatus.
func ParseCouponIssuanceStatus(value string) (CouponIssuanceStatus, error) {
	for _, candidate := range validCouponIssuanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon issuance status %q", value)
}
