package enums

import "fmt"

// PointTransactionKind classifies an entry in the loyalty-points ledger.
type PointTransactionKind string

const (
	PointTransactionKindEarn   PointTransactionKind = "earn"
	PointTransactionKindSpend  PointTransactionKind = "spend"
	PointTransactionKindExpire PointTransactionKind = "expire"
	PointTransactionKindAdjust PointTransactionKind = "adjust"
)

var validPointTransactionKinds = []PointTransactionKind{
	PointTransactionKindEarn,
	PointTransactionKindSpend,
	PointTransactionKindExpire,
	PointTransactionKindAdjust,
}

// String implements fmt.Stringer.
func (p PointTransactionKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PointTransactionKind.
func (p PointTransactionKind) IsValid() bool {
	for _, candidate := range validPointTransactionKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePointTransactionKind converts raw input into a PointTransactionKind.
func ParsePointTransactionKind(value string) (PointTransactionKind, error) {
	for _, candidate := range validPointTransactionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction kind %q", value)
}
