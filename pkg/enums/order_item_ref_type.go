package enums

import "fmt"

// OrderItemRefType distinguishes what kind of catalog entry a line refers to.
type OrderItemRefType string

const (
	RefTypeBookPurchase OrderItemRefType = "book_purchase"
	RefTypeBookRental   OrderItemRefType = "book_rental"
	RefTypeProduct      OrderItemRefType = "product"
)

var validOrderItemRefTypes = []OrderItemRefType{
	RefTypeBookPurchase,
	RefTypeBookRental,
	RefTypeProduct,
}

// String implements fmt.Stringer.
func (r OrderItemRefType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OrderItemRefType.
func (r OrderItemRefType) IsValid() bool {
	for _, candidate := range validOrderItemRefTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOrderItemRefType converts raw input into an OrderItemRefType.
func ParseOrderItemRefType(value string) (OrderItemRefType, error) {
	for _, candidate := range validOrderItemRefTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item ref type %q", value)
}
