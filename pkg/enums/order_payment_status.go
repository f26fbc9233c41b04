package enums

import "fmt"

// OrderPaymentStatus tracks how far payment has progressed for an order.
type OrderPaymentStatus string

const (
	OrderPaymentStatusReady           OrderPaymentStatus = "ready"
	OrderPaymentStatusPaid            OrderPaymentStatus = "paid"
	OrderPaymentStatusPartialRefunded OrderPaymentStatus = "partial_refunded"
	OrderPaymentStatusRefunded        OrderPaymentStatus = "refunded"
	OrderPaymentStatusFailed          OrderPaymentStatus = "failed"
	OrderPaymentStatusCancelled       OrderPaymentStatus = "cancelled"
)

var validOrderPaymentStatuses = []OrderPaymentStatus{
	OrderPaymentStatusReady,
	OrderPaymentStatusPaid,
	OrderPaymentStatusPartialRefunded,
	OrderPaymentStatusRefunded,
	OrderPaymentStatusFailed,
	OrderPaymentStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderPaymentStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderPaymentStatus.
func (o OrderPaymentStatus) IsValid() bool {
	for _, candidate := range validOrderPaymentStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderPaymentStatus converts raw input into an OrderPaymentStatus.
func ParseOrderPaymentStatus(value string) (OrderPaymentStatus, error) {
	for _, candidate := range validOrderPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order payment status %q", value)
}
