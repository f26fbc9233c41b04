package enums

import "fmt"

// RentalStatus tracks the lifecycle of the rental leg of an order. Orders
// without rental items carry no rental status at all (NULL column).
type RentalStatus string

const (
	RentalStatusPreparing       RentalStatus = "preparing"
	RentalStatusShipping        RentalStatus = "shipping"
	RentalStatusDelivered       RentalStatus = "delivered"
	RentalStatusReturnRequested RentalStatus = "return_requested"
	RentalStatusReturning       RentalStatus = "returning"
	RentalStatusReturned        RentalStatus = "returned"
	RentalStatusCancelled       RentalStatus = "cancelled"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusPreparing,
	RentalStatusShipping,
	RentalStatusDelivered,
	RentalStatusReturnRequested,
	RentalStatusReturning,
	RentalStatusReturned,
	RentalStatusCancelled,
}

// String implements fmt.Stringer.
func (r RentalStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RentalStatus.
func (r RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRentalStatus converts raw input into a RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}
