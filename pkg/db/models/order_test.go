package models

import (
	"testing"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

func TestPaidTransition(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := Order{PaymentStatus: enums.OrderPaymentStatusReady}

	paid := order.Paid(paidAt)
	if paid.PaymentStatus != enums.OrderPaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", paid.PaymentStatus)
	}
	if paid.PaidAt == nil || !paid.PaidAt.Equal(paidAt) {
		t.Fatalf("expected paidAt recorded, got %v", paid.PaidAt)
	}
	if paid.RentalStatus != nil {
		t.Fatalf("purchase-only order must not gain a rental status, got %v", *paid.RentalStatus)
	}
	// receiver untouched
	if order.PaymentStatus != enums.OrderPaymentStatusReady || order.PaidAt != nil {
		t.Fatal("Paid must not mutate the receiver")
	}
}

func TestPaidTransitionStartsRentalLifecycle(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := Order{
		PaymentStatus: enums.OrderPaymentStatusReady,
		RentalAmount:  4200,
	}

	paid := order.Paid(paidAt)
	if paid.RentalStatus == nil || *paid.RentalStatus != enums.RentalStatusPreparing {
		t.Fatalf("expected rental status PREPARING, got %v", paid.RentalStatus)
	}

	itemOrder := Order{
		PaymentStatus: enums.OrderPaymentStatusReady,
		Items: []OrderItem{
			{RefType: enums.RefTypeBookRental, Quantity: 1},
		},
	}
	paid = itemOrder.Paid(paidAt)
	if paid.RentalStatus == nil || *paid.RentalStatus != enums.RentalStatusPreparing {
		t.Fatalf("expected rental status PREPARING from rental line, got %v", paid.RentalStatus)
	}
}
