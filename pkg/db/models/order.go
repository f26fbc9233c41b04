package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// Order is the aggregate root for a purchase. It is created as a draft from a
// cart snapshot and only mutated by coupon/points application and the payment
// approval workflow; rows are never physically deleted.
type Order struct {
	ID                      uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                  uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNo                 string                   `gorm:"column:order_no;not null;uniqueIndex"`
	CartID                  *uuid.UUID               `gorm:"column:cart_id;type:uuid"`
	Status                  enums.OrderStatus        `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus           enums.OrderPaymentStatus `gorm:"column:payment_status;not null;default:'ready'"`
	RentalStatus            *enums.RentalStatus      `gorm:"column:rental_status"`
	ItemCount               int                      `gorm:"column:item_count;not null"`
	SubtotalAmount          int                      `gorm:"column:subtotal_amount;not null"`
	DiscountAmount          int                      `gorm:"column:discount_amount;not null;default:0"`
	CouponDiscountAmount    int                      `gorm:"column:coupon_discount_amount;not null;default:0"`
	ShippingAmount          int                      `gorm:"column:shipping_amount;not null;default:0"`
	RentalAmount            int                      `gorm:"column:rental_amount;not null;default:0"`
	TotalAmount             int                      `gorm:"column:total_amount;not null"`
	AppliedCouponIssuanceID *uuid.UUID               `gorm:"column:applied_coupon_issuance_id;type:uuid"`
	PointsSpent             int                      `gorm:"column:points_spent;not null;default:0"`
	PointsEarned            int                      `gorm:"column:points_earned;not null;default:0"`
	PlacedAt                time.Time                `gorm:"column:placed_at;not null"`
	PaidAt                  *time.Time               `gorm:"column:paid_at"`
	CancelledAt             *time.Time               `gorm:"column:cancelled_at"`
	CompletedAt             *time.Time               `gorm:"column:completed_at"`
	Items                   []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// HasRentalItems reports whether any line is a rental or the order carries a
// rental charge.
func (o *Order) HasRentalItems() bool {
	if o.RentalAmount > 0 {
		return true
	}
	for _, item := range o.Items {
		if item.RefType == enums.RefTypeBookRental {
			return true
		}
	}
	return false
}

// Paid returns a copy of the order transitioned to the paid state. It does
// not persist anything.
func (o Order) Paid(paidAt time.Time) Order {
	o.PaymentStatus = enums.OrderPaymentStatusPaid
	o.PaidAt = &paidAt
	if o.HasRentalItems() {
		preparing := enums.RentalStatusPreparing
		o.RentalStatus = &preparing
	}
	return o
}
