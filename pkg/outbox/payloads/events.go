package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// OrderPlacedEvent signals that a cart was converted into a pending order.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNo     string    `json:"order_no"`
	UserID      uuid.UUID `json:"user_id"`
	ItemCount   int       `json:"item_count"`
	TotalAmount int       `json:"total_amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

// PaymentApprovedEvent is emitted when an order payment settles.
type PaymentApprovedEvent struct {
	OrderID          uuid.UUID           `json:"order_id"`
	OrderNo          string              `json:"order_no"`
	UserID           uuid.UUID           `json:"user_id"`
	PaymentID        uuid.UUID           `json:"payment_id"`
	Method           enums.PaymentMethod `json:"method"`
	Amount           int                 `json:"amount"`
	PointsSpent      int                 `json:"points_spent"`
	PointsEarned     int                 `json:"points_earned"`
	CouponIssuanceID *uuid.UUID          `json:"coupon_issuance_id,omitempty"`
	ApprovedAt       time.Time           `json:"approved_at"`
}

// CouponRedeemedEvent records that an issuance was consumed by an order.
type CouponRedeemedEvent struct {
	IssuanceID     uuid.UUID `json:"issuance_id"`
	CouponID       uuid.UUID `json:"coupon_id"`
	UserID         uuid.UUID `json:"user_id"`
	OrderID        uuid.UUID `json:"order_id"`
	RedeemedAmount int       `json:"redeemed_amount"`
	RedeemedAt     time.Time `json:"redeemed_at"`
}

// PointsMovedEvent describes a single loyalty ledger movement.
type PointsMovedEvent struct {
	UserID       uuid.UUID                  `json:"user_id"`
	Kind         enums.PointTransactionKind `json:"kind"`
	AmountSigned int                        `json:"amount_signed"`
	OrderID      *uuid.UUID                 `json:"order_id,omitempty"`
	MovedAt      time.Time                  `json:"moved_at"`
}
