package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponRedemption is the permanent record that an issuance was spent on a
// specific order. The unique index on issuance_id is what enforces
// at-most-once redemption, even across concurrent transactions.
type CouponRedemption struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IssuanceID     uuid.UUID `gorm:"column:issuance_id;type:uuid;not null;uniqueIndex:ux_coupon_redemptions_issuance"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	RedeemedAmount int       `gorm:"column:redeemed_amount;not null"`
	RedeemedAt     time.Time `gorm:"column:redeemed_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
