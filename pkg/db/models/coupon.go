package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a coupon definition from which per-user issuances are granted.
type Coupon struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	DiscountAmount int       `gorm:"column:discount_amount;not null"`
	MinOrderAmount int       `gorm:"column:min_order_amount;not null;default:0"`
	PerUserLimit   int       `gorm:"column:per_user_limit;not null;default:1"`
	ValidityMonths int       `gorm:"column:validity_months;not null;default:1"`
	EndsAt         time.Time `gorm:"column:ends_at;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
