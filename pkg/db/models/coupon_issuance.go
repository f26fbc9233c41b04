package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// CouponIssuance is a single coupon grant to one user, consumable once.
type CouponIssuance struct {
	ID        uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID  uuid.UUID                  `gorm:"column:coupon_id;type:uuid;not null;index:idx_coupon_issuances_coupon_user"`
	UserID    uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index:idx_coupon_issuances_coupon_user"`
	Status    enums.CouponIssuanceStatus `gorm:"column:status;not null;default:'available'"`
	IssuedAt  time.Time                  `gorm:"column:issued_at;not null"`
	ExpiresAt time.Time                  `gorm:"column:expires_at;not null"`
	Coupon    *Coupon                    `gorm:"foreignKey:CouponID"`
	CreatedAt time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
