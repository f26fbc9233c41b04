package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// CartRecord is a user's open cart header. The totals columns are a
// persisted projection of the pricing engine output so reads never recompute
// line arithmetic.
type CartRecord struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	ItemCount      int              `gorm:"column:item_count;not null;default:0"`
	SubtotalAmount int              `gorm:"column:subtotal_amount;not null;default:0"`
	RentalAmount   int              `gorm:"column:rental_amount;not null;default:0"`
	TotalAmount    int              `gorm:"column:total_amount;not null;default:0"`
	PointsEarnable int              `gorm:"column:points_earnable;not null;default:0"`
	Items          []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ConvertedAt    *time.Time       `gorm:"column:converted_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
