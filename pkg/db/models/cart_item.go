package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// CartItem is one selectable line in a user's open cart. A line is keyed by
// (ref_type, ref_id, rental_days); order placement snapshots these tuples and
// approval removes the matching lines.
type CartItem struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID              `gorm:"column:cart_id;type:uuid;not null;index"`
	RefType         enums.OrderItemRefType `gorm:"column:ref_type;not null"`
	RefID           uuid.UUID              `gorm:"column:ref_id;type:uuid;not null"`
	Title           string                 `gorm:"column:title;not null"`
	Quantity        int                    `gorm:"column:quantity;not null"`
	RentalDays      int                    `gorm:"column:rental_days;not null;default:0"`
	ListUnitPrice   int                    `gorm:"column:list_unit_price;not null"`
	SaleUnitPrice   *int                   `gorm:"column:sale_unit_price"`
	RentalUnitPrice int                    `gorm:"column:rental_unit_price;not null;default:0"`
	PointsRate      int                    `gorm:"column:points_rate;not null;default:0"`
	Selected        bool                   `gorm:"column:selected;not null;default:true"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
