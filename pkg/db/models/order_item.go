package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// OrderItem is an immutable price/title snapshot taken at order creation so
// later catalog changes cannot alter an existing order.
type OrderItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	RefType          enums.OrderItemRefType `gorm:"column:ref_type;not null"`
	RefID            uuid.UUID              `gorm:"column:ref_id;type:uuid;not null"`
	Title            string                 `gorm:"column:title;not null"`
	Quantity         int                    `gorm:"column:quantity;not null"`
	RentalDays       int                    `gorm:"column:rental_days;not null;default:0"`
	ListUnitPrice    int                    `gorm:"column:list_unit_price;not null"`
	SaleUnitPrice    *int                   `gorm:"column:sale_unit_price"`
	RentalUnitPrice  int                    `gorm:"column:rental_unit_price;not null;default:0"`
	LineAmount       int                    `gorm:"column:line_amount;not null"`
	PointsRate       int                    `gorm:"column:points_rate;not null;default:0"`
	PointsEarnedItem int                    `gorm:"column:points_earned_item;not null;default:0"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
}
