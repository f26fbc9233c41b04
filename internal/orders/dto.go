package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

// OrderItemSummary exposes one snapshot line in API responses.
type OrderItemSummary struct {
	ID               uuid.UUID              `json:"id"`
	RefType          enums.OrderItemRefType `json:"ref_type"`
	RefID            uuid.UUID              `json:"ref_id"`
	Title            string                 `json:"title"`
	Quantity         int                    `json:"quantity"`
	RentalDays       int                    `json:"rental_days,omitempty"`
	ListUnitPrice    int                    `json:"list_unit_price"`
	SaleUnitPrice    *int                   `json:"sale_unit_price,omitempty"`
	RentalUnitPrice  int                    `json:"rental_unit_price,omitempty"`
	LineAmount       int                    `json:"line_amount"`
	PointsEarnedItem int                    `json:"points_earned_item"`
}

// OrderSummary exposes the aggregate fields returned by the read endpoints.
type OrderSummary struct {
	ID                      uuid.UUID                `json:"id"`
	OrderNo                 string                   `json:"order_no"`
	Status                  enums.OrderStatus        `json:"status"`
	PaymentStatus           enums.OrderPaymentStatus `json:"payment_status"`
	RentalStatus            *enums.RentalStatus      `json:"rental_status,omitempty"`
	ItemCount               int                      `json:"item_count"`
	SubtotalAmount          int                      `json:"subtotal_amount"`
	DiscountAmount          int                      `json:"discount_amount"`
	CouponDiscountAmount    int                      `json:"coupon_discount_amount"`
	ShippingAmount          int                      `json:"shipping_amount"`
	RentalAmount            int                      `json:"rental_amount"`
	TotalAmount             int                      `json:"total_amount"`
	AppliedCouponIssuanceID *uuid.UUID               `json:"applied_coupon_issuance_id,omitempty"`
	PointsSpent             int                      `json:"points_spent"`
	PointsEarned            int                      `json:"points_earned"`
	PlacedAt                time.Time                `json:"placed_at"`
	PaidAt                  *time.Time               `json:"paid_at,omitempty"`
	Items                   []OrderItemSummary       `json:"items,omitempty"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// NewOrderSummary maps the aggregate onto its API shape.
func NewOrderSummary(order models.Order) OrderSummary {
	summary := OrderSummary{
		ID:                      order.ID,
		OrderNo:                 order.OrderNo,
		Status:                  order.Status,
		PaymentStatus:           order.PaymentStatus,
		RentalStatus:            order.RentalStatus,
		ItemCount:               order.ItemCount,
		SubtotalAmount:          order.SubtotalAmount,
		DiscountAmount:          order.DiscountAmount,
		CouponDiscountAmount:    order.CouponDiscountAmount,
		ShippingAmount:          order.ShippingAmount,
		RentalAmount:            order.RentalAmount,
		TotalAmount:             order.TotalAmount,
		AppliedCouponIssuanceID: order.AppliedCouponIssuanceID,
		PointsSpent:             order.PointsSpent,
		PointsEarned:            order.PointsEarned,
		PlacedAt:                order.PlacedAt,
		PaidAt:                  order.PaidAt,
	}
	for _, item := range order.Items {
		summary.Items = append(summary.Items, OrderItemSummary{
			ID:               item.ID,
			RefType:          item.RefType,
			RefID:            item.RefID,
			Title:            item.Title,
			Quantity:         item.Quantity,
			RentalDays:       item.RentalDays,
			ListUnitPrice:    item.ListUnitPrice,
			SaleUnitPrice:    item.SaleUnitPrice,
			RentalUnitPrice:  item.RentalUnitPrice,
			LineAmount:       item.LineAmount,
			PointsEarnedItem: item.PointsEarnedItem,
		})
	}
	return summary
}

// NewOrderList maps a page of orders, trimming the lookahead row and encoding
// the next cursor from the last visible row.
func NewOrderList(rows []models.Order, limit int) OrderList {
	limit = pagination.NormalizeLimit(limit)
	list := OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, NewOrderSummary(row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list
}
