package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
)

// ItemSummary is the API shape for one cart line, pricing included.
type ItemSummary struct {
	ID              uuid.UUID `json:"id"`
	RefType         string    `json:"ref_type"`
	RefID           uuid.UUID `json:"ref_id"`
	Title           string    `json:"title"`
	Quantity        int       `json:"quantity"`
	RentalDays      int       `json:"rental_days,omitempty"`
	ListUnitPrice   int       `json:"list_unit_price"`
	SaleUnitPrice   *int      `json:"sale_unit_price,omitempty"`
	RentalUnitPrice int       `json:"rental_unit_price,omitempty"`
	PointsRate      int       `json:"points_rate"`
	Selected        bool      `json:"selected"`
	CreatedAt       time.Time `json:"created_at"`
}

// CartSummary is the API shape for the caller's open cart with its persisted
// totals projection.
type CartSummary struct {
	ID             uuid.UUID     `json:"id"`
	Status         string        `json:"status"`
	ItemCount      int           `json:"item_count"`
	SubtotalAmount int           `json:"subtotal_amount"`
	RentalAmount   int           `json:"rental_amount"`
	TotalAmount    int           `json:"total_amount"`
	PointsEarnable int           `json:"points_earnable"`
	Items          []ItemSummary `json:"items"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func NewCartSummary(record models.CartRecord) CartSummary {
	out := CartSummary{
		ID:             record.ID,
		Status:         record.Status.String(),
		ItemCount:      record.ItemCount,
		SubtotalAmount: record.SubtotalAmount,
		RentalAmount:   record.RentalAmount,
		TotalAmount:    record.TotalAmount,
		PointsEarnable: record.PointsEarnable,
		Items:          make([]ItemSummary, 0, len(record.Items)),
		UpdatedAt:      record.UpdatedAt,
	}
	for _, item := range record.Items {
		out.Items = append(out.Items, ItemSummary{
			ID:              item.ID,
			RefType:         item.RefType.String(),
			RefID:           item.RefID,
			Title:           item.Title,
			Quantity:        item.Quantity,
			RentalDays:      item.RentalDays,
			ListUnitPrice:   item.ListUnitPrice,
			SaleUnitPrice:   item.SaleUnitPrice,
			RentalUnitPrice: item.RentalUnitPrice,
			PointsRate:      item.PointsRate,
			Selected:        item.Selected,
			CreatedAt:       item.CreatedAt,
		})
	}
	return out
}
