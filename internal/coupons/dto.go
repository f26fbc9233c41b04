package coupons

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

// IssuanceSummary is the API shape for one coupon grant.
type IssuanceSummary struct {
	ID             uuid.UUID `json:"id"`
	CouponID       uuid.UUID `json:"coupon_id"`
	Name           string    `json:"name,omitempty"`
	DiscountAmount int       `json:"discount_amount,omitempty"`
	MinOrderAmount int       `json:"min_order_amount,omitempty"`
	Status         string    `json:"status"`
	IssuedAt       time.Time `json:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func NewIssuanceSummary(issuance models.CouponIssuance) IssuanceSummary {
	out := IssuanceSummary{
		ID:        issuance.ID,
		CouponID:  issuance.CouponID,
		Status:    issuance.Status.String(),
		IssuedAt:  issuance.IssuedAt,
		ExpiresAt: issuance.ExpiresAt,
	}
	if issuance.Coupon != nil {
		out.Name = issuance.Coupon.Name
		out.DiscountAmount = issuance.Coupon.DiscountAmount
		out.MinOrderAmount = issuance.Coupon.MinOrderAmount
	}
	return out
}

// IssuanceList is a cursor page of the caller's coupon wallet.
type IssuanceList struct {
	Issuances  []IssuanceSummary `json:"issuances"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// NewIssuanceList expects up to limit+1 rows and trims the lookahead row into
// the next cursor.
func NewIssuanceList(rows []models.CouponIssuance, limit int) IssuanceList {
	out := IssuanceList{Issuances: make([]IssuanceSummary, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for _, row := range rows {
		out.Issuances = append(out.Issuances, NewIssuanceSummary(row))
	}
	return out
}
