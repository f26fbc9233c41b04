package points

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

// BalanceSummary is the API shape for a user's current point balance.
type BalanceSummary struct {
	Balance int `json:"balance"`
}

// TransactionSummary is one ledger entry as exposed over the API.
type TransactionSummary struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	AmountSigned int        `json:"amount_signed"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Memo         string     `json:"memo,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TransactionList is a cursor page of the caller's points ledger.
type TransactionList struct {
	Transactions []TransactionSummary `json:"transactions"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// NewTransactionList expects up to limit+1 rows and trims the lookahead row
// into the next cursor.
func NewTransactionList(rows []models.PointTransaction, limit int) TransactionList {
	out := TransactionList{Transactions: make([]TransactionSummary, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for _, row := range rows {
		out.Transactions = append(out.Transactions, TransactionSummary{
			ID:           row.ID,
			Kind:         row.Kind.String(),
			AmountSigned: row.AmountSigned,
			OrderID:      row.OrderID,
			ExpiresAt:    row.ExpiresAt,
			Memo:         row.Memo,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}
