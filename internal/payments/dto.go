package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
)

// AttemptSummary is the API shape for one payment attempt.
type AttemptSummary struct {
	ID         uuid.UUID  `json:"id"`
	OrderID    uuid.UUID  `json:"order_id"`
	Method     string     `json:"method"`
	Provider   string     `json:"provider"`
	TxID       string     `json:"tx_id"`
	Amount     int        `json:"amount"`
	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewAttemptSummary(p models.OrderPayment) AttemptSummary {
	return AttemptSummary{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Method:     p.Method.String(),
		Provider:   p.Provider,
		TxID:       p.TxID,
		Amount:     p.Amount,
		Status:     p.Status.String(),
		ApprovedAt: p.ApprovedAt,
		CreatedAt:  p.CreatedAt,
	}
}

// AttemptList wraps the attempt log for one order.
type AttemptList struct {
	Attempts []AttemptSummary `json:"attempts"`
}

func NewAttemptList(rows []models.OrderPayment) AttemptList {
	out := AttemptList{Attempts: make([]AttemptSummary, 0, len(rows))}
	for _, row := range rows {
		out.Attempts = append(out.Attempts, NewAttemptSummary(row))
	}
	return out
}
