package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// OrderPayment is one row in the append-only payment attempt log for an
// order. A READY row is written when the provider handshake begins; APPROVED
// is written only once every downstream effect of the approval has committed.
type OrderPayment struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index"`
	Method      enums.PaymentMethod        `gorm:"column:method;not null"`
	Provider    string                     `gorm:"column:provider;not null"`
	TxID        string                     `gorm:"column:tx_id;not null;index"`
	Amount      int                        `gorm:"column:amount;not null"`
	Status      enums.PaymentAttemptStatus `gorm:"column:status;not null;default:'ready'"`
	ApprovedAt  *time.Time                 `gorm:"column:approved_at"`
	CancelledAt *time.Time                 `gorm:"column:cancelled_at"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
