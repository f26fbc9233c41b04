package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// PointTransaction is one immutable entry in the append-only points ledger.
// For every user, sum(amount_signed) must equal the PointBalance projection.
type PointTransaction struct {
	ID           uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Kind         enums.PointTransactionKind `gorm:"column:kind;not null"`
	AmountSigned int                        `gorm:"column:amount_signed;not null"`
	ExpiresAt    *time.Time                 `gorm:"column:expires_at"`
	OrderID      *uuid.UUID                 `gorm:"column:order_id;type:uuid"`
	Memo         string                     `gorm:"column:memo;not null;default:''"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
