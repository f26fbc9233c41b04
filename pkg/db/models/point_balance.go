package models

import (
	"time"

	"github.com/google/uuid"
)

// PointBalance is the single current-value projection of a user's loyalty
// points. It is always read and written under a row lock; non-negativity is
// enforced by the PointsLedger, not by a database constraint.
type PointBalance struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Balance   int       `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
