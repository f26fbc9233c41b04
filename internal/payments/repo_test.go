package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS order_payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  method TEXT NOT NULL,
  provider TEXT NOT NULL,
  tx_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'ready',
  approved_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func TestRepositoryFindReadyByOrderAndTx(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	ready := &models.OrderPayment{
		ID:       uuid.New(),
		OrderID:  orderID,
		Method:   enums.PaymentMethodKakaoPay,
		Provider: "kakaopay",
		TxID:     "tx-0001",
		Amount:   20000,
		Status:   enums.PaymentAttemptStatusReady,
	}
	require.NoError(t, repo.Create(ctx, ready))

	found, err := repo.FindReadyByOrderAndTx(ctx, orderID, "tx-0001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ready.ID, found.ID)
	assert.Equal(t, enums.PaymentAttemptStatusReady, found.Status)

	missing, err := repo.FindReadyByOrderAndTx(ctx, orderID, "tx-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositorySaveFlipsAttemptToApproved(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	attempt := &models.OrderPayment{
		ID:       uuid.New(),
		OrderID:  orderID,
		Method:   enums.PaymentMethodTossPay,
		Provider: "tosspay",
		TxID:     "tx-0002",
		Amount:   18000,
		Status:   enums.PaymentAttemptStatusReady,
	}
	require.NoError(t, repo.Create(ctx, attempt))

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt.Status = enums.PaymentAttemptStatusApproved
	attempt.ApprovedAt = &now
	require.NoError(t, repo.Save(ctx, attempt))

	// approved rows no longer match the open-attempt lookup
	open, err := repo.FindReadyByOrderAndTx(ctx, orderID, "tx-0002")
	require.NoError(t, err)
	assert.Nil(t, open)

	attempts, err := repo.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, enums.PaymentAttemptStatusApproved, attempts[0].Status)
	require.NotNil(t, attempts[0].ApprovedAt)
}

func TestRepositoryListByOrderScopesRows(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderA := uuid.New()
	orderB := uuid.New()
	for i, orderID := range []uuid.UUID{orderA, orderA, orderB} {
		require.NoError(t, repo.Create(ctx, &models.OrderPayment{
			ID:       uuid.New(),
			OrderID:  orderID,
			Method:   enums.PaymentMethodKakaoPay,
			Provider: "kakaopay",
			TxID:     uuid.NewString(),
			Amount:   1000 * (i + 1),
			Status:   enums.PaymentAttemptStatusReady,
		}))
	}

	attempts, err := repo.ListByOrder(ctx, orderA)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}
