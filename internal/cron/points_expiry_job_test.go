package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestPointsExpiryJobForfeitsExpiredEarnings(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	expiredAt := now.Add(-time.Hour)
	ledger := &fakePointsLedger{
		balances: map[uuid.UUID]*models.PointBalance{
			userID: {UserID: userID, Balance: 300},
		},
		expired: []models.PointTransaction{
			{
				ID:           uuid.New(),
				UserID:       userID,
				Kind:         enums.PointTransactionKindEarn,
				AmountSigned: 500,
				ExpiresAt:    &expiredAt,
			},
		},
	}
	job := newPointsExpiryJob(t, ledger)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// only the remaining balance can be forfeited
	if got := ledger.balances[userID].Balance; got != 0 {
		t.Fatalf("expected balance 0, got %d", got)
	}
	if len(ledger.created) != 1 {
		t.Fatalf("expected one expire entry, got %d", len(ledger.created))
	}
	entry := ledger.created[0]
	if entry.Kind != enums.PointTransactionKindExpire {
		t.Fatalf("unexpected kind %s", entry.Kind)
	}
	if entry.AmountSigned != -300 {
		t.Fatalf("expected amount -300, got %d", entry.AmountSigned)
	}
	expectedMemo := fmt.Sprintf("expire:%s", ledger.expired[0].ID)
	if entry.Memo != expectedMemo {
		t.Fatalf("expected memo %q, got %q", expectedMemo, entry.Memo)
	}
}

func TestPointsExpiryJobMarksEntryWhenBalanceGone(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()
	expiredAt := now.Add(-time.Hour)
	ledger := &fakePointsLedger{
		balances: map[uuid.UUID]*models.PointBalance{},
		expired: []models.PointTransaction{
			{
				ID:           uuid.New(),
				UserID:       userID,
				Kind:         enums.PointTransactionKindEarn,
				AmountSigned: 500,
				ExpiresAt:    &expiredAt,
			},
		},
	}
	job := newPointsExpiryJob(t, ledger)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ledger.created) != 1 {
		t.Fatalf("expected marker entry, got %d", len(ledger.created))
	}
	if got := ledger.created[0].AmountSigned; got != 0 {
		t.Fatalf("expected zero forfeit, got %d", got)
	}
}

func TestPointsExpiryJobPropagatesError(t *testing.T) {
	ledger := &fakePointsLedger{findErr: errors.New("boom")}
	job := newPointsExpiryJob(t, ledger)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newPointsExpiryJob(t *testing.T, ledger *fakePointsLedger) *pointsExpiryJob {
	t.Helper()
	jobIface, err := NewPointsExpiryJob(PointsExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     outboxRetentionTxRunner{},
		Ledger: ledger,
	})
	if err != nil {
		t.Fatalf("NewPointsExpiryJob: %v", err)
	}
	job, ok := jobIface.(*pointsExpiryJob)
	if !ok {
		t.Fatalf("expected pointsExpiryJob, got %T", jobIface)
	}
	return job
}

type fakePointsLedger struct {
	balances map[uuid.UUID]*models.PointBalance
	expired  []models.PointTransaction
	created  []models.PointTransaction
	findErr  error
}

func (f *fakePointsLedger) WithTx(tx *gorm.DB) points.Repository { return f }

func (f *fakePointsLedger) LockBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	return f.balances[userID], nil
}

func (f *fakePointsLedger) GetBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	return f.balances[userID], nil
}

func (f *fakePointsLedger) SaveBalance(ctx context.Context, balance *models.PointBalance) error {
	f.balances[balance.UserID] = balance
	return nil
}

func (f *fakePointsLedger) CreateTransaction(ctx context.Context, entry *models.PointTransaction) error {
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakePointsLedger) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error) {
	return nil, nil
}

func (f *fakePointsLedger) FindExpiredEarnings(ctx context.Context, cutoff time.Time, limit int) ([]models.PointTransaction, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.expired, nil
}
