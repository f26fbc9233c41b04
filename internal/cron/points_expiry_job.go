package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"gorm.io/gorm"
)

const pointsExpiryBatchSize = 200

// PointsExpiryJobParams configure the points expiry sweep.
type PointsExpiryJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Ledger    points.Repository
	BatchSize int
}

// NewPointsExpiryJob builds the job that forfeits earned points past their
// one-year validity.
func NewPointsExpiryJob(params PointsExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("points repository required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = pointsExpiryBatchSize
	}
	return &pointsExpiryJob{
		logg:      params.Logger,
		db:        params.DB,
		ledger:    params.Ledger,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type pointsExpiryJob struct {
	logg      *logger.Logger
	db        txRunner
	ledger    points.Repository
	batchSize int
	now       func() time.Time
}

func (j *pointsExpiryJob) Name() string { return "points-expiry" }

func (j *pointsExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	due, err := j.ledger.FindExpiredEarnings(ctx, now, j.batchSize)
	if err != nil {
		return fmt.Errorf("points expiry: %w", err)
	}
	var forfeited int
	for _, earn := range due {
		amount, err := j.expireOne(ctx, earn, now)
		if err != nil {
			return fmt.Errorf("points expiry %s: %w", earn.ID, err)
		}
		forfeited += amount
	}
	if len(due) > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"entries_expired":  len(due),
			"points_forfeited": forfeited,
		})
		j.logg.Info(logCtx, "points expiry sweep complete")
	}
	return nil
}

// expireOne settles one expired earn entry. The expire entry is written even
// when nothing was left to forfeit so the earn entry is never picked up again.
func (j *pointsExpiryJob) expireOne(ctx context.Context, earn models.PointTransaction, now time.Time) (int, error) {
	forfeit := 0
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := j.ledger.WithTx(tx)
		balance, err := ledger.LockBalance(ctx, earn.UserID)
		if err != nil {
			return err
		}
		if balance != nil {
			forfeit = earn.AmountSigned
			// spent points are gone already; never drive the balance negative
			if forfeit > balance.Balance {
				forfeit = balance.Balance
			}
			if forfeit > 0 {
				balance.Balance -= forfeit
				if err := ledger.SaveBalance(ctx, balance); err != nil {
					return err
				}
			}
		}
		return ledger.CreateTransaction(ctx, &models.PointTransaction{
			UserID:       earn.UserID,
			Kind:         enums.PointTransactionKindExpire,
			AmountSigned: -forfeit,
			Memo:         fmt.Sprintf("expire:%s", earn.ID),
			CreatedAt:    now,
		})
	})
	if err != nil {
		return 0, err
	}
	return forfeit, nil
}
