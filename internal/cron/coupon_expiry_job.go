package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

type couponExpiryRepo interface {
	ExpireDueIssuances(ctx context.Context, cutoff time.Time) (int64, error)
}

// CouponExpiryJobParams configure the coupon issuance expiry sweep.
type CouponExpiryJobParams struct {
	Logger     *logger.Logger
	Repository couponExpiryRepo
}

// NewCouponExpiryJob builds the job that flips overdue available issuances
// to expired.
func NewCouponExpiryJob(params CouponExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &couponExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type couponExpiryJob struct {
	logg *logger.Logger
	repo couponExpiryRepo
	now  func() time.Time
}

func (j *couponExpiryJob) Name() string { return "coupon-expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	expired, err := j.repo.ExpireDueIssuances(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("coupon expiry: %w", err)
	}
	if expired > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":            cutoff,
			"issuances_expired": expired,
		})
		j.logg.Info(logCtx, "coupon expiry sweep complete")
	}
	return nil
}
