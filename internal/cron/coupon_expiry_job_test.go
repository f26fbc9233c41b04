package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

func TestCouponExpiryJobSweepsOverdueIssuances(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeCouponExpiryRepo{expired: 3}
	job := newCouponExpiryJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestCouponExpiryJobPropagatesError(t *testing.T) {
	repo := &fakeCouponExpiryRepo{err: errors.New("boom")}
	job := newCouponExpiryJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newCouponExpiryJob(t *testing.T, repo *fakeCouponExpiryRepo) *couponExpiryJob {
	t.Helper()
	jobIface, err := NewCouponExpiryJob(CouponExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewCouponExpiryJob: %v", err)
	}
	job, ok := jobIface.(*couponExpiryJob)
	if !ok {
		t.Fatalf("expected couponExpiryJob, got %T", jobIface)
	}
	return job
}

type fakeCouponExpiryRepo struct {
	expired    int64
	err        error
	called     int
	lastCutoff time.Time
}

func (f *fakeCouponExpiryRepo) ExpireDueIssuances(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.expired, nil
}
