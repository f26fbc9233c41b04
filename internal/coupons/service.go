package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/pkg/db"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

var (
	// ErrCouponNotFound is returned when the issuance does not exist or
	// belongs to another user.
	ErrCouponNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "coupon issuance not found")
	// ErrCouponNotAvailable is returned when the issuance status is not
	// AVAILABLE (already used, expired, or revoked).
	ErrCouponNotAvailable = pkgerrors.New(pkgerrors.CodeStateConflict, "coupon issuance is not available")
	// ErrCouponExpired is returned when the issuance expiry has passed even
	// though its status row still says AVAILABLE.
	ErrCouponExpired = pkgerrors.New(pkgerrors.CodeStateConflict, "coupon issuance has expired")
	// ErrCouponAlreadyRedeemed is returned when a redemption row already
	// exists for the issuance.
	ErrCouponAlreadyRedeemed = pkgerrors.New(pkgerrors.CodeStateConflict, "coupon issuance already redeemed")
	// ErrCouponEnded is returned by IssueIfEligible when the coupon's own
	// validity window has closed.
	ErrCouponEnded = pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is no longer issuable")
	// ErrIssueLimitReached is returned by IssueIfEligible when the user has
	// hit the per-user issuance limit.
	ErrIssueLimitReached = pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon issuance limit reached for user")
)

// redemptionConstraint names the unique index that makes redemption
// at-most-once under concurrency.
const redemptionConstraint = "ux_coupon_redemptions_issuance"

// Service is the coupon ledger. Redeem must run inside the payment approval
// transaction (via WithTx) so the status flip and the redemption row commit
// or roll back together.
type Service interface {
	WithTx(tx *gorm.DB) Service
	// IssueIfEligible grants the user a fresh issuance of the coupon,
	// enforcing the per-user limit and the coupon's end date.
	IssueIfEligible(ctx context.Context, couponID, userID uuid.UUID, now time.Time) (*models.CouponIssuance, error)
	// Redeem consumes an AVAILABLE, unexpired issuance against an order.
	Redeem(ctx context.Context, issuanceID, userID, orderID uuid.UUID, amount int, now time.Time) error
	GetIssuance(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error)
	ListIssuances(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error)
}

type service struct {
	repo Repository
}

// NewService wires a coupon ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) IssueIfEligible(ctx context.Context, couponID, userID uuid.UUID, now time.Time) (*models.CouponIssuance, error) {
	coupon, err := s.repo.FindCoupon(ctx, couponID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	// the issuance window is half-open: endsAt itself is already closed
	if !now.Before(coupon.EndsAt) {
		return nil, ErrCouponEnded
	}

	count, err := s.repo.CountIssuances(ctx, couponID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon issuances")
	}
	if count >= int64(coupon.PerUserLimit) {
		return nil, ErrIssueLimitReached
	}

	issuance := &models.CouponIssuance{
		ID:        uuid.New(),
		CouponID:  couponID,
		UserID:    userID,
		Status:    enums.CouponIssuanceStatusAvailable,
		IssuedAt:  now,
		ExpiresAt: issuanceExpiry(coupon, now),
	}
	if err := s.repo.CreateIssuance(ctx, issuance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon issuance")
	}
	issuance.Coupon = coupon
	return issuance, nil
}

func (s *service) Redeem(ctx context.Context, issuanceID, userID, orderID uuid.UUID, amount int, now time.Time) error {
	issuance, err := s.repo.FindIssuanceByIDAndUser(ctx, issuanceID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon issuance")
	}
	if issuance == nil {
		return ErrCouponNotFound
	}
	if issuance.Status != enums.CouponIssuanceStatusAvailable {
		return ErrCouponNotAvailable
	}
	if now.After(issuance.ExpiresAt) {
		return ErrCouponExpired
	}

	redemption := &models.CouponRedemption{
		ID:             uuid.New(),
		IssuanceID:     issuanceID,
		OrderID:        orderID,
		RedeemedAmount: amount,
		RedeemedAt:     now,
	}
	if err := s.repo.CreateRedemption(ctx, redemption); err != nil {
		if db.IsUniqueViolation(err, redemptionConstraint) {
			return ErrCouponAlreadyRedeemed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon redemption")
	}

	if err := s.repo.UpdateIssuanceStatus(ctx, issuanceID, enums.CouponIssuanceStatusUsed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark coupon issuance used")
	}
	return nil
}

func (s *service) GetIssuance(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error) {
	issuance, err := s.repo.FindIssuanceByIDAndUser(ctx, issuanceID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon issuance")
	}
	if issuance == nil {
		return nil, ErrCouponNotFound
	}
	return issuance, nil
}

func (s *service) ListIssuances(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error) {
	issuances, err := s.repo.ListIssuancesByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupon issuances")
	}
	return issuances, nil
}

// issuanceExpiry caps the per-issuance validity window at the coupon's own
// end date.
func issuanceExpiry(coupon *models.Coupon, now time.Time) time.Time {
	expiry := now.AddDate(0, coupon.ValidityMonths, 0)
	if expiry.After(coupon.EndsAt) {
		return coupon.EndsAt
	}
	return expiry
}
