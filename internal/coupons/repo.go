package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

// Repository manages persistence for coupons, issuances, and redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCoupon(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error)
	// FindIssuanceByIDAndUser loads an issuance owned by the user, with its
	// coupon preloaded. Returns nil when no such issuance exists.
	FindIssuanceByIDAndUser(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error)
	CountIssuances(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	CreateIssuance(ctx context.Context, issuance *models.CouponIssuance) error
	UpdateIssuanceStatus(ctx context.Context, issuanceID uuid.UUID, status enums.CouponIssuanceStatus) error
	CreateRedemption(ctx context.Context, redemption *models.CouponRedemption) error
	ListIssuancesByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error)
	// ExpireDueIssuances flips available issuances whose expiry has passed
	// and reports how many rows changed.
	ExpireDueIssuances(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coupons repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCoupon(ctx context.Context, couponID uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("id = ?", couponID).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindIssuanceByIDAndUser(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error) {
	var issuance models.CouponIssuance
	err := r.db.WithContext(ctx).
		Preload("Coupon").
		Where("id = ? AND user_id = ?", issuanceID, userID).
		First(&issuance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issuance, nil
}

func (r *repository) CountIssuances(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponIssuance{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateIssuance(ctx context.Context, issuance *models.CouponIssuance) error {
	return r.db.WithContext(ctx).Create(issuance).Error
}

func (r *repository) UpdateIssuanceStatus(ctx context.Context, issuanceID uuid.UUID, status enums.CouponIssuanceStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CouponIssuance{}).
		Where("id = ?", issuanceID).
		Update("status", status).Error
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.CouponRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) ListIssuancesByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error) {
	query := r.db.WithContext(ctx).
		Preload("Coupon").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var issuances []models.CouponIssuance
	if err := query.Find(&issuances).Error; err != nil {
		return nil, err
	}
	return issuances, nil
}

func (r *repository) ExpireDueIssuances(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CouponIssuance{}).
		Where("status = ? AND expires_at <= ?", enums.CouponIssuanceStatusAvailable, cutoff).
		Update("status", enums.CouponIssuanceStatusExpired)
	return result.RowsAffected, result.Error
}
