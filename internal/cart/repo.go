package cart

import (
	"context"
	"errors"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRef identifies a cart line by the same tuple an order item snapshots.
type ItemRef struct {
	RefType    enums.OrderItemRefType
	RefID      uuid.UUID
	RentalDays int
}

// Repository defines persistence operations for cart records and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	FindItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	FindSelectableItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error)
	DeleteByUserAndRefs(ctx context.Context, userID uuid.UUID, refs []ItemRef) error
	SaveTotals(ctx context.Context, cartID uuid.UUID, totals Totals) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) FindItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindSelectableItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN cart_records ON cart_records.id = cart_items.cart_id").
		Where("cart_records.user_id = ? AND cart_records.status = ?", userID, enums.CartStatusActive).
		Where("cart_items.selected = ?", true)
	if len(ids) > 0 {
		query = query.Where("cart_items.id IN ?", ids)
	}
	var items []models.CartItem
	if err := query.Order("cart_items.created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) DeleteByUserAndRefs(ctx context.Context, userID uuid.UUID, refs []ItemRef) error {
	if len(refs) == 0 {
		return nil
	}
	carts := r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Select("id").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive)
	tx := r.db.WithContext(ctx).Where("cart_id IN (?)", carts)
	refClause := r.db.Session(&gorm.Session{NewDB: true})
	for i, ref := range refs {
		cond := r.db.Session(&gorm.Session{NewDB: true}).
			Where("ref_type = ? AND ref_id = ? AND rental_days = ?", ref.RefType, ref.RefID, ref.RentalDays)
		if i == 0 {
			refClause = cond
		} else {
			refClause = refClause.Or(cond)
		}
	}
	return tx.Where(refClause).Delete(&models.CartItem{}).Error
}

func (r *repository) SaveTotals(ctx context.Context, cartID uuid.UUID, totals Totals) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"item_count":      totals.ItemCount,
			"subtotal_amount": totals.Subtotal,
			"rental_amount":   totals.Rental,
			"total_amount":    totals.Total,
			"points_earnable": totals.PointsEarnable,
		}).Error
}
