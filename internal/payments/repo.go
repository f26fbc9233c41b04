package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// Repository defines persistence operations for the payment attempt log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.OrderPayment) error
	// FindReadyByOrderAndTx returns the open READY attempt matching the
	// provider transaction, or nil when no such row exists.
	FindReadyByOrderAndTx(ctx context.Context, orderID uuid.UUID, txID string) (*models.OrderPayment, error)
	Save(ctx context.Context, payment *models.OrderPayment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderPayment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment attempt repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.OrderPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindReadyByOrderAndTx(ctx context.Context, orderID uuid.UUID, txID string) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND tx_id = ? AND status = ?", orderID, txID, enums.PaymentAttemptStatusReady).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Save(ctx context.Context, payment *models.OrderPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderPayment, error) {
	var payments []models.OrderPayment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
