package points

import (
	"context"
	"errors"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for point balances and ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// LockBalance row-locks the user's balance for the duration of the
	// enclosing transaction. Returns nil when no balance row exists yet.
	LockBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error)
	SaveBalance(ctx context.Context, balance *models.PointBalance) error
	CreateTransaction(ctx context.Context, entry *models.PointTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error)
	// FindExpiredEarnings returns earn entries whose expiry has passed and
	// that have no matching expire entry yet, oldest first.
	FindExpiredEarnings(ctx context.Context, cutoff time.Time, limit int) ([]models.PointTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a points repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) LockBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	var balance models.PointBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	var balance models.PointBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) SaveBalance(ctx context.Context, balance *models.PointBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.PointTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error) {
	query := r.db.WithContext(ctx).
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

	var entries []models.PointTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindExpiredEarnings(ctx context.Context, cutoff time.Time, limit int) ([]models.PointTransaction, error) {
	var entries []models.PointTransaction
	err := r.db.WithContext(ctx).
		Where("kind = ? AND expires_at IS NOT NULL AND expires_at <= ?", enums.PointTransactionKindEarn, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM point_transactions marker WHERE marker.kind = ? AND marker.memo = 'expire:' || point_transactions.id)", enums.PointTransactionKindExpire).
		Order("expires_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
