package cart

import (
	"context"
	"fmt"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart mutations. Every mutation re-runs the pricing engine
// and persists the resulting totals onto the cart header, so reads never
// recompute line arithmetic.
type Service interface {
	GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error)
}

// AddItemInput captures one new cart line.
type AddItemInput struct {
	RefType         string
	RefID           uuid.UUID
	Title           string
	Quantity        int
	RentalDays      int
	ListUnitPrice   int
	SaleUnitPrice   *int
	RentalUnitPrice int
	PointsRate      int
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
	}
	return record, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	refType, err := enums.ParseOrderItemRefType(input.RefType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ref type")
	}
	if input.RefID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ref id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if refType == enums.RefTypeBookRental && input.RentalDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental days must be positive for rental items")
	}
	if input.ListUnitPrice < 0 || input.RentalUnitPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must be non-negative")
	}
	if input.SaleUnitPrice != nil && *input.SaleUnitPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be non-negative")
	}

	var result *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if record == nil {
			record, err = repo.Create(ctx, &models.CartRecord{UserID: userID})
			if err != nil {
				return err
			}
		}

		item := findLine(record.Items, refType, input.RefID, input.RentalDays)
		if item == nil {
			item = &models.CartItem{
				CartID:     record.ID,
				RefType:    refType,
				RefID:      input.RefID,
				RentalDays: input.RentalDays,
				Selected:   true,
			}
		}
		item.Title = input.Title
		item.Quantity += input.Quantity
		item.ListUnitPrice = input.ListUnitPrice
		item.SaleUnitPrice = input.SaleUnitPrice
		item.RentalUnitPrice = input.RentalUnitPrice
		item.PointsRate = input.PointsRate
		if err := repo.UpsertItem(ctx, item); err != nil {
			return err
		}

		result, err = s.reprice(ctx, repo, record.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if record == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}

		var target *models.CartItem
		for i := range record.Items {
			if record.Items[i].ID == itemID {
				target = &record.Items[i]
				break
			}
		}
		if target == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		target.Quantity = quantity
		if err := repo.UpsertItem(ctx, target); err != nil {
			return err
		}

		result, err = s.reprice(ctx, repo, record.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error) {
	var result *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if record == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		if err := repo.DeleteItem(ctx, record.ID, itemID); err != nil {
			return err
		}

		result, err = s.reprice(ctx, repo, record.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reprice reruns the pricing engine over the cart's current lines and writes
// the projection back onto the header.
func (s *service) reprice(ctx context.Context, repo Repository, cartID, userID uuid.UUID) (*models.CartRecord, error) {
	items, err := repo.FindItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := repo.SaveTotals(ctx, cartID, Recalculate(items)); err != nil {
		return nil, err
	}
	return repo.FindActiveByUser(ctx, userID)
}

func findLine(items []models.CartItem, refType enums.OrderItemRefType, refID uuid.UUID, rentalDays int) *models.CartItem {
	for i := range items {
		if items[i].RefType == refType && items[i].RefID == refID && items[i].RentalDays == rentalDays {
			return &items[i]
		}
	}
	return nil
}
