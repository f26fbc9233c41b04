package points

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientBalance is returned when a spend would drive the balance
// below zero. The balance is left untouched.
var ErrInsufficientBalance = pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient point balance")

// Service is the loyalty-points ledger. Spend and Earn must run inside the
// caller's transaction (via WithTx) so the balance row lock spans from the
// read to the write.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Spend(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error
	Earn(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error)
}

type service struct {
	repo Repository
}

// NewService wires a points ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Spend(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error {
	if amount <= 0 {
		return nil
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	balance, err := s.repo.LockBalance(ctx, userID)
	if err != nil {
		return err
	}
	if balance == nil || balance.Balance < amount {
		return ErrInsufficientBalance
	}

	balance.Balance -= amount
	if err := s.repo.SaveBalance(ctx, balance); err != nil {
		return err
	}

	return s.repo.CreateTransaction(ctx, &models.PointTransaction{
		UserID:       userID,
		Kind:         enums.PointTransactionKindSpend,
		AmountSigned: -amount,
		OrderID:      orderIDRef(orderID),
		CreatedAt:    now,
	})
}

func (s *service) Earn(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error {
	if amount <= 0 {
		return nil
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	balance, err := s.repo.LockBalance(ctx, userID)
	if err != nil {
		return err
	}
	if balance == nil {
		balance = &models.PointBalance{UserID: userID}
	}

	balance.Balance += amount
	if err := s.repo.SaveBalance(ctx, balance); err != nil {
		return err
	}

	// earned points stay redeemable for one year
	expiresAt := now.AddDate(1, 0, 0)
	return s.repo.CreateTransaction(ctx, &models.PointTransaction{
		UserID:       userID,
		Kind:         enums.PointTransactionKindEarn,
		AmountSigned: amount,
		ExpiresAt:    &expiresAt,
		OrderID:      orderIDRef(orderID),
		CreatedAt:    now,
	})
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance == nil {
		return 0, nil
	}
	return balance.Balance, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error) {
	return s.repo.ListTransactions(ctx, userID, params)
}

func orderIDRef(orderID uuid.UUID) *uuid.UUID {
	if orderID == uuid.Nil {
		return nil
	}
	return &orderID
}
