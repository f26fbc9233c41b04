package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"github.com/bookhaven/bookstore-backend/pkg/outbox"
	"github.com/bookhaven/bookstore-backend/pkg/outbox/payloads"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

var (
	// ErrOrderNotFound is returned when the order does not exist or belongs
	// to another user.
	ErrOrderNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	// ErrOrderAlreadyCancelled is returned when a mutation targets a
	// cancelled order.
	ErrOrderAlreadyCancelled = pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
	// ErrOrderNotReadyForPayment is returned when the order's payment status
	// is anything other than READY. It is the guard that makes payment
	// approval retry-safe.
	ErrOrderNotReadyForPayment = pkgerrors.New(pkgerrors.CodeStateConflict, "order is not ready for payment")
	// ErrEmptyCart is returned when placement finds no selected cart lines.
	ErrEmptyCart = pkgerrors.New(pkgerrors.CodeBusinessRule, "no selected cart items to place")
	// ErrCouponMinOrderAmount is returned when the order amount is below the
	// coupon's minimum.
	ErrCouponMinOrderAmount = pkgerrors.New(pkgerrors.CodeBusinessRule, "order amount below coupon minimum")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PlaceFromCartInput selects which cart lines become the order and carries
// the order-level shipping charge.
type PlaceFromCartInput struct {
	CartItemIDs    []uuid.UUID
	ShippingAmount int
}

// Service owns the order aggregate lifecycle up to the payment handshake.
type Service interface {
	WithTx(tx *gorm.DB) Service
	PlaceFromCart(ctx context.Context, userID uuid.UUID, input PlaceFromCartInput) (*models.Order, error)
	ApplyCoupon(ctx context.Context, userID, orderID, issuanceID uuid.UUID) (*models.Order, error)
	ApplyPoints(ctx context.Context, userID, orderID uuid.UUID, amount int) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error)
	// Repo exposes the repository for transaction composition by the
	// payment approval workflow.
	Repo() Repository
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	coupons  coupons.Service
	points   points.Service
	tx       txRunner
	events   *outbox.Service
	logg     *logger.Logger
	nowFn    func() time.Time
}

// NewService wires the order service with its collaborators.
func NewService(repo Repository, cartRepo cart.Repository, couponSvc coupons.Service, pointSvc points.Service, tx txRunner, events *outbox.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	if pointSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		coupons:  couponSvc,
		points:   pointSvc,
		tx:       tx,
		events:   events,
		logg:     logg,
		nowFn:    time.Now,
	}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	clone.cartRepo = s.cartRepo.WithTx(tx)
	clone.coupons = s.coupons.WithTx(tx)
	clone.points = s.points.WithTx(tx)
	return &clone
}

func (s *service) Repo() Repository {
	return s.repo
}

func (s *service) PlaceFromCart(ctx context.Context, userID uuid.UUID, input PlaceFromCartInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ShippingAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping amount must not be negative")
	}

	now := s.nowFn()
	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		items, err := cartRepo.FindSelectableItems(ctx, userID, input.CartItemIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load selectable cart items")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		totals := cart.Recalculate(items)
		order := &models.Order{
			ID:             uuid.New(),
			UserID:         userID,
			OrderNo:        generateOrderNo(now),
			CartID:         cartIDRef(items),
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.OrderPaymentStatusReady,
			ItemCount:      totals.ItemCount,
			SubtotalAmount: totals.Subtotal,
			RentalAmount:   totals.Rental,
			ShippingAmount: input.ShippingAmount,
			TotalAmount:    totals.Total + input.ShippingAmount,
			PointsEarned:   totals.PointsEarnable,
			PlacedAt:       now,
			Items:          snapshotItems(items),
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if s.events != nil {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{UserID: userID},
				Version:       1,
				OccurredAt:    now,
				Data: payloads.OrderPlacedEvent{
					OrderID:     order.ID,
					OrderNo:     order.OrderNo,
					UserID:      userID,
					ItemCount:   order.ItemCount,
					TotalAmount: order.TotalAmount,
					PlacedAt:    now,
				},
			}
			if err := s.events.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed event")
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, placed.ID.String())
		s.logg.Info(logCtx, "order placed from cart")
	}
	return placed, nil
}

func (s *service) ApplyCoupon(ctx context.Context, userID, orderID, issuanceID uuid.UUID) (*models.Order, error) {
	now := s.nowFn()
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		couponSvc := s.coupons.WithTx(tx)

		order, err := lockDraft(ctx, repo, orderID, userID)
		if err != nil {
			return err
		}

		issuance, err := couponSvc.GetIssuance(ctx, issuanceID, userID)
		if err != nil {
			return err
		}
		if issuance.Status != enums.CouponIssuanceStatusAvailable {
			return coupons.ErrCouponNotAvailable
		}
		if now.After(issuance.ExpiresAt) {
			return coupons.ErrCouponExpired
		}
		if issuance.Coupon == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "issuance missing coupon definition")
		}

		eligible := order.SubtotalAmount + order.RentalAmount
		if eligible < issuance.Coupon.MinOrderAmount {
			return ErrCouponMinOrderAmount
		}

		discount := issuance.Coupon.DiscountAmount
		if max := eligible + order.ShippingAmount; discount > max {
			discount = max
		}

		order.AppliedCouponIssuanceID = &issuance.ID
		order.CouponDiscountAmount = discount
		order.DiscountAmount = discount
		order.TotalAmount = order.SubtotalAmount + order.RentalAmount + order.ShippingAmount - order.DiscountAmount

		if err := repo.SaveAggregate(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ApplyPoints(ctx context.Context, userID, orderID uuid.UUID, amount int) (*models.Order, error) {
	if amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points amount must not be negative")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pointSvc := s.points.WithTx(tx)

		order, err := lockDraft(ctx, repo, orderID, userID)
		if err != nil {
			return err
		}

		balance, err := pointSvc.Balance(ctx, userID)
		if err != nil {
			return err
		}

		spend := amount
		if spend > balance {
			spend = balance
		}
		if spend > order.TotalAmount {
			spend = order.TotalAmount
		}

		// The debit itself settles inside the approval transaction; the
		// draft only records the intent.
		order.PointsSpent = spend
		if err := repo.SaveAggregate(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// lockDraft loads the order under a row lock and applies the draft-mutation
// guards shared by coupon and points application.
func lockDraft(ctx context.Context, repo Repository, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindForUpdate(ctx, orderID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, ErrOrderAlreadyCancelled
	}
	if order.PaymentStatus != enums.OrderPaymentStatusReady {
		return nil, ErrOrderNotReadyForPayment
	}
	return order, nil
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		line := cart.LineAmount(item)
		out = append(out, models.OrderItem{
			ID:               uuid.New(),
			RefType:          item.RefType,
			RefID:            item.RefID,
			Title:            item.Title,
			Quantity:         item.Quantity,
			RentalDays:       item.RentalDays,
			ListUnitPrice:    item.ListUnitPrice,
			SaleUnitPrice:    item.SaleUnitPrice,
			RentalUnitPrice:  item.RentalUnitPrice,
			LineAmount:       line,
			PointsRate:       item.PointsRate,
			PointsEarnedItem: cart.LinePoints(line, item.PointsRate),
		})
	}
	return out
}

func cartIDRef(items []models.CartItem) *uuid.UUID {
	if len(items) == 0 {
		return nil
	}
	id := items[0].CartID
	return &id
}

func generateOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
