package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/config"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
	"github.com/bookhaven/bookstore-backend/pkg/metrics"
	"github.com/bookhaven/bookstore-backend/pkg/outbox"
	"github.com/bookhaven/bookstore-backend/pkg/outbox/payloads"
)

// ErrPaymentAmountMismatch is returned when the provider authorized a
// different amount than the order total. Nothing is settled in that case.
var ErrPaymentAmountMismatch = pkgerrors.New(pkgerrors.CodeBusinessRule, "authorized amount does not match order total")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionStore interface {
	StorePaymentSession(ctx context.Context, orderID, payload string, ttl time.Duration) error
	DeletePaymentSession(ctx context.Context, orderID string) error
}

// ReadyInput opens a provider payment session for a draft order.
type ReadyInput struct {
	OrderID uuid.UUID
	Method  enums.PaymentMethod
}

// ReadyResult carries the READY attempt handed back to the client so it can
// drive the provider checkout.
type ReadyResult struct {
	Payment *models.OrderPayment
}

// ApproveInput is the provider approval callback.
type ApproveInput struct {
	OrderID          uuid.UUID
	Method           enums.PaymentMethod
	TxID             string
	AuthorizedAmount int
}

// ApproveResult is the settled state after a successful approval.
type ApproveResult struct {
	Order   *models.Order
	Payment *models.OrderPayment
}

// Service owns the payment handshake and the approval workflow. Approve is
// the only place an order leaves the READY payment state; everything it
// touches commits or rolls back as one transaction.
type Service interface {
	Ready(ctx context.Context, userID uuid.UUID, input ReadyInput) (*ReadyResult, error)
	Approve(ctx context.Context, userID uuid.UUID, input ApproveInput) (*ApproveResult, error)
	ListAttempts(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderPayment, error)
}

type service struct {
	repo      Repository
	orderRepo orders.Repository
	cartRepo  cart.Repository
	coupons   coupons.Service
	points    points.Service
	tx        txRunner
	gateway   GatewayClient
	sessions  sessionStore
	events    *outbox.Service
	metrics   *metrics.ApprovalMetrics
	logg      *logger.Logger
	cfg       config.PaymentConfig
	nowFn     func() time.Time
}

// NewService wires the payment service with its collaborators. Sessions,
// events, metrics and the logger are optional.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	cartRepo cart.Repository,
	couponSvc coupons.Service,
	pointSvc points.Service,
	tx txRunner,
	gateway GatewayClient,
	sessions sessionStore,
	events *outbox.Service,
	approvalMetrics *metrics.ApprovalMetrics,
	logg *logger.Logger,
	cfg config.PaymentConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orderRepo == nil {
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
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		coupons:   couponSvc,
		points:    pointSvc,
		tx:        tx,
		gateway:   gateway,
		sessions:  sessions,
		events:    events,
		metrics:   approvalMetrics,
		logg:      logg,
		cfg:       cfg,
		nowFn:     time.Now,
	}, nil
}

type paymentSession struct {
	TxID   string `json:"tx_id"`
	Method string `json:"method"`
	Amount int    `json:"amount"`
}

func (s *service) Ready(ctx context.Context, userID uuid.UUID, input ReadyInput) (*ReadyResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	order, err := s.orderRepo.FindByIDAndUser(ctx, input.OrderID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, orders.ErrOrderNotFound
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, orders.ErrOrderAlreadyCancelled
	}
	if order.PaymentStatus != enums.OrderPaymentStatusReady {
		return nil, orders.ErrOrderNotReadyForPayment
	}

	resp, err := s.gateway.Prepare(ctx, PrepareRequest{
		Method:  input.Method,
		OrderNo: order.OrderNo,
		Amount:  order.TotalAmount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prepare provider payment")
	}

	payment := &models.OrderPayment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Method:   input.Method,
		Provider: resp.Provider,
		TxID:     resp.TxID,
		Amount:   order.TotalAmount,
		Status:   enums.PaymentAttemptStatusReady,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment attempt")
	}

	if s.sessions != nil {
		session, err := json.Marshal(paymentSession{
			TxID:   resp.TxID,
			Method: input.Method.String(),
			Amount: order.TotalAmount,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment session")
		}
		if err := s.sessions.StorePaymentSession(ctx, order.ID.String(), string(session), s.cfg.SessionTTL); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment session")
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(logCtx, "payment session opened")
	}
	return &ReadyResult{Payment: payment}, nil
}

func (s *service) Approve(ctx context.Context, userID uuid.UUID, input ApproveInput) (*ApproveResult, error) {
	started := time.Now()
	result, err := s.approve(ctx, userID, input)

	method := input.Method.String()
	if s.metrics != nil {
		s.metrics.ObserveDuration(method, time.Since(started))
		if err != nil {
			s.metrics.IncRejected(method, rejectionCode(err))
		} else {
			s.metrics.IncApproved(method)
		}
	}
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, input.OrderID.String())
			s.logg.Warn(logCtx, "payment approval rejected")
		}
		return nil, err
	}

	if s.sessions != nil {
		// The session is only a handshake cache; a stale entry expires on
		// its own, so a delete failure must not fail the approval.
		if derr := s.sessions.DeletePaymentSession(ctx, result.Order.ID.String()); derr != nil && s.logg != nil {
			s.logg.Warn(ctx, "clear payment session failed")
		}
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, result.Order.ID.String())
		s.logg.Info(logCtx, "payment approved")
	}
	return result, nil
}

func (s *service) approve(ctx context.Context, userID uuid.UUID, input ApproveInput) (*ApproveResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if input.TxID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider transaction id is required")
	}
	if input.AuthorizedAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorized amount must be positive")
	}

	now := s.nowFn()
	var result *ApproveResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)
		couponSvc := s.coupons.WithTx(tx)
		pointSvc := s.points.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		order, err := orderRepo.FindForUpdate(ctx, input.OrderID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}
		if order == nil {
			return orders.ErrOrderNotFound
		}
		if order.Status == enums.OrderStatusCancelled {
			return orders.ErrOrderAlreadyCancelled
		}
		if order.PaymentStatus != enums.OrderPaymentStatusReady {
			return orders.ErrOrderNotReadyForPayment
		}
		if input.AuthorizedAmount != order.TotalAmount {
			return ErrPaymentAmountMismatch
		}

		var redeemedCouponID *uuid.UUID
		if order.AppliedCouponIssuanceID != nil {
			issuance, err := couponSvc.GetIssuance(ctx, *order.AppliedCouponIssuanceID, userID)
			if err != nil {
				return err
			}
			if err := couponSvc.Redeem(ctx, issuance.ID, userID, order.ID, order.CouponDiscountAmount, now); err != nil {
				return err
			}
			redeemedCouponID = &issuance.CouponID
		}

		if order.PointsSpent > 0 {
			if err := pointSvc.Spend(ctx, userID, order.PointsSpent, order.ID, now); err != nil {
				return err
			}
		}

		payment, err := s.recordApproval(ctx, repo, order, input, now)
		if err != nil {
			return err
		}

		paid := order.Paid(now)
		if err := orderRepo.SaveAggregate(ctx, &paid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save paid order")
		}

		if paid.PointsEarned > 0 {
			if err := pointSvc.Earn(ctx, userID, paid.PointsEarned, paid.ID, now); err != nil {
				return err
			}
		}

		if err := cartRepo.DeleteByUserAndRefs(ctx, userID, itemRefs(paid.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release cart lines")
		}

		if s.events != nil {
			if err := s.emitApprovalEvents(ctx, tx, userID, &paid, payment, redeemedCouponID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit approval events")
			}
		}

		result = &ApproveResult{Order: &paid, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recordApproval flips the open READY attempt to APPROVED, or records a
// fresh APPROVED attempt when the approval arrives without a prior
// handshake row.
func (s *service) recordApproval(ctx context.Context, repo Repository, order *models.Order, input ApproveInput, now time.Time) (*models.OrderPayment, error) {
	payment, err := repo.FindReadyByOrderAndTx(ctx, order.ID, input.TxID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment attempt")
	}
	if payment == nil {
		payment = &models.OrderPayment{
			ID:         uuid.New(),
			OrderID:    order.ID,
			Method:     input.Method,
			Provider:   input.Method.String(),
			TxID:       input.TxID,
			Amount:     input.AuthorizedAmount,
			Status:     enums.PaymentAttemptStatusApproved,
			ApprovedAt: &now,
		}
		if err := repo.Create(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment attempt")
		}
		return payment, nil
	}

	payment.Status = enums.PaymentAttemptStatusApproved
	payment.ApprovedAt = &now
	payment.Amount = input.AuthorizedAmount
	if err := repo.Save(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment attempt")
	}
	return payment, nil
}

func (s *service) emitApprovalEvents(ctx context.Context, tx *gorm.DB, userID uuid.UUID, order *models.Order, payment *models.OrderPayment, couponID *uuid.UUID, now time.Time) error {
	actor := &outbox.ActorRef{UserID: userID}

	err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentApproved,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.PaymentApprovedEvent{
			OrderID:          order.ID,
			OrderNo:          order.OrderNo,
			UserID:           userID,
			PaymentID:        payment.ID,
			Method:           payment.Method,
			Amount:           payment.Amount,
			PointsSpent:      order.PointsSpent,
			PointsEarned:     order.PointsEarned,
			CouponIssuanceID: order.AppliedCouponIssuanceID,
			ApprovedAt:       now,
		},
	})
	if err != nil {
		return err
	}

	if couponID != nil && order.AppliedCouponIssuanceID != nil {
		err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCouponRedeemed,
			AggregateType: enums.AggregateCoupon,
			AggregateID:   *order.AppliedCouponIssuanceID,
			Actor:         actor,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.CouponRedeemedEvent{
				IssuanceID:     *order.AppliedCouponIssuanceID,
				CouponID:       *couponID,
				UserID:         userID,
				OrderID:        order.ID,
				RedeemedAmount: order.CouponDiscountAmount,
				RedeemedAt:     now,
			},
		})
		if err != nil {
			return err
		}
	}

	orderID := order.ID
	if order.PointsSpent > 0 {
		if err := s.emitPointsMoved(ctx, tx, actor, userID, enums.PointTransactionKindSpend, -order.PointsSpent, &orderID, now); err != nil {
			return err
		}
	}
	if order.PointsEarned > 0 {
		if err := s.emitPointsMoved(ctx, tx, actor, userID, enums.PointTransactionKindEarn, order.PointsEarned, &orderID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) emitPointsMoved(ctx context.Context, tx *gorm.DB, actor *outbox.ActorRef, userID uuid.UUID, kind enums.PointTransactionKind, amountSigned int, orderID *uuid.UUID, now time.Time) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPointsMoved,
		AggregateType: enums.AggregatePoints,
		AggregateID:   userID,
		Actor:         actor,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.PointsMovedEvent{
			UserID:       userID,
			Kind:         kind,
			AmountSigned: amountSigned,
			OrderID:      orderID,
			MovedAt:      now,
		},
	})
}

func (s *service) ListAttempts(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderPayment, error) {
	order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, orders.ErrOrderNotFound
	}
	return s.repo.ListByOrder(ctx, orderID)
}

func itemRefs(items []models.OrderItem) []cart.ItemRef {
	refs := make([]cart.ItemRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, cart.ItemRef{
			RefType:    item.RefType,
			RefID:      item.RefID,
			RentalDays: item.RentalDays,
		})
	}
	return refs
}

func rejectionCode(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}
