package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubOrdersRepo) FindForUpdate(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.FindForUpdate(ctx, orderID, userID)
}

func (s *stubOrdersRepo) SaveAggregate(ctx context.Context, order *models.Order) error {
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

type stubCartRepo struct {
	selectable []models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	return nil, nil
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	return record, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, item *models.CartItem) error { return nil }

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error { return nil }

func (s *stubCartRepo) FindItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	return nil, nil
}

func (s *stubCartRepo) FindSelectableItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error) {
	return s.selectable, nil
}

func (s *stubCartRepo) DeleteByUserAndRefs(ctx context.Context, userID uuid.UUID, refs []cart.ItemRef) error {
	return nil
}

func (s *stubCartRepo) SaveTotals(ctx context.Context, cartID uuid.UUID, totals cart.Totals) error {
	return nil
}

type stubCouponService struct {
	issuance *models.CouponIssuance
}

func (s *stubCouponService) WithTx(tx *gorm.DB) coupons.Service { return s }

func (s *stubCouponService) IssueIfEligible(ctx context.Context, couponID, userID uuid.UUID, now time.Time) (*models.CouponIssuance, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCouponService) Redeem(ctx context.Context, issuanceID, userID, orderID uuid.UUID, amount int, now time.Time) error {
	return errors.New("not implemented")
}

func (s *stubCouponService) GetIssuance(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error) {
	if s.issuance == nil || s.issuance.ID != issuanceID || s.issuance.UserID != userID {
		return nil, coupons.ErrCouponNotFound
	}
	copied := *s.issuance
	return &copied, nil
}

func (s *stubCouponService) ListIssuances(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error) {
	return nil, nil
}

type stubPointService struct {
	balance int
}

func (s *stubPointService) WithTx(tx *gorm.DB) points.Service { return s }

func (s *stubPointService) Spend(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error {
	return errors.New("not implemented")
}

func (s *stubPointService) Earn(ctx context.Context, userID uuid.UUID, amount int, orderID uuid.UUID, now time.Time) error {
	return errors.New("not implemented")
}

func (s *stubPointService) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.balance, nil
}

func (s *stubPointService) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository, cartRepo cart.Repository, couponSvc coupons.Service, pointSvc points.Service) Service {
	t.Helper()
	svc, err := NewService(repo, cartRepo, couponSvc, pointSvc, stubTxRunner{}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func TestPlaceFromCartSnapshotsSelectedLines(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cartID := uuid.New()
	cartRepo := &stubCartRepo{selectable: []models.CartItem{
		{
			ID:            uuid.New(),
			CartID:        cartID,
			RefType:       enums.RefTypeBookPurchase,
			RefID:         uuid.New(),
			Title:         "The Go Programming Language",
			Quantity:      2,
			ListUnitPrice: 20000,
			SaleUnitPrice: intPtr(18000),
			PointsRate:    5,
		},
		{
			ID:              uuid.New(),
			CartID:          cartID,
			RefType:         enums.RefTypeBookRental,
			RefID:           uuid.New(),
			Title:           "Designing Data-Intensive Applications",
			Quantity:        1,
			RentalDays:      14,
			RentalUnitPrice: 300,
		},
	}}

	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, cartRepo, &stubCouponService{}, &stubPointService{})

	order, err := svc.PlaceFromCart(context.Background(), userID, PlaceFromCartInput{ShippingAmount: 3000})
	if err != nil {
		t.Fatalf("PlaceFromCart: %v", err)
	}

	if order.PaymentStatus != enums.OrderPaymentStatusReady {
		t.Fatalf("expected READY payment status, got %s", order.PaymentStatus)
	}
	if order.SubtotalAmount != 36000 {
		t.Fatalf("expected subtotal 36000, got %d", order.SubtotalAmount)
	}
	if order.RentalAmount != 4200 {
		t.Fatalf("expected rental 4200, got %d", order.RentalAmount)
	}
	if order.TotalAmount != 36000+4200+3000 {
		t.Fatalf("expected total %d, got %d", 36000+4200+3000, order.TotalAmount)
	}
	// 36000 * 5 / 100
	if order.PointsEarned != 1800 {
		t.Fatalf("expected points earned 1800, got %d", order.PointsEarned)
	}
	if order.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", order.ItemCount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(order.Items))
	}
	if order.CartID == nil || *order.CartID != cartID {
		t.Fatalf("expected cart reference %s", cartID)
	}
	if order.OrderNo == "" {
		t.Fatal("expected a generated order number")
	}
	if _, ok := repo.orders[order.ID]; !ok {
		t.Fatal("expected order persisted")
	}
}

func TestPlaceFromCartRejectsEmptySelection(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubOrdersRepo(), &stubCartRepo{}, &stubCouponService{}, &stubPointService{})

	_, err := svc.PlaceFromCart(context.Background(), uuid.New(), PlaceFromCartInput{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func seedDraftOrder(repo *stubOrdersRepo, userID uuid.UUID) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		OrderNo:        "ORD-20260301-TEST0001",
		Status:         enums.OrderStatusPending,
		PaymentStatus:  enums.OrderPaymentStatusReady,
		ItemCount:      1,
		SubtotalAmount: 20000,
		TotalAmount:    20000,
		PlacedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	repo.orders[order.ID] = order
	return order
}

func TestApplyCouponRecomputesTotals(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedDraftOrder(repo, userID)

	issuance := &models.CouponIssuance{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    enums.CouponIssuanceStatusAvailable,
		ExpiresAt: time.Now().AddDate(0, 1, 0),
		Coupon: &models.Coupon{
			ID:             uuid.New(),
			DiscountAmount: 2000,
			MinOrderAmount: 10000,
		},
	}

	svc := newTestService(t, repo, &stubCartRepo{}, &stubCouponService{issuance: issuance}, &stubPointService{})

	updated, err := svc.ApplyCoupon(context.Background(), userID, order.ID, issuance.ID)
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if updated.CouponDiscountAmount != 2000 || updated.DiscountAmount != 2000 {
		t.Fatalf("expected discount 2000, got coupon=%d discount=%d", updated.CouponDiscountAmount, updated.DiscountAmount)
	}
	if updated.TotalAmount != 18000 {
		t.Fatalf("expected total 18000, got %d", updated.TotalAmount)
	}
	if updated.AppliedCouponIssuanceID == nil || *updated.AppliedCouponIssuanceID != issuance.ID {
		t.Fatal("expected applied issuance recorded")
	}
}

func TestApplyCouponBelowMinimum(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedDraftOrder(repo, userID)

	issuance := &models.CouponIssuance{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    enums.CouponIssuanceStatusAvailable,
		ExpiresAt: time.Now().AddDate(0, 1, 0),
		Coupon: &models.Coupon{
			ID:             uuid.New(),
			DiscountAmount: 2000,
			MinOrderAmount: 50000,
		},
	}

	svc := newTestService(t, repo, &stubCartRepo{}, &stubCouponService{issuance: issuance}, &stubPointService{})

	_, err := svc.ApplyCoupon(context.Background(), userID, order.ID, issuance.ID)
	if !errors.Is(err, ErrCouponMinOrderAmount) {
		t.Fatalf("expected ErrCouponMinOrderAmount, got %v", err)
	}
	if repo.orders[order.ID].DiscountAmount != 0 {
		t.Fatal("expected order untouched")
	}
}

func TestApplyCouponGuardsDraftState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name  string
		state func(order *models.Order)
		want  error
	}{
		{
			name:  "cancelled order",
			state: func(order *models.Order) { order.Status = enums.OrderStatusCancelled },
			want:  ErrOrderAlreadyCancelled,
		},
		{
			name:  "already paid",
			state: func(order *models.Order) { order.PaymentStatus = enums.OrderPaymentStatusPaid },
			want:  ErrOrderNotReadyForPayment,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newStubOrdersRepo()
			order := seedDraftOrder(repo, userID)
			tc.state(repo.orders[order.ID])

			svc := newTestService(t, repo, &stubCartRepo{}, &stubCouponService{}, &stubPointService{})

			_, err := svc.ApplyCoupon(context.Background(), userID, order.ID, uuid.New())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyPointsCapsAtBalanceAndTotal(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := newStubOrdersRepo()
	order := seedDraftOrder(repo, userID)

	svc := newTestService(t, repo, &stubCartRepo{}, &stubCouponService{}, &stubPointService{balance: 800})

	updated, err := svc.ApplyPoints(context.Background(), userID, order.ID, 1500)
	if err != nil {
		t.Fatalf("ApplyPoints: %v", err)
	}
	if updated.PointsSpent != 800 {
		t.Fatalf("expected points capped at balance 800, got %d", updated.PointsSpent)
	}
	if updated.TotalAmount != 20000 {
		t.Fatalf("points application must not change total, got %d", updated.TotalAmount)
	}

	// cap at total when balance exceeds it
	repo.orders[order.ID].TotalAmount = 500
	svcRich := newTestService(t, repo, &stubCartRepo{}, &stubCouponService{}, &stubPointService{balance: 10000})
	updated, err = svcRich.ApplyPoints(context.Background(), userID, order.ID, 9999)
	if err != nil {
		t.Fatalf("ApplyPoints: %v", err)
	}
	if updated.PointsSpent != 500 {
		t.Fatalf("expected points capped at total 500, got %d", updated.PointsSpent)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubOrdersRepo(), &stubCartRepo{}, &stubCouponService{}, &stubPointService{})

	_, err := svc.GetOrder(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
