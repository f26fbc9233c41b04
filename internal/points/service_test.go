package points

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	balances     map[uuid.UUID]*models.PointBalance
	transactions []models.PointTransaction
	lockErr      error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{balances: map[uuid.UUID]*models.PointBalance{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) LockBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	if balance, ok := f.balances[userID]; ok {
		copied := *balance
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.PointBalance, error) {
	return f.LockBalance(ctx, userID)
}

func (f *fakeRepository) SaveBalance(ctx context.Context, balance *models.PointBalance) error {
	copied := *balance
	f.balances[balance.UserID] = &copied
	return nil
}

func (f *fakeRepository) CreateTransaction(ctx context.Context, entry *models.PointTransaction) error {
	f.transactions = append(f.transactions, *entry)
	return nil
}

func (f *fakeRepository) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, error) {
	var out []models.PointTransaction
	for _, entry := range f.transactions {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindExpiredEarnings(ctx context.Context, cutoff time.Time, limit int) ([]models.PointTransaction, error) {
	var out []models.PointTransaction
	for _, entry := range f.transactions {
		if entry.Kind == enums.PointTransactionKindEarn && entry.ExpiresAt != nil && !entry.ExpiresAt.After(cutoff) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeRepository) balanceOf(userID uuid.UUID) int {
	if balance, ok := f.balances[userID]; ok {
		return balance.Balance
	}
	return 0
}

func TestSpendDebitsBalanceAndAppendsLedger(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	userID := uuid.New()
	orderID := uuid.New()
	repo.balances[userID] = &models.PointBalance{UserID: userID, Balance: 1000}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	now := time.Now()
	if err := svc.Spend(context.Background(), userID, 500, orderID, now); err != nil {
		t.Fatalf("Spend: %v", err)
	}

	if got := repo.balanceOf(userID); got != 500 {
		t.Fatalf("expected balance 500, got %d", got)
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(repo.transactions))
	}
	entry := repo.transactions[0]
	if entry.Kind != enums.PointTransactionKindSpend {
		t.Fatalf("expected spend entry, got %s", entry.Kind)
	}
	if entry.AmountSigned != -500 {
		t.Fatalf("expected amount -500, got %d", entry.AmountSigned)
	}
	if entry.OrderID == nil || *entry.OrderID != orderID {
		t.Fatalf("expected order reference on ledger entry")
	}
}

func TestSpendFailsOnInsufficientBalance(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	userID := uuid.New()
	repo.balances[userID] = &models.PointBalance{UserID: userID, Balance: 100}

	svc, _ := NewService(repo)

	err := svc.Spend(context.Background(), userID, 500, uuid.New(), time.Now())
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := repo.balanceOf(userID); got != 100 {
		t.Fatalf("balance must be unchanged after failed spend, got %d", got)
	}
	if len(repo.transactions) != 0 {
		t.Fatalf("no ledger entry may be written on failure")
	}
}

func TestSpendFailsWhenNoBalanceRowExists(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	svc, _ := NewService(repo)

	err := svc.Spend(context.Background(), uuid.New(), 1, uuid.New(), time.Now())
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestEarnCreatesBalanceRowWhenMissing(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	userID := uuid.New()
	svc, _ := NewService(repo)

	if err := svc.Earn(context.Background(), userID, 100, uuid.New(), time.Now()); err != nil {
		t.Fatalf("Earn: %v", err)
	}
	if got := repo.balanceOf(userID); got != 100 {
		t.Fatalf("expected balance 100, got %d", got)
	}
	if repo.transactions[0].AmountSigned != 100 {
		t.Fatalf("expected +100 entry, got %d", repo.transactions[0].AmountSigned)
	}
}

func TestZeroAndNegativeAmountsAreNoOps(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	userID := uuid.New()
	repo.balances[userID] = &models.PointBalance{UserID: userID, Balance: 300}
	svc, _ := NewService(repo)

	for _, amount := range []int{0, -10} {
		if err := svc.Spend(context.Background(), userID, amount, uuid.New(), time.Now()); err != nil {
			t.Fatalf("Spend(%d): %v", amount, err)
		}
		if err := svc.Earn(context.Background(), userID, amount, uuid.New(), time.Now()); err != nil {
			t.Fatalf("Earn(%d): %v", amount, err)
		}
	}

	if got := repo.balanceOf(userID); got != 300 {
		t.Fatalf("balance must be unchanged, got %d", got)
	}
	if len(repo.transactions) != 0 {
		t.Fatalf("zero-amount operations must not write ledger entries")
	}
}

func TestLedgerSumMatchesBalance(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	userID := uuid.New()
	svc, _ := NewService(repo)
	ctx := context.Background()
	now := time.Now()

	steps := []struct {
		earn      int
		spend     int
		wantError bool
	}{
		{earn: 1000},
		{spend: 300},
		{earn: 42},
		{spend: 700},
		// running balance is 42 here; this spend must fail and change nothing
		{spend: 100, wantError: true},
	}

	for _, step := range steps {
		if step.earn > 0 {
			if err := svc.Earn(ctx, userID, step.earn, uuid.Nil, now); err != nil {
				t.Fatalf("Earn(%d): %v", step.earn, err)
			}
		}
		if step.spend > 0 {
			err := svc.Spend(ctx, userID, step.spend, uuid.Nil, now)
			if step.wantError {
				if !errors.Is(err, ErrInsufficientBalance) {
					t.Fatalf("expected insufficient balance for spend %d, got %v", step.spend, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("Spend(%d): %v", step.spend, err)
			}
		}
	}

	sum := 0
	for _, entry := range repo.transactions {
		sum += entry.AmountSigned
	}
	if got := repo.balanceOf(userID); got != sum {
		t.Fatalf("reconciliation broken: balance %d, ledger sum %d", got, sum)
	}
	if got := repo.balanceOf(userID); got < 0 {
		t.Fatalf("balance must never be negative, got %d", got)
	}
}

func TestBalanceReadsZeroWithoutRow(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	svc, _ := NewService(repo)

	got, err := svc.Balance(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected zero balance, got %d", got)
	}
}
