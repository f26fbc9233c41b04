package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internalcoupons "github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	"github.com/bookhaven/bookstore-backend/pkg/pagination"
)

type stubCouponsService struct {
	issue func(ctx context.Context, couponID, userID uuid.UUID, now time.Time) (*models.CouponIssuance, error)
	list  func(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error)
}

func (s *stubCouponsService) WithTx(tx *gorm.DB) internalcoupons.Service {
	return s
}

func (s *stubCouponsService) IssueIfEligible(ctx context.Context, couponID, userID uuid.UUID, now time.Time) (*models.CouponIssuance, error) {
	if s.issue != nil {
		return s.issue(ctx, couponID, userID, now)
	}
	return nil, nil
}

func (s *stubCouponsService) Redeem(ctx context.Context, issuanceID, userID, orderID uuid.UUID, amount int, now time.Time) error {
	return nil
}

func (s *stubCouponsService) GetIssuance(ctx context.Context, issuanceID, userID uuid.UUID) (*models.CouponIssuance, error) {
	return nil, internalcoupons.ErrCouponNotFound
}

func (s *stubCouponsService) ListIssuances(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error) {
	if s.list != nil {
		return s.list(ctx, userID, params)
	}
	return nil, nil
}

func TestClaimCouponGrantsIssuance(t *testing.T) {
	userID := uuid.New()
	couponID := uuid.New()
	svc := &stubCouponsService{
		issue: func(ctx context.Context, incomingCoupon, incomingUser uuid.UUID, now time.Time) (*models.CouponIssuance, error) {
			if incomingCoupon != couponID || incomingUser != userID {
				t.Fatalf("identifiers not forwarded")
			}
			return &models.CouponIssuance{
				ID:        uuid.New(),
				CouponID:  couponID,
				UserID:    userID,
				Status:    enums.CouponIssuanceStatusAvailable,
				IssuedAt:  now,
				ExpiresAt: now.AddDate(0, 1, 0),
				Coupon:    &models.Coupon{ID: couponID, Name: "Welcome 2,000", DiscountAmount: 2000},
			}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/coupons/"+couponID.String()+"/claim", "", userID)
	req = withPathParam(req, "couponID", couponID.String())
	resp := httptest.NewRecorder()
	ClaimCoupon(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data internalcoupons.IssuanceSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Welcome 2,000" || envelope.Data.DiscountAmount != 2000 {
		t.Fatalf("coupon definition not embedded: %+v", envelope.Data)
	}
}

func TestClaimCouponMapsIssueLimit(t *testing.T) {
	userID := uuid.New()
	couponID := uuid.New()
	svc := &stubCouponsService{
		issue: func(ctx context.Context, incomingCoupon, incomingUser uuid.UUID, now time.Time) (*models.CouponIssuance, error) {
			return nil, internalcoupons.ErrIssueLimitReached
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/coupons/"+couponID.String()+"/claim", "", userID)
	req = withPathParam(req, "couponID", couponID.String())
	resp := httptest.NewRecorder()
	ClaimCoupon(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestListCouponsEncodesNextCursor(t *testing.T) {
	userID := uuid.New()
	svc := &stubCouponsService{
		list: func(ctx context.Context, incoming uuid.UUID, params pagination.Params) ([]models.CouponIssuance, error) {
			if params.Limit != 2 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			rows := make([]models.CouponIssuance, 3)
			for i := range rows {
				rows[i] = models.CouponIssuance{
					ID:        uuid.New(),
					CouponID:  uuid.New(),
					UserID:    userID,
					Status:    enums.CouponIssuanceStatusAvailable,
					CreatedAt: time.Now().UTC(),
				}
			}
			return rows, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/coupons?limit=2", "", userID)
	resp := httptest.NewRecorder()
	ListCoupons(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalcoupons.IssuanceList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Issuances) != 2 {
		t.Fatalf("lookahead row not trimmed: %d", len(envelope.Data.Issuances))
	}
	if envelope.Data.NextCursor == "" {
		t.Fatalf("expected next cursor")
	}
}
