package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	internalorders "github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/internal/payments"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

type stubPaymentsService struct {
	ready        func(ctx context.Context, userID uuid.UUID, input payments.ReadyInput) (*payments.ReadyResult, error)
	approve      func(ctx context.Context, userID uuid.UUID, input payments.ApproveInput) (*payments.ApproveResult, error)
	listAttempts func(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderPayment, error)
}

func (s *stubPaymentsService) Ready(ctx context.Context, userID uuid.UUID, input payments.ReadyInput) (*payments.ReadyResult, error) {
	if s.ready != nil {
		return s.ready(ctx, userID, input)
	}
	return nil, nil
}

func (s *stubPaymentsService) Approve(ctx context.Context, userID uuid.UUID, input payments.ApproveInput) (*payments.ApproveResult, error) {
	if s.approve != nil {
		return s.approve(ctx, userID, input)
	}
	return nil, nil
}

func (s *stubPaymentsService) ListAttempts(ctx context.Context, userID, orderID uuid.UUID) ([]models.OrderPayment, error) {
	if s.listAttempts != nil {
		return s.listAttempts(ctx, userID, orderID)
	}
	return nil, nil
}

func TestPaymentReadyOpensSession(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubPaymentsService{
		ready: func(ctx context.Context, incoming uuid.UUID, input payments.ReadyInput) (*payments.ReadyResult, error) {
			if incoming != userID {
				t.Fatalf("unexpected user id %s", incoming)
			}
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if input.Method != enums.PaymentMethodKakaoPay {
				t.Fatalf("unexpected method %s", input.Method)
			}
			return &payments.ReadyResult{Payment: &models.OrderPayment{
				ID:      uuid.New(),
				OrderID: orderID,
				Method:  enums.PaymentMethodKakaoPay,
				TxID:    "T-100",
				Amount:  23000,
				Status:  enums.PaymentAttemptStatusReady,
			}}, nil
		},
	}

	body := `{"method":"kakaopay"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/ready", body, userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	PaymentReady(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payments.AttemptSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TxID != "T-100" || envelope.Data.Status != "ready" {
		t.Fatalf("unexpected attempt payload %+v", envelope.Data)
	}
}

func TestPaymentReadyRejectsUnknownMethod(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	body := `{"method":"carrier_billing"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/ready", body, userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	PaymentReady(&stubPaymentsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentApproveReturnsSettledOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	now := time.Now().UTC()
	svc := &stubPaymentsService{
		approve: func(ctx context.Context, incoming uuid.UUID, input payments.ApproveInput) (*payments.ApproveResult, error) {
			if input.TxID != "T-100" {
				t.Fatalf("unexpected tx id %q", input.TxID)
			}
			if input.AuthorizedAmount != 23000 {
				t.Fatalf("unexpected amount %d", input.AuthorizedAmount)
			}
			return &payments.ApproveResult{
				Order: &models.Order{
					ID:            orderID,
					PaymentStatus: enums.OrderPaymentStatusPaid,
					TotalAmount:   23000,
					PaidAt:        &now,
				},
				Payment: &models.OrderPayment{
					OrderID: orderID,
					TxID:    "T-100",
					Status:  enums.PaymentAttemptStatusApproved,
				},
			}, nil
		},
	}

	body := `{"method":"tosspay","tx_id":"T-100","amount":23000}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/approve", body, userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	PaymentApprove(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data paymentApprovePayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.PaymentStatus != enums.OrderPaymentStatusPaid {
		t.Fatalf("order not marked paid: %+v", envelope.Data.Order)
	}
	if envelope.Data.Payment.Status != "approved" {
		t.Fatalf("attempt not approved: %+v", envelope.Data.Payment)
	}
}

func TestPaymentApproveMapsStateConflict(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubPaymentsService{
		approve: func(ctx context.Context, incoming uuid.UUID, input payments.ApproveInput) (*payments.ApproveResult, error) {
			return nil, internalorders.ErrOrderNotReadyForPayment
		},
	}

	body := `{"method":"tosspay","tx_id":"T-100","amount":23000}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/approve", body, userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	PaymentApprove(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestPaymentApproveRejectsMissingTxID(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	body := `{"method":"tosspay","amount":23000}`
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/approve", body, userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	PaymentApprove(&stubPaymentsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListPaymentAttemptsReturnsLog(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubPaymentsService{
		listAttempts: func(ctx context.Context, incoming, incomingOrder uuid.UUID) ([]models.OrderPayment, error) {
			if incomingOrder != orderID {
				t.Fatalf("unexpected order id %s", incomingOrder)
			}
			return []models.OrderPayment{
				{OrderID: orderID, TxID: "T-2", Status: enums.PaymentAttemptStatusApproved},
				{OrderID: orderID, TxID: "T-1", Status: enums.PaymentAttemptStatusFailed},
			}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/payments", "", userID)
	req = withPathParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	ListPaymentAttempts(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data payments.AttemptList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Attempts) != 2 || envelope.Data.Attempts[0].TxID != "T-2" {
		t.Fatalf("unexpected attempt log %+v", envelope.Data.Attempts)
	}
}
