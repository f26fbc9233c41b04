package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	internalcart "github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/pkg/db/models"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

type stubCartService struct {
	getActive      func(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	addItem        func(ctx context.Context, userID uuid.UUID, input internalcart.AddItemInput) (*models.CartRecord, error)
	updateQuantity func(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	removeItem     func(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error)
}

func (s *stubCartService) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if s.getActive != nil {
		return s.getActive(ctx, userID)
	}
	return nil, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input internalcart.AddItemInput) (*models.CartRecord, error) {
	if s.addItem != nil {
		return s.addItem(ctx, userID, input)
	}
	return nil, nil
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if s.updateQuantity != nil {
		return s.updateQuantity(ctx, userID, itemID, quantity)
	}
	return nil, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartRecord, error) {
	if s.removeItem != nil {
		return s.removeItem(ctx, userID, itemID)
	}
	return nil, nil
}

func TestGetCartReturnsTotalsProjection(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{
		getActive: func(ctx context.Context, incoming uuid.UUID) (*models.CartRecord, error) {
			if incoming != userID {
				t.Fatalf("unexpected user id %s", incoming)
			}
			return &models.CartRecord{
				ID:             uuid.New(),
				UserID:         userID,
				Status:         enums.CartStatusActive,
				ItemCount:      2,
				SubtotalAmount: 30000,
				TotalAmount:    30000,
				PointsEarnable: 300,
				Items: []models.CartItem{
					{ID: uuid.New(), RefType: enums.RefTypeBookPurchase, Title: "The Left Hand of Darkness", Quantity: 2, ListUnitPrice: 15000, Selected: true},
				},
			}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/cart", "", userID)
	resp := httptest.NewRecorder()
	GetCart(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalcart.CartSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalAmount != 30000 || envelope.Data.PointsEarnable != 300 {
		t.Fatalf("unexpected totals %+v", envelope.Data)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Title != "The Left Hand of Darkness" {
		t.Fatalf("unexpected items %+v", envelope.Data.Items)
	}
}

func TestAddCartItemForwardsLine(t *testing.T) {
	userID := uuid.New()
	refID := uuid.New()
	svc := &stubCartService{
		addItem: func(ctx context.Context, incoming uuid.UUID, input internalcart.AddItemInput) (*models.CartRecord, error) {
			if input.RefType != "book_rental" || input.RefID != refID {
				t.Fatalf("line ref not forwarded: %+v", input)
			}
			if input.RentalDays != 14 || input.RentalUnitPrice != 4000 {
				t.Fatalf("rental terms not forwarded: %+v", input)
			}
			return &models.CartRecord{ID: uuid.New(), UserID: userID, ItemCount: 1, RentalAmount: 4000, TotalAmount: 4000}, nil
		},
	}

	body := `{"ref_type":"book_rental","ref_id":"` + refID.String() + `","title":"Snow Crash","quantity":1,"rental_days":14,"list_unit_price":18000,"rental_unit_price":4000,"points_rate":0}`
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", body, userID)
	resp := httptest.NewRecorder()
	AddCartItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddCartItemRejectsZeroQuantity(t *testing.T) {
	userID := uuid.New()
	refID := uuid.New()

	body := `{"ref_type":"book_purchase","ref_id":"` + refID.String() + `","title":"Dune","quantity":0,"list_unit_price":15000}`
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", body, userID)
	resp := httptest.NewRecorder()
	AddCartItem(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateCartItemForwardsQuantity(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()
	svc := &stubCartService{
		updateQuantity: func(ctx context.Context, incoming, incomingItem uuid.UUID, quantity int) (*models.CartRecord, error) {
			if incomingItem != itemID || quantity != 3 {
				t.Fatalf("update not forwarded: item %s quantity %d", incomingItem, quantity)
			}
			return &models.CartRecord{ID: uuid.New(), UserID: userID, ItemCount: 3}, nil
		},
	}

	req := authedRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), `{"quantity":3}`, userID)
	req = withPathParam(req, "itemID", itemID.String())
	resp := httptest.NewRecorder()
	UpdateCartItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRemoveCartItemReturnsRepricedCart(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()
	svc := &stubCartService{
		removeItem: func(ctx context.Context, incoming, incomingItem uuid.UUID) (*models.CartRecord, error) {
			if incomingItem != itemID {
				t.Fatalf("unexpected item id %s", incomingItem)
			}
			return &models.CartRecord{ID: uuid.New(), UserID: userID, ItemCount: 0, TotalAmount: 0}, nil
		},
	}

	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), "", userID)
	req = withPathParam(req, "itemID", itemID.String())
	resp := httptest.NewRecorder()
	RemoveCartItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalcart.CartSummary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", envelope.Data)
	}
}
