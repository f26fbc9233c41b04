package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/api/responses"
	"github.com/bookhaven/bookstore-backend/api/validators"
	internalorders "github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

type placeOrderRequest struct {
	CartItemIDs    []uuid.UUID `json:"cart_item_ids"`
	ShippingAmount int         `json:"shipping_amount" validate:"min=0"`
}

type applyCouponRequest struct {
	IssuanceID uuid.UUID `json:"issuance_id" validate:"required"`
}

type applyPointsRequest struct {
	Amount int `json:"amount" validate:"min=0"`
}

// PlaceOrder converts the caller's selected cart lines into a draft order.
func PlaceOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceFromCart(r.Context(), userID, internalorders.PlaceFromCartInput{
			CartItemIDs:    req.CartItemIDs,
			ShippingAmount: req.ShippingAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderSummary(*order))
	}
}

// GetOrder returns one order owned by the caller, items included.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderSummary(*order))
	}
}

// ListOrders returns the caller's orders, newest first, cursor paginated.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListOrders(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderList(rows, params.Limit))
	}
}

// ApplyCoupon attaches an issuance to the draft order and recomputes totals.
func ApplyCoupon(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req applyCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ApplyCoupon(r.Context(), userID, orderID, req.IssuanceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderSummary(*order))
	}
}

// ApplyPoints reserves loyalty points against the draft order.
func ApplyPoints(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req applyPointsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ApplyPoints(r.Context(), userID, orderID, req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderSummary(*order))
	}
}
