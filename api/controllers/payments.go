package controllers

import (
	"net/http"

	"github.com/bookhaven/bookstore-backend/api/responses"
	"github.com/bookhaven/bookstore-backend/api/validators"
	internalorders "github.com/bookhaven/bookstore-backend/internal/orders"
	"github.com/bookhaven/bookstore-backend/internal/payments"
	"github.com/bookhaven/bookstore-backend/pkg/enums"
	pkgerrors "github.com/bookhaven/bookstore-backend/pkg/errors"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

type paymentReadyRequest struct {
	Method string `json:"method" validate:"required"`
}

type paymentApproveRequest struct {
	Method string `json:"method" validate:"required"`
	TxID   string `json:"tx_id" validate:"required"`
	Amount int    `json:"amount" validate:"gt=0"`
}

type paymentApprovePayload struct {
	Order   internalorders.OrderSummary `json:"order"`
	Payment payments.AttemptSummary     `json:"payment"`
}

// PaymentReady opens a provider session for a draft order so the client can
// start the checkout handshake.
func PaymentReady(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req paymentReadyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method"))
			return
		}

		result, err := svc.Ready(r.Context(), userID, payments.ReadyInput{
			OrderID: orderID,
			Method:  method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payments.NewAttemptSummary(*result.Payment))
	}
}

// PaymentApprove settles the order atomically: coupon redemption, points
// movement, the payment record, and the status flip commit together.
func PaymentApprove(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req paymentApproveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method"))
			return
		}

		result, err := svc.Approve(r.Context(), userID, payments.ApproveInput{
			OrderID:          orderID,
			Method:           method,
			TxID:             req.TxID,
			AuthorizedAmount: req.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentApprovePayload{
			Order:   internalorders.NewOrderSummary(*result.Order),
			Payment: payments.NewAttemptSummary(*result.Payment),
		})
	}
}

// ListPaymentAttempts returns the attempt log for one of the caller's orders.
func ListPaymentAttempts(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, err := svc.ListAttempts(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments.NewAttemptList(rows))
	}
}
