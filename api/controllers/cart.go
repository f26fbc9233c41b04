package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bookhaven/bookstore-backend/api/responses"
	"github.com/bookhaven/bookstore-backend/api/validators"
	internalcart "github.com/bookhaven/bookstore-backend/internal/cart"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

type addCartItemRequest struct {
	RefType         string    `json:"ref_type" validate:"required,oneof=book_purchase book_rental product"`
	RefID           uuid.UUID `json:"ref_id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=300"`
	Quantity        int       `json:"quantity" validate:"required,gt=0"`
	RentalDays      int       `json:"rental_days" validate:"min=0"`
	ListUnitPrice   int       `json:"list_unit_price" validate:"required,gt=0"`
	SaleUnitPrice   *int      `json:"sale_unit_price"`
	RentalUnitPrice int       `json:"rental_unit_price" validate:"min=0"`
	PointsRate      int       `json:"points_rate" validate:"min=0,max=100"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// GetCart returns the caller's open cart, creating an empty one on first use.
func GetCart(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActiveCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcart.NewCartSummary(*record))
	}
}

// AddCartItem appends a line to the caller's cart and returns the repriced
// cart.
func AddCartItem(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), userID, internalcart.AddItemInput{
			RefType:         req.RefType,
			RefID:           req.RefID,
			Title:           validators.SanitizeString(req.Title, 300),
			Quantity:        req.Quantity,
			RentalDays:      req.RentalDays,
			ListUnitPrice:   req.ListUnitPrice,
			SaleUnitPrice:   req.SaleUnitPrice,
			RentalUnitPrice: req.RentalUnitPrice,
			PointsRate:      req.PointsRate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalcart.NewCartSummary(*record))
	}
}

// UpdateCartItem changes a line's quantity and returns the repriced cart.
func UpdateCartItem(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateQuantity(r.Context(), userID, itemID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcart.NewCartSummary(*record))
	}
}

// RemoveCartItem deletes a line and returns the repriced cart.
func RemoveCartItem(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcart.NewCartSummary(*record))
	}
}
