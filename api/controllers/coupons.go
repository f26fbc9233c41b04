package controllers

import (
	"net/http"
	"time"

	"github.com/bookhaven/bookstore-backend/api/responses"
	internalcoupons "github.com/bookhaven/bookstore-backend/internal/coupons"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

// ClaimCoupon grants the caller an issuance of the coupon if they are still
// eligible.
func ClaimCoupon(svc internalcoupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		couponID, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issuance, err := svc.IssueIfEligible(r.Context(), couponID, userID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalcoupons.NewIssuanceSummary(*issuance))
	}
}

// ListCoupons returns the caller's coupon wallet, newest first.
func ListCoupons(svc internalcoupons.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, err := svc.ListIssuances(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalcoupons.NewIssuanceList(rows, params.Limit))
	}
}
