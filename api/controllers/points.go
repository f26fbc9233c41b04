package controllers

import (
	"net/http"

	"github.com/bookhaven/bookstore-backend/api/responses"
	internalpoints "github.com/bookhaven/bookstore-backend/internal/points"
	"github.com/bookhaven/bookstore-backend/pkg/logger"
)

// PointsBalance returns the caller's current point balance.
func PointsBalance(svc internalpoints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalpoints.BalanceSummary{Balance: balance})
	}
}

// PointsHistory returns the caller's points ledger, newest first.
func PointsHistory(svc internalpoints.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, err := svc.History(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalpoints.NewTransactionList(rows, params.Limit))
	}
}
