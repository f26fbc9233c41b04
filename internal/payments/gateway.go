package payments

import (
	"context"

	"github.com/bookhaven/bookstore-backend/pkg/enums"
)

// PrepareRequest is what the provider needs to open a payment session.
type PrepareRequest struct {
	Method  enums.PaymentMethod
	OrderNo string
	Amount  int
}

// PrepareResponse carries the provider-side transaction handle.
type PrepareResponse struct {
	TxID     string
	Provider string
}

// GatewayClient is the boundary to the external payment provider. The
// provider call happens before the approval transaction; the approval
// workflow itself never leaves the database.
type GatewayClient interface {
	Prepare(ctx context.Context, req PrepareRequest) (PrepareResponse, error)
}
