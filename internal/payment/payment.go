package payment

import (
	"context"

	"equiprent-backend/internal/domain"
)

type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusPending   Status = "PENDING"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// Result is the outcome of a gateway call. Declines come back as a
// FAILED result with the gateway's message; transport failures come back
// as an error.
type Result struct {
	Status        Status
	TransactionID string
	ErrorMessage  string
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Gateway is the two-phase payment capability the orchestration layer
// depends on. An authorization must be resolved, by capture or
// cancellation, exactly once.
type Gateway interface {
	// ProcessPayment charges the card token in a single shot.
	ProcessPayment(ctx context.Context, amount domain.Money, cardToken, description string) (Result, error)
	// AuthorizePayment places a hold without capturing funds.
	AuthorizePayment(ctx context.Context, amount domain.Money, cardToken, description string) (Result, error)
	// CapturePayment settles a previously placed hold for the given
	// amount, which may be less than the amount held.
	CapturePayment(ctx context.Context, authorizationID string, amount domain.Money) (Result, error)
	// CancelAuthorization releases a hold without charging.
	CancelAuthorization(ctx context.Context, authorizationID string) (Result, error)
	// ProcessRefund returns funds for a settled charge.
	ProcessRefund(ctx context.Context, transactionID string, amount domain.Money) (Result, error)
}
