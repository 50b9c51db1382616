package payment

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"equiprent-backend/internal/domain"
)

// OmiseGateway adapts the Omise charge API to the Gateway port.
// Authorizations are uncaptured charges; captures and reversals resolve
// them by charge id.
type OmiseGateway struct {
	client   *omise.Client
	currency string
}

func NewOmiseGateway(publicKey, secretKey, currency string) (*OmiseGateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	return &OmiseGateway{client: client, currency: currency}, nil
}

func (g *OmiseGateway) ProcessPayment(ctx context.Context, amount domain.Money, cardToken, description string) (Result, error) {
	charge := &omise.Charge{}
	err := g.client.Do(charge, &operations.CreateCharge{
		Amount:      amount.Cents(),
		Currency:    g.currency,
		Card:        cardToken,
		Description: description,
	})
	if err != nil {
		return Result{}, fmt.Errorf("omise charge: %w", err)
	}
	return chargeResult(charge), nil
}

func (g *OmiseGateway) AuthorizePayment(ctx context.Context, amount domain.Money, cardToken, description string) (Result, error) {
	charge := &omise.Charge{}
	err := g.client.Do(charge, &operations.CreateCharge{
		Amount:      amount.Cents(),
		Currency:    g.currency,
		Card:        cardToken,
		Description: description,
		DontCapture: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("omise authorize: %w", err)
	}
	return chargeResult(charge), nil
}

func (g *OmiseGateway) CapturePayment(ctx context.Context, authorizationID string, amount domain.Money) (Result, error) {
	charge := &omise.Charge{}
	err := g.client.Do(charge, &operations.CaptureCharge{
		ChargeID:      authorizationID,
		CaptureAmount: amount.Cents(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("omise capture: %w", err)
	}
	return chargeResult(charge), nil
}

func (g *OmiseGateway) CancelAuthorization(ctx context.Context, authorizationID string) (Result, error) {
	charge := &omise.Charge{}
	err := g.client.Do(charge, &operations.ReverseCharge{ChargeID: authorizationID})
	if err != nil {
		return Result{}, fmt.Errorf("omise reverse: %w", err)
	}
	if charge.Reversed {
		return Result{Status: StatusCancelled, TransactionID: charge.ID}, nil
	}
	return Result{Status: StatusFailed, TransactionID: charge.ID, ErrorMessage: failureMessage(charge)}, nil
}

func (g *OmiseGateway) ProcessRefund(ctx context.Context, transactionID string, amount domain.Money) (Result, error) {
	refund := &omise.Refund{}
	err := g.client.Do(refund, &operations.CreateRefund{
		ChargeID: transactionID,
		Amount:   amount.Cents(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("omise refund: %w", err)
	}
	return Result{Status: StatusRefunded, TransactionID: refund.ID}, nil
}

func chargeResult(charge *omise.Charge) Result {
	switch charge.Status {
	case omise.ChargeSuccessful:
		return Result{Status: StatusSuccess, TransactionID: charge.ID}
	case omise.ChargePending:
		return Result{Status: StatusPending, TransactionID: charge.ID}
	default:
		return Result{Status: StatusFailed, TransactionID: charge.ID, ErrorMessage: failureMessage(charge)}
	}
}

func failureMessage(charge *omise.Charge) string {
	if charge.FailureMessage != nil {
		return *charge.FailureMessage
	}
	return ""
}
