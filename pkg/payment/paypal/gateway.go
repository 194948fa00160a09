package paypal

import (
	"context"

	"github.com/mithaqq/mithaqq-backend/pkg/payment"
)

const GatewayName = "PayPal"

type gateway struct {
	client *Client
}

// NewGateway adapts the client to payment.Gateway. Create opens an order,
// confirm captures it.
func NewGateway(client *Client) payment.Gateway {
	return &gateway{client: client}
}

func (g *gateway) Name() string { return GatewayName }

func (g *gateway) CreateCharge(ctx context.Context, charge payment.Charge) (*payment.ChargeSession, error) {
	order, err := g.client.CreateOrder(ctx, charge.Amount)
	if err != nil {
		return nil, err
	}
	return &payment.ChargeSession{ID: order.ID, RedirectURL: approveURL(order), Status: order.Status}, nil
}

func (g *gateway) ConfirmCharge(ctx context.Context, orderID string) (*payment.Confirmation, error) {
	captured, err := g.client.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	txID := captureID(captured)
	if txID == "" {
		txID = captured.ID
	}
	return &payment.Confirmation{
		TransactionID: txID,
		Status:        captured.Status,
		Paid:          captured.Status == StatusCompleted,
	}, nil
}
