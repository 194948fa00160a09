package stripe

import (
	"context"

	sdk "github.com/stripe/stripe-go/v82"

	"github.com/mithaqq/mithaqq-backend/pkg/payment"
)

const GatewayName = "Stripe"

type gateway struct {
	client *Client
}

// NewGateway adapts the client to payment.Gateway. Create opens a checkout
// session, confirm re-fetches it.
func NewGateway(client *Client) payment.Gateway {
	return &gateway{client: client}
}

func (g *gateway) Name() string { return GatewayName }

func (g *gateway) CreateCharge(ctx context.Context, charge payment.Charge) (*payment.ChargeSession, error) {
	params := SessionParams{
		Metadata:   charge.Metadata,
		SuccessURL: charge.SuccessURL,
		CancelURL:  charge.CancelURL,
	}
	for _, item := range charge.LineItems {
		params.LineItems = append(params.LineItems, LineItem{
			Name:       item.Name,
			UnitAmount: item.UnitPrice,
			Quantity:   item.Quantity,
		})
	}

	session, err := g.client.CreateSession(ctx, params)
	if err != nil {
		return nil, err
	}
	return &payment.ChargeSession{ID: session.ID, RedirectURL: session.URL, Status: string(session.Status)}, nil
}

func (g *gateway) ConfirmCharge(ctx context.Context, sessionID string) (*payment.Confirmation, error) {
	session, err := g.client.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	txID := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		txID = session.PaymentIntent.ID
	}
	return &payment.Confirmation{
		TransactionID: txID,
		Status:        string(session.PaymentStatus),
		Paid:          session.PaymentStatus == sdk.CheckoutSessionPaymentStatusPaid,
		Metadata:      session.Metadata,
	}, nil
}
