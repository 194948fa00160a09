package stripe

import "github.com/shopspring/decimal"

type LineItem struct {
	Name       string
	UnitAmount decimal.Decimal // major units; sent to Stripe in cents
	Quantity   int
}

type SessionParams struct {
	LineItems  []LineItem
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}
