package paypal

import sdk "github.com/plutov/paypal/v4"

const StatusCompleted = "COMPLETED"

// captureID returns the first capture id, if the order has been captured.
func captureID(resp *sdk.CaptureOrderResponse) string {
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, c := range unit.Payments.Captures {
			if c.ID != "" {
				return c.ID
			}
		}
	}
	return ""
}

func approveURL(order *sdk.Order) string {
	for _, l := range order.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}
