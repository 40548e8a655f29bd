package agent

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// responseData collects everything the structured reply is rendered from.
type responseData struct {
	intents      []Intent
	order        *models.Order
	logistics    *core.LogisticsInfo
	customerName string
	body         string
}

// buildResponse renders the three-section structured reply: intent
// classification, logistics/order status, and the professional email body.
func buildResponse(d responseData) string {
	var b strings.Builder

	b.WriteString("## Intent Classification\n")
	if len(d.intents) == 0 {
		b.WriteString("- No intents identified\n")
	}
	for i, intent := range d.intents {
		if i == 0 {
			fmt.Fprintf(&b, "- Primary Intent: %s\n", intent.Name)
		} else {
			fmt.Fprintf(&b, "- Secondary Intent: %s\n", intent.Name)
		}
		fmt.Fprintf(&b, "- Confidence: %s\n", intent.Confidence)
	}
	b.WriteString("\n")

	if d.order != nil || hasIntent(d.intents, IntentLogistics) || hasIntent(d.intents, IntentInterception) {
		b.WriteString("## Logistics/Order Status\n")
		if d.order == nil {
			b.WriteString("- No order information available\n")
		} else {
			fmt.Fprintf(&b, "- Order ID: %s\n", d.order.ID)
			fmt.Fprintf(&b, "- Current Status: %s\n", d.order.Status)
			fmt.Fprintf(&b, "- Shipping Status: %s\n", d.order.ShippingStatus)
			if d.order.TrackingNumber != "" {
				fmt.Fprintf(&b, "- Tracking Number: %s\n", d.order.TrackingNumber)
			}
			if d.logistics != nil && d.logistics.EstimatedDelivery != "" {
				fmt.Fprintf(&b, "- Estimated Delivery: %s\n", d.logistics.EstimatedDelivery)
			}
			if d.order.ShippingStatus == models.ShippingIntercepted {
				reason := d.order.InterceptReason
				if reason == "" {
					reason = "Reason not specified"
				}
				fmt.Fprintf(&b, "- Actions Taken: Order intercepted - %s\n", reason)
			}
			if d.order.TotalAmount > 0 {
				fmt.Fprintf(&b, "- Order Value: %.2f %s\n", d.order.TotalAmount, d.order.Currency)
			}
		}
		b.WriteString("\n")
	}

	name := d.customerName
	if name == "" {
		name = "Valued Customer"
	}
	b.WriteString("## Professional Email Reply\n\n")
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	b.WriteString("Thank you for contacting LCSC Electronics. ")
	if d.order != nil {
		fmt.Fprintf(&b, "Regarding your inquiry about order %s, ", d.order.ID)
	}
	b.WriteString("we have processed your request and are pleased to provide the following information:\n\n")
	b.WriteString(d.body)
	b.WriteString("\n\n")
	b.WriteString("If you have any further questions or need additional assistance, please don't hesitate to contact us. ")
	b.WriteString("We appreciate your business and look forward to serving you.\n\n")
	b.WriteString("Best regards,\n")
	b.WriteString("LCSC Electronics Customer Service Team\n")
	b.WriteString("Email: service@lcsc.com\n")
	b.WriteString("Website: https://lcsc.com\n")

	return b.String()
}

func hasIntent(intents []Intent, name string) bool {
	for _, in := range intents {
		if in.Name == name {
			return true
		}
	}
	return false
}
