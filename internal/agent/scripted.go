package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/internal/stream"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

var (
	orderIDPattern   = regexp.MustCompile(`\bLC\d{4,}\b`)
	productIDPattern = regexp.MustCompile(`\b(?:C\d{4,}|\d{2}-\d{2}-\d{4})\b`)
)

// ScriptedGateway is the offline reasoning backend. It follows the same
// workflow a hosted model is prompted with, but every step is computed
// locally against the business operations, so two runs over the same email
// and data produce the same event sequence.
type ScriptedGateway struct {
	ops core.Operations
}

// NewScriptedGateway creates the offline gateway over the business
// operations.
func NewScriptedGateway(ops core.Operations) *ScriptedGateway {
	return &ScriptedGateway{ops: ops}
}

// Process classifies the email, executes the tools the primary intent
// calls for, and streams the structured reply.
func (g *ScriptedGateway) Process(ctx context.Context, emailContent, customerEmail string) (EventStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing email: %w", err)
	}

	s := &script{}
	s.add(stream.Lifecycle(stream.PhaseInit))
	s.add(stream.Lifecycle(stream.PhaseStart))
	s.add(stream.Reasoning("Reading the customer email and identifying the request. "))

	intents := Classify(emailContent)
	if len(intents) == 0 {
		s.add(stream.Reasoning("No intent keywords matched; treating this as a general inquiry. "))
	} else {
		s.add(stream.Reasoning(fmt.Sprintf("Primary intent looks like %q with %s confidence. ", intents[0].Name, intents[0].Confidence)))
	}

	data := responseData{intents: intents}

	customer, found := g.callQueryCustomer(s, customerEmail)
	if found {
		data.customerName = customer.Name
		s.add(stream.Reasoning(fmt.Sprintf("Sender resolved to %s (%s tier). ", customer.Name, customer.VIPLevel)))
	} else {
		s.add(stream.Reasoning("Sender is not in the customer records; continuing without account context. "))
	}

	orderID := orderIDPattern.FindString(emailContent)
	if orderID != "" {
		if order, ok := g.callQueryOrder(s, orderID); ok {
			data.order = &order
		} else {
			s.add(stream.Reasoning(fmt.Sprintf("Order %s was mentioned but does not exist. ", orderID)))
		}
	}

	data.body = g.dispatch(s, emailContent, orderID, &data)

	resp := buildResponse(data)
	for _, chunk := range splitSections(resp) {
		s.add(stream.TextChunk(chunk))
	}
	s.add(stream.Boundary())

	return &sliceStream{events: s.events}, nil
}

// dispatch runs the tools for the primary intent and returns the reply
// body. The logistics view is attached to data as a side effect when the
// intent calls for it.
func (g *ScriptedGateway) dispatch(s *script, emailContent, orderID string, data *responseData) string {
	primary := IntentUnknown
	if len(data.intents) > 0 {
		primary = data.intents[0].Name
	}

	switch primary {
	case IntentInterception:
		if orderID == "" {
			return "We could not find an order number in your message. Please reply with the order number so we can hold the shipment for you."
		}
		reason := interceptReason(emailContent)
		res := g.callIntercept(s, orderID, reason)
		if res.Order.ID != "" {
			data.order = &res.Order
		}
		if res.Success() {
			s.add(stream.Reasoning(fmt.Sprintf("Interception in effect for %s; confirming to the customer. ", orderID)))
			return res.Message + ". Our warehouse team will hold the shipment and a service representative will follow up to complete the requested change."
		}
		s.add(stream.Reasoning("Interception was not possible; explaining why. "))
		return res.Message + ". Once a parcel has left our warehouse we can no longer modify it, but we can assist with a return after delivery."

	case IntentLogistics:
		if orderID == "" {
			return "Please share your order number and we will send the latest tracking information right away."
		}
		info, ok := g.callQueryLogistics(s, orderID)
		if !ok {
			return fmt.Sprintf("We could not find order %s in our system. Please double-check the order number.", orderID)
		}
		data.logistics = &info
		return describeLogistics(info)

	case IntentBatchCode:
		productID := productIDPattern.FindString(emailContent)
		if productID == "" {
			return "Please share the product number and we will look up the batch and date code information for you."
		}
		bc, ok := g.callQueryBatchCode(s, productID)
		if !ok {
			return fmt.Sprintf("We have no batch code record for product %s. Our quality team will investigate and reply separately.", productID)
		}
		return fmt.Sprintf("Product %s ships from batch %s with date code %s, produced on %s.", bc.ProductID, bc.BatchCode, bc.DateCode, bc.ProductionDate)

	case IntentDocument, IntentInvoice:
		if orderID == "" {
			return "Please share the order number and we will prepare the requested documents."
		}
		docType := "packing_list"
		if strings.Contains(strings.ToLower(emailContent), "invoice") {
			docType = "commercial_invoice"
		}
		res := g.callDocumentRequest(s, orderID, docType)
		if !res.Success {
			return res.Message + "."
		}
		return res.Message + ":\n\n" + res.Document

	default:
		return g.callGeneralInquiry(s, emailContent)
	}
}

func (g *ScriptedGateway) callQueryCustomer(s *script, email string) (models.Customer, bool) {
	s.tool("query_customer", map[string]string{"email": email})
	return g.ops.Customer(email)
}

func (g *ScriptedGateway) callQueryOrder(s *script, orderID string) (models.Order, bool) {
	s.tool("query_order", map[string]string{"order_id": orderID})
	return g.ops.Order(orderID)
}

func (g *ScriptedGateway) callIntercept(s *script, orderID, reason string) core.InterceptResult {
	s.tool("intercept_shipment", map[string]string{"order_id": orderID, "reason": reason})
	return g.ops.InterceptShipment(orderID, reason)
}

func (g *ScriptedGateway) callQueryLogistics(s *script, orderID string) (core.LogisticsInfo, bool) {
	s.tool("query_logistics", map[string]string{"order_id": orderID})
	return g.ops.LogisticsStatus(orderID)
}

func (g *ScriptedGateway) callQueryBatchCode(s *script, productID string) (models.BatchCode, bool) {
	s.tool("query_batch_code", map[string]string{"product_id": productID})
	return g.ops.BatchCode(productID)
}

func (g *ScriptedGateway) callDocumentRequest(s *script, orderID, docType string) core.DocumentResult {
	s.tool("process_document_request", map[string]string{"order_id": orderID, "doc_type": docType})
	return g.ops.DocumentRequest(orderID, docType)
}

func (g *ScriptedGateway) callGeneralInquiry(s *script, content string) string {
	s.tool("handle_general_inquiry", map[string]string{"content": truncate(content, 200)})
	return g.ops.GeneralInquiry(content)
}

// script accumulates the event sequence and hands out sequential
// invocation ids.
type script struct {
	events []stream.Event
	seq    int
}

func (s *script) add(e stream.Event) {
	s.events = append(s.events, e)
}

func (s *script) tool(name string, input map[string]string) {
	s.seq++
	s.add(stream.ToolUse(name, input, fmt.Sprintf("inv-%04d", s.seq)))
}

// interceptReason picks the reason phrase matching the customer's request.
func interceptReason(emailContent string) string {
	lower := strings.ToLower(emailContent)
	switch {
	case strings.Contains(lower, "address"):
		return "change shipping address"
	case strings.Contains(lower, "cancel"):
		return "cancel order"
	case strings.Contains(lower, "merge"):
		return "merge orders"
	default:
		return "modify order details"
	}
}

func describeLogistics(info core.LogisticsInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s is currently %s.", info.OrderID, info.ShippingStatus)
	if info.TrackingNumber != "" {
		fmt.Fprintf(&b, " The tracking number is %s.", info.TrackingNumber)
	}
	if info.EstimatedDelivery != "" {
		fmt.Fprintf(&b, " Estimated delivery is %s.", info.EstimatedDelivery)
	}
	if len(info.History) > 0 {
		b.WriteString("\n\nTracking history:\n")
		for _, h := range info.History {
			fmt.Fprintf(&b, "- %s  %s (%s)\n", h.Time, h.Status, h.Location)
		}
	}
	return b.String()
}

// splitSections chunks the rendered reply on section headers so the
// transcript shows it arriving incrementally. The concatenation of the
// chunks is the full reply.
func splitSections(resp string) []string {
	parts := strings.SplitAfter(resp, "\n\n")
	var chunks []string
	for _, p := range parts {
		if p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
