package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// InterceptOutcome classifies the result of an interception attempt.
type InterceptOutcome string

const (
	// InterceptApplied: the order was eligible and is now intercepted.
	InterceptApplied InterceptOutcome = "applied"
	// InterceptAlreadyDone: the order was already intercepted; success, no-op.
	InterceptAlreadyDone InterceptOutcome = "already_intercepted"
	// InterceptBlocked: the order has shipped and cannot be intercepted.
	InterceptBlocked InterceptOutcome = "blocked"
	// InterceptNotFound: no such order.
	InterceptNotFound InterceptOutcome = "not_found"
)

// InterceptResult is the structured outcome of InterceptShipment.
type InterceptResult struct {
	Outcome InterceptOutcome `json:"outcome"`
	Message string           `json:"message"`
	Order   models.Order     `json:"order,omitempty"`
}

// Success reports whether the interception is in effect (applied now or
// previously).
func (r InterceptResult) Success() bool {
	return r.Outcome == InterceptApplied || r.Outcome == InterceptAlreadyDone
}

// TrackingEntry is one hop in an order's tracking history.
type TrackingEntry struct {
	Time     string `json:"time"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Reason   string `json:"reason,omitempty"`
}

// LogisticsInfo is the derived logistics view of an order.
type LogisticsInfo struct {
	OrderID           string                `json:"order_id"`
	ShippingStatus    models.ShippingStatus `json:"shipping_status"`
	TrackingNumber    string                `json:"tracking_number,omitempty"`
	ShippingAddress   string                `json:"shipping_address"`
	EstimatedDelivery string                `json:"estimated_delivery"`
	InterceptReason   string                `json:"intercept_reason,omitempty"`
	InterceptTime     string                `json:"intercept_time,omitempty"`
	History           []TrackingEntry       `json:"tracking_history,omitempty"`
}

// InventoryStatus is the stock view of a product.
type InventoryStatus struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockStatus   string `json:"stock_status"`
	StockQuantity int    `json:"stock_quantity"`
	MinOrderQty   int    `json:"min_order_qty"`
	LeadTime      string `json:"lead_time"`
	LastUpdated   string `json:"last_updated"`
}

// DocumentResult is the outcome of a document or invoice request.
type DocumentResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Document string `json:"document,omitempty"`
}

// Operations is the set of business capabilities exposed to the agent.
// Lookups return found/not-found results, never errors, so the capability
// layer can phrase a not-found as natural language.
type Operations interface {
	Order(id string) (models.Order, bool)
	Customer(email string) (models.Customer, bool)
	OrdersByCustomer(email string) []models.Order
	Product(id string) (models.Product, bool)
	Inventory(productID string) (InventoryStatus, bool)
	InterceptShipment(orderID, reason string) InterceptResult
	LogisticsStatus(orderID string) (LogisticsInfo, bool)
	BatchCode(productID string) (models.BatchCode, bool)
	DocumentRequest(orderID, docType string) DocumentResult
	ShippedInvoice(orderID string) DocumentResult
	GeneralInquiry(content string) string
}

// EventLogger receives business events for the observability log. A nil
// logger disables event recording.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

type operations struct {
	store   Store
	overlay *Overlay
	log     EventLogger
	now     func() time.Time
}

// NewOperations creates the business operations over a store and overlay.
// log may be nil when event logging is disabled.
func NewOperations(store Store, overlay *Overlay, log EventLogger) Operations {
	return &operations{store: store, overlay: overlay, log: log, now: time.Now}
}

// newOperations allows tests to inject a clock.
func newOperations(store Store, overlay *Overlay, log EventLogger, now func() time.Time) Operations {
	return &operations{store: store, overlay: overlay, log: log, now: now}
}

// logTool records one tool.invoked event per externally invoked operation.
// Internal lookups between operations bypass it so the count matches the
// caller's tool calls.
func (ops *operations) logTool(tool string, data map[string]any) {
	if ops.log == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["tool"] = tool
	_ = ops.log.LogEvent("tool.invoked", data)
}

// Order returns the order with the runtime overlay applied.
func (ops *operations) Order(id string) (models.Order, bool) {
	ops.logTool("query_order", map[string]any{"order_id": id})
	return ops.effectiveOrder(id)
}

func (ops *operations) effectiveOrder(id string) (models.Order, bool) {
	o, ok := ops.store.Order(id)
	if !ok {
		return models.Order{}, false
	}
	return ops.overlay.Apply(o), true
}

func (ops *operations) Customer(email string) (models.Customer, bool) {
	ops.logTool("query_customer", map[string]any{"email": email})
	return ops.store.Customer(email)
}

func (ops *operations) OrdersByCustomer(email string) []models.Order {
	ops.logTool("query_customer_orders", map[string]any{"email": email})
	orders := ops.store.OrdersByCustomer(email)
	for i, o := range orders {
		orders[i] = ops.overlay.Apply(o)
	}
	return orders
}

func (ops *operations) Product(id string) (models.Product, bool) {
	ops.logTool("query_product", map[string]any{"product_id": id})
	return ops.store.Product(id)
}

func (ops *operations) Inventory(productID string) (InventoryStatus, bool) {
	ops.logTool("query_inventory", map[string]any{"product_id": productID})
	p, ok := ops.store.Product(productID)
	if !ok {
		return InventoryStatus{}, false
	}
	return InventoryStatus{
		ProductID:     p.ID,
		ProductName:   p.Name,
		StockStatus:   p.StockStatus,
		StockQuantity: p.StockQuantity,
		MinOrderQty:   p.MinOrderQty,
		LeadTime:      p.LeadTime,
		LastUpdated:   ops.now().Format("2006-01-02 15:04:05"),
	}, true
}

// InterceptShipment applies the three-way eligibility branch:
// shipped/in-transit/delivered orders are blocked, already-intercepted
// orders succeed without mutation, and everything else (including
// unrecognized status values) is intercepted by writing to the overlay.
func (ops *operations) InterceptShipment(orderID, reason string) InterceptResult {
	ops.logTool("intercept_shipment", map[string]any{"order_id": orderID, "reason": reason})

	base, ok := ops.store.Order(orderID)
	if !ok {
		return InterceptResult{
			Outcome: InterceptNotFound,
			Message: fmt.Sprintf("Order %s does not exist", orderID),
		}
	}

	effective := ops.overlay.Apply(base)

	if effective.ShippingStatus.Terminal() {
		return InterceptResult{
			Outcome: InterceptBlocked,
			Message: fmt.Sprintf("Order %s has already been shipped and cannot be intercepted", orderID),
			Order:   effective,
		}
	}

	if effective.ShippingStatus == models.ShippingIntercepted {
		return InterceptResult{
			Outcome: InterceptAlreadyDone,
			Message: fmt.Sprintf("Order %s is already intercepted", orderID),
			Order:   effective,
		}
	}

	ops.overlay.Set(orderID, OrderOverride{
		ShippingStatus:  models.ShippingIntercepted,
		InterceptReason: reason,
		InterceptTime:   ops.now(),
	})

	if ops.log != nil {
		_ = ops.log.LogEvent("order.intercepted", map[string]any{
			"order_id": orderID,
			"reason":   reason,
		})
	}

	return InterceptResult{
		Outcome: InterceptApplied,
		Message: fmt.Sprintf("Order %s has been successfully intercepted", orderID),
		Order:   ops.overlay.Apply(base),
	}
}

// LogisticsStatus derives the logistics view, including a deterministic
// tracking history whose shape depends only on the effective shipping
// status. The same status always reproduces the same history.
func (ops *operations) LogisticsStatus(orderID string) (LogisticsInfo, bool) {
	ops.logTool("query_logistics", map[string]any{"order_id": orderID})

	order, ok := ops.effectiveOrder(orderID)
	if !ok {
		return LogisticsInfo{}, false
	}

	info := LogisticsInfo{
		OrderID:           order.ID,
		ShippingStatus:    order.ShippingStatus,
		TrackingNumber:    order.TrackingNumber,
		ShippingAddress:   order.ShippingAddress,
		EstimatedDelivery: ops.now().AddDate(0, 0, 3).Format("2006-01-02"),
	}

	if order.ShippingStatus == models.ShippingIntercepted {
		info.InterceptReason = order.InterceptReason
		if order.InterceptTime != nil {
			info.InterceptTime = order.InterceptTime.Format("2006-01-02 15:04:05")
		}
	}

	switch order.ShippingStatus {
	case models.ShippingInTransit:
		info.History = []TrackingEntry{
			{Time: "2024-07-01 10:00", Status: "Shipped", Location: "Shenzhen Warehouse"},
			{Time: "2024-07-01 18:00", Status: "In Transit", Location: "Shenzhen Distribution Center"},
			{Time: "2024-07-02 08:00", Status: "In Transit", Location: "Guangzhou Distribution Center"},
		}
	case models.ShippingPreparing:
		info.History = []TrackingEntry{
			{Time: "2024-07-02 09:15", Status: "Order Confirmed", Location: "LCSC System"},
			{Time: "2024-07-02 14:30", Status: "Preparing", Location: "Madrid Warehouse"},
		}
	case models.ShippingIntercepted:
		info.History = []TrackingEntry{
			{Time: info.InterceptTime, Status: "Intercepted", Location: "Warehouse", Reason: order.InterceptReason},
		}
	}

	return info, true
}

func (ops *operations) BatchCode(productID string) (models.BatchCode, bool) {
	ops.logTool("query_batch_code", map[string]any{"product_id": productID})
	return ops.store.BatchCode(productID)
}

// DocumentRequest fills the requested document template for an order.
// Invoice requests for orders that have already shipped are routed through
// the shipped-invoice path, which produces a customs-ready commercial
// invoice instead.
func (ops *operations) DocumentRequest(orderID, docType string) DocumentResult {
	ops.logTool("process_document_request", map[string]any{"order_id": orderID, "doc_type": docType})

	order, ok := ops.effectiveOrder(orderID)
	if !ok {
		return DocumentResult{Message: fmt.Sprintf("Order %s does not exist", orderID)}
	}

	if docType == "commercial_invoice" && order.ShippingStatus.Terminal() {
		return ops.shippedInvoice(orderID)
	}

	tmpl, ok := ops.store.DocumentTemplate(docType)
	if !ok {
		return DocumentResult{Message: fmt.Sprintf("Document type %s is not available", docType)}
	}

	return DocumentResult{
		Success:  true,
		Message:  fmt.Sprintf("%s prepared for order %s", tmpl.Name, orderID),
		Document: fillTemplate(tmpl.Body, order, ops.now()),
	}
}

// ShippedInvoice handles a commercial-invoice request for an order that has
// already shipped.
func (ops *operations) ShippedInvoice(orderID string) DocumentResult {
	ops.logTool("process_document_request", map[string]any{"order_id": orderID, "doc_type": "commercial_invoice"})
	return ops.shippedInvoice(orderID)
}

func (ops *operations) shippedInvoice(orderID string) DocumentResult {
	order, ok := ops.effectiveOrder(orderID)
	if !ok {
		return DocumentResult{Message: fmt.Sprintf("Order %s does not exist", orderID)}
	}
	if !order.ShippingStatus.Terminal() {
		return DocumentResult{
			Message: fmt.Sprintf("Order %s has not shipped yet; the commercial invoice is issued after shipment", orderID),
		}
	}

	tmpl, ok := ops.store.DocumentTemplate("commercial_invoice")
	body := "Commercial Invoice\nOrder: {{order_id}}\nAmount: {{total_amount}} {{currency}}\nIssued: {{date}}"
	name := "Commercial Invoice"
	if ok {
		body = tmpl.Body
		name = tmpl.Name
	}

	return DocumentResult{
		Success:  true,
		Message:  fmt.Sprintf("%s issued for shipped order %s", name, orderID),
		Document: fillTemplate(body, order, ops.now()),
	}
}

// GeneralInquiry matches the email content against the inquiry templates'
// keywords and returns the best canned reply, or a default courtesy reply.
func (ops *operations) GeneralInquiry(content string) string {
	ops.logTool("handle_general_inquiry", nil)

	lower := strings.ToLower(content)

	best := ""
	bestMatches := 0
	for _, tmpl := range ops.store.InquiryTemplates() {
		matches := 0
		for _, kw := range tmpl.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			best = tmpl.Reply
		}
	}

	if best == "" {
		return "Thank you for contacting us. Your inquiry has been forwarded to the appropriate team, and we will respond within one business day."
	}
	return best
}

// fillTemplate substitutes order placeholders in a document template body.
func fillTemplate(body string, order models.Order, now time.Time) string {
	r := strings.NewReplacer(
		"{{order_id}}", order.ID,
		"{{customer_email}}", order.CustomerEmail,
		"{{total_amount}}", fmt.Sprintf("%.2f", order.TotalAmount),
		"{{currency}}", order.Currency,
		"{{tracking_number}}", order.TrackingNumber,
		"{{shipping_address}}", order.ShippingAddress,
		"{{date}}", now.Format("2006-01-02"),
	)
	return r.Replace(body)
}
