// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the mail-triage business operations as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/internal/observability"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// Server wraps the business operations and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	ops         core.Operations
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server over the business operations.
// metricsCalc may be nil if observability is disabled.
func NewServer(ops core.Operations, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		ops:         ops,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "mta", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type orderInput struct {
	OrderID string `json:"order_id" jsonschema:"required,the order number (e.g. LC100001)"`
}

type orderOutput struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customer_id"`
	CustomerEmail   string           `json:"customer_email"`
	Status          string           `json:"status"`
	ShippingStatus  string           `json:"shipping_status"`
	TotalAmount     float64          `json:"total_amount"`
	Currency        string           `json:"currency"`
	TrackingNumber  string           `json:"tracking_number,omitempty"`
	ShippingAddress string           `json:"shipping_address,omitempty"`
	Items           []lineItemOutput `json:"items,omitempty"`
	InterceptReason string           `json:"intercept_reason,omitempty"`
	InterceptTime   string           `json:"intercept_time,omitempty"`
}

type lineItemOutput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type customerInput struct {
	Email string `json:"email" jsonschema:"required,the customer's email address"`
}

type customerOutput struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Company          string `json:"company,omitempty"`
	Country          string `json:"country,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
	VIPLevel         string `json:"vip_level"`
}

type customerOrdersOutput struct {
	Orders []orderOutput `json:"orders"`
	Count  int           `json:"count"`
}

type productInput struct {
	ProductID string `json:"product_id" jsonschema:"required,the product number (e.g. C25804)"`
}

type productOutput struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	UnitPrice     float64 `json:"unit_price"`
	Currency      string  `json:"currency"`
	StockStatus   string  `json:"stock_status"`
	StockQuantity int     `json:"stock_quantity"`
	MinOrderQty   int     `json:"min_order_qty"`
	LeadTime      string  `json:"lead_time"`
}

type inventoryOutput struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockStatus   string `json:"stock_status"`
	StockQuantity int    `json:"stock_quantity"`
	MinOrderQty   int    `json:"min_order_qty"`
	LeadTime      string `json:"lead_time"`
	LastUpdated   string `json:"last_updated"`
}

type interceptInput struct {
	OrderID string `json:"order_id" jsonschema:"required,the order number to intercept"`
	Reason  string `json:"reason" jsonschema:"required,why the shipment should be held (e.g. change shipping address)"`
}

type interceptOutput struct {
	Outcome string      `json:"outcome"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   orderOutput `json:"order,omitempty"`
}

type logisticsOutput struct {
	OrderID           string          `json:"order_id"`
	ShippingStatus    string          `json:"shipping_status"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	ShippingAddress   string          `json:"shipping_address"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	InterceptReason   string          `json:"intercept_reason,omitempty"`
	InterceptTime     string          `json:"intercept_time,omitempty"`
	History           []trackingEntry `json:"tracking_history,omitempty"`
}

type trackingEntry struct {
	Time     string `json:"time"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Reason   string `json:"reason,omitempty"`
}

type batchCodeOutput struct {
	ProductID      string `json:"product_id"`
	BatchCode      string `json:"batch_code"`
	DateCode       string `json:"dc_code"`
	ProductionDate string `json:"production_date"`
}

type documentInput struct {
	OrderID string `json:"order_id" jsonschema:"required,the order number"`
	DocType string `json:"doc_type" jsonschema:"required,document type (e.g. commercial_invoice, packing_list)"`
}

type documentOutput struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Document string `json:"document,omitempty"`
}

type inquiryInput struct {
	Content string `json:"content" jsonschema:"required,the customer's inquiry text"`
}

type inquiryOutput struct {
	Reply string `json:"reply"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	EmailsProcessed int            `json:"emails_processed"`
	EmailsFailed    int            `json:"emails_failed"`
	EmailsByIntent  map[string]int `json:"emails_by_intent"`
	BatchRuns       int            `json:"batch_runs"`
	Interceptions   int            `json:"interceptions"`
	ToolInvocations int            `json:"tool_invocations"`
	EventCount      int            `json:"event_count"`
	OldestEvent     string         `json:"oldest_event,omitempty"`
	NewestEvent     string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_order",
		Description: "Get an order by its order number, including line items and any interception state.",
	}, s.handleQueryOrder)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_customer",
		Description: "Get a customer record by email address.",
	}, s.handleQueryCustomer)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_customer_orders",
		Description: "List all orders placed by a customer, identified by email address.",
	}, s.handleQueryCustomerOrders)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_product",
		Description: "Get a product record by product number, including pricing and stock information.",
	}, s.handleQueryProduct)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_inventory",
		Description: "Get the current inventory status of a product.",
	}, s.handleQueryInventory)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "intercept_shipment",
		Description: "Hold an order's shipment before it leaves the warehouse. Orders that have already shipped cannot be intercepted; repeating an interception is a no-op success.",
	}, s.handleInterceptShipment)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_logistics",
		Description: "Get the logistics view of an order: shipping status, tracking history, and estimated delivery.",
	}, s.handleQueryLogistics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "query_batch_code",
		Description: "Get the production batch and date code information for a product.",
	}, s.handleQueryBatchCode)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "process_document_request",
		Description: "Prepare a document (e.g. commercial_invoice, packing_list) for an order. Invoice requests for shipped orders produce a customs-ready commercial invoice.",
	}, s.handleDocumentRequest)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "handle_general_inquiry",
		Description: "Answer a general customer inquiry from the canned reply templates.",
	}, s.handleGeneralInquiry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including processed email counts, intent distribution, and interceptions.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleQueryOrder(_ context.Context, _ *gomcp.CallToolRequest, input orderInput) (*gomcp.CallToolResult, orderOutput, error) {
	if input.OrderID == "" {
		return errorResult("order_id is required"), orderOutput{}, nil
	}

	order, ok := s.ops.Order(input.OrderID)
	if !ok {
		return errorResult(fmt.Sprintf("order %s does not exist", input.OrderID)), orderOutput{}, nil
	}

	return nil, orderToOutput(order), nil
}

func (s *Server) handleQueryCustomer(_ context.Context, _ *gomcp.CallToolRequest, input customerInput) (*gomcp.CallToolResult, customerOutput, error) {
	if input.Email == "" {
		return errorResult("email is required"), customerOutput{}, nil
	}

	c, ok := s.ops.Customer(input.Email)
	if !ok {
		return errorResult(fmt.Sprintf("no customer with email %s", input.Email)), customerOutput{}, nil
	}

	return nil, customerOutput{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		Company:          c.Company,
		Country:          c.Country,
		RegistrationDate: c.RegistrationDate,
		VIPLevel:         string(c.VIPLevel),
	}, nil
}

func (s *Server) handleQueryCustomerOrders(_ context.Context, _ *gomcp.CallToolRequest, input customerInput) (*gomcp.CallToolResult, customerOrdersOutput, error) {
	if input.Email == "" {
		return errorResult("email is required"), customerOrdersOutput{}, nil
	}

	orders := s.ops.OrdersByCustomer(input.Email)
	out := customerOrdersOutput{
		Orders: make([]orderOutput, len(orders)),
		Count:  len(orders),
	}
	for i, o := range orders {
		out.Orders[i] = orderToOutput(o)
	}
	return nil, out, nil
}

func (s *Server) handleQueryProduct(_ context.Context, _ *gomcp.CallToolRequest, input productInput) (*gomcp.CallToolResult, productOutput, error) {
	if input.ProductID == "" {
		return errorResult("product_id is required"), productOutput{}, nil
	}

	p, ok := s.ops.Product(input.ProductID)
	if !ok {
		return errorResult(fmt.Sprintf("product %s does not exist", input.ProductID)), productOutput{}, nil
	}

	return nil, productOutput{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		UnitPrice:     p.UnitPrice,
		Currency:      p.Currency,
		StockStatus:   p.StockStatus,
		StockQuantity: p.StockQuantity,
		MinOrderQty:   p.MinOrderQty,
		LeadTime:      p.LeadTime,
	}, nil
}

func (s *Server) handleQueryInventory(_ context.Context, _ *gomcp.CallToolRequest, input productInput) (*gomcp.CallToolResult, inventoryOutput, error) {
	if input.ProductID == "" {
		return errorResult("product_id is required"), inventoryOutput{}, nil
	}

	inv, ok := s.ops.Inventory(input.ProductID)
	if !ok {
		return errorResult(fmt.Sprintf("product %s does not exist", input.ProductID)), inventoryOutput{}, nil
	}

	return nil, inventoryOutput{
		ProductID:     inv.ProductID,
		ProductName:   inv.ProductName,
		StockStatus:   inv.StockStatus,
		StockQuantity: inv.StockQuantity,
		MinOrderQty:   inv.MinOrderQty,
		LeadTime:      inv.LeadTime,
		LastUpdated:   inv.LastUpdated,
	}, nil
}

func (s *Server) handleInterceptShipment(_ context.Context, _ *gomcp.CallToolRequest, input interceptInput) (*gomcp.CallToolResult, interceptOutput, error) {
	if input.OrderID == "" {
		return errorResult("order_id is required"), interceptOutput{}, nil
	}
	if input.Reason == "" {
		return errorResult("reason is required"), interceptOutput{}, nil
	}

	res := s.ops.InterceptShipment(input.OrderID, input.Reason)
	out := interceptOutput{
		Outcome: string(res.Outcome),
		Success: res.Success(),
		Message: res.Message,
	}
	if res.Order.ID != "" {
		out.Order = orderToOutput(res.Order)
	}
	return nil, out, nil
}

func (s *Server) handleQueryLogistics(_ context.Context, _ *gomcp.CallToolRequest, input orderInput) (*gomcp.CallToolResult, logisticsOutput, error) {
	if input.OrderID == "" {
		return errorResult("order_id is required"), logisticsOutput{}, nil
	}

	info, ok := s.ops.LogisticsStatus(input.OrderID)
	if !ok {
		return errorResult(fmt.Sprintf("order %s does not exist", input.OrderID)), logisticsOutput{}, nil
	}

	out := logisticsOutput{
		OrderID:           info.OrderID,
		ShippingStatus:    string(info.ShippingStatus),
		TrackingNumber:    info.TrackingNumber,
		ShippingAddress:   info.ShippingAddress,
		EstimatedDelivery: info.EstimatedDelivery,
		InterceptReason:   info.InterceptReason,
		InterceptTime:     info.InterceptTime,
	}
	for _, h := range info.History {
		out.History = append(out.History, trackingEntry{
			Time:     h.Time,
			Status:   h.Status,
			Location: h.Location,
			Reason:   h.Reason,
		})
	}
	return nil, out, nil
}

func (s *Server) handleQueryBatchCode(_ context.Context, _ *gomcp.CallToolRequest, input productInput) (*gomcp.CallToolResult, batchCodeOutput, error) {
	if input.ProductID == "" {
		return errorResult("product_id is required"), batchCodeOutput{}, nil
	}

	bc, ok := s.ops.BatchCode(input.ProductID)
	if !ok {
		return errorResult(fmt.Sprintf("no batch code record for product %s", input.ProductID)), batchCodeOutput{}, nil
	}

	return nil, batchCodeOutput{
		ProductID:      bc.ProductID,
		BatchCode:      bc.BatchCode,
		DateCode:       bc.DateCode,
		ProductionDate: bc.ProductionDate,
	}, nil
}

func (s *Server) handleDocumentRequest(_ context.Context, _ *gomcp.CallToolRequest, input documentInput) (*gomcp.CallToolResult, documentOutput, error) {
	if input.OrderID == "" {
		return errorResult("order_id is required"), documentOutput{}, nil
	}
	if input.DocType == "" {
		return errorResult("doc_type is required"), documentOutput{}, nil
	}

	res := s.ops.DocumentRequest(input.OrderID, input.DocType)
	return nil, documentOutput{
		Success:  res.Success,
		Message:  res.Message,
		Document: res.Document,
	}, nil
}

func (s *Server) handleGeneralInquiry(_ context.Context, _ *gomcp.CallToolRequest, input inquiryInput) (*gomcp.CallToolResult, inquiryOutput, error) {
	if input.Content == "" {
		return errorResult("content is required"), inquiryOutput{}, nil
	}

	return nil, inquiryOutput{Reply: s.ops.GeneralInquiry(input.Content)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		EmailsProcessed: metrics.EmailsProcessed,
		EmailsFailed:    metrics.EmailsFailed,
		EmailsByIntent:  metrics.EmailsByIntent,
		BatchRuns:       metrics.BatchRuns,
		Interceptions:   metrics.Interceptions,
		ToolInvocations: metrics.ToolInvocations,
		EventCount:      metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func orderToOutput(o models.Order) orderOutput {
	out := orderOutput{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		Status:          o.Status,
		ShippingStatus:  string(o.ShippingStatus),
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		TrackingNumber:  o.TrackingNumber,
		ShippingAddress: o.ShippingAddress,
		InterceptReason: o.InterceptReason,
	}
	if o.InterceptTime != nil {
		out.InterceptTime = o.InterceptTime.Format(time.RFC3339)
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, lineItemOutput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		EmailsByIntent: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
