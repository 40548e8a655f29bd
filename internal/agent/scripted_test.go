package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/internal/stream"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

func newTestGateway(t *testing.T) (*ScriptedGateway, core.Operations) {
	t.Helper()

	dir := t.TempDir()
	writeAgentFixtures(t, dir)
	tmpl := filepath.Join(dir, "templates.yaml")

	store := core.NewStore(dir, tmpl)
	if report := store.Load(); len(report.Errors) != 0 {
		t.Fatalf("loading fixtures: %v", report.Errors)
	}
	ops := core.NewOperations(store, core.NewOverlay(), nil)
	return NewScriptedGateway(ops), ops
}

func writeAgentFixtures(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"customers.csv": "customer_id,name,email,phone,company,country,registration_date,vip_level\n" +
			"C001,Maria Lopez,maria@acme.example,,Acme,Spain,2023-04-01,Gold\n",
		"orders.csv": "order_id,customer_id,customer_email,status,shipping_status,total_amount,currency,tracking_number,shipping_address\n" +
			"LC100001,C001,maria@acme.example,Confirmed,Preparing,125.40,USD,,Calle Mayor 1 Madrid\n" +
			"LC100002,C001,maria@acme.example,Confirmed,In Transit,89.99,USD,SF123456789,Calle Mayor 1 Madrid\n",
		"order_products.csv": "order_id,product_id,product_name,quantity,unit_price\n" +
			"LC100001,C25804,Resistor 10k,1000,0.01\n",
		"products.csv": "product_id,name,category,unit_price,currency,stock_status,stock_quantity,min_order_qty,lead_time\n" +
			"C25804,Resistor 10k,Resistors,0.01,USD,In Stock,500000,1000,1-3 days\n",
		"batch_codes.csv": "product_id,batch_code,dc_code,production_date\n" +
			"C25804,B2407A,2427,2024-07-02\n",
		"document_templates.csv": "doc_type,name,body\n" +
			"commercial_invoice,Commercial Invoice,\"Invoice for {{order_id}}: {{total_amount}} {{currency}}\"\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	templates := "inquiries:\n  - topic: pricing\n    keywords: [price, quote]\n    reply: \"Our sales team will send a quotation shortly.\"\n"
	if err := os.WriteFile(filepath.Join(dir, "templates.yaml"), []byte(templates), 0o644); err != nil {
		t.Fatalf("writing templates fixture: %v", err)
	}
}

func collectEvents(t *testing.T, g *ScriptedGateway, content, email string) []stream.Event {
	t.Helper()

	es, err := g.Process(context.Background(), content, email)
	if err != nil {
		t.Fatalf("processing: %v", err)
	}
	var events []stream.Event
	for {
		e, ok := es.Next()
		if !ok {
			break
		}
		events = append(events, e)
	}
	return events
}

func TestScriptedInterceptionFlow(t *testing.T) {
	g, ops := newTestGateway(t)

	content := "Hello, please cancel order LC100001 before it ships."
	events := collectEvents(t, g, content, "maria@acme.example")

	c := stream.NewCollector()
	for _, e := range events {
		c.AddEvent(e)
	}
	resp, ready := c.FinalResponse()
	if !ready {
		t.Fatal("final response not ready after boundary")
	}
	for _, section := range []string{"## Intent Classification", "## Logistics/Order Status", "## Professional Email Reply"} {
		if !strings.Contains(resp, section) {
			t.Errorf("response missing section %q", section)
		}
	}
	if !strings.Contains(resp, "Primary Intent: "+IntentInterception) {
		t.Errorf("response does not state the interception intent:\n%s", resp)
	}
	if !strings.Contains(resp, "successfully intercepted") {
		t.Errorf("response does not confirm the interception:\n%s", resp)
	}
	if !strings.Contains(resp, "Dear Maria Lopez,") {
		t.Errorf("response not personalized:\n%s", resp)
	}

	// The tool actually ran: the order is intercepted now.
	order, _ := ops.Order("LC100001")
	if order.ShippingStatus != models.ShippingIntercepted {
		t.Errorf("order status after processing = %s, want Intercepted", order.ShippingStatus)
	}
	if order.InterceptReason != "cancel order" {
		t.Errorf("intercept reason = %q", order.InterceptReason)
	}
}

func TestScriptedInterceptionBlockedForShippedOrder(t *testing.T) {
	g, ops := newTestGateway(t)

	content := "I need to change address for order LC100002."
	events := collectEvents(t, g, content, "maria@acme.example")

	c := stream.NewCollector()
	for _, e := range events {
		c.AddEvent(e)
	}
	resp, _ := c.FinalResponse()
	if !strings.Contains(resp, "cannot be intercepted") {
		t.Errorf("response does not explain the refusal:\n%s", resp)
	}

	order, _ := ops.Order("LC100002")
	if order.ShippingStatus != models.ShippingInTransit {
		t.Errorf("blocked intercept mutated the order: %s", order.ShippingStatus)
	}
}

func TestScriptedLogisticsFlow(t *testing.T) {
	g, _ := newTestGateway(t)

	content := "What is the delivery status of LC100002? The tracking page shows nothing."
	events := collectEvents(t, g, content, "maria@acme.example")

	c := stream.NewCollector()
	for _, e := range events {
		c.AddEvent(e)
	}
	resp, _ := c.FinalResponse()
	if !strings.Contains(resp, "Tracking Number: SF123456789") {
		t.Errorf("response missing tracking number:\n%s", resp)
	}
	if !strings.Contains(resp, "Tracking history:") {
		t.Errorf("response missing tracking history:\n%s", resp)
	}
}

func TestScriptedBatchCodeFlow(t *testing.T) {
	g, _ := newTestGateway(t)

	content := "Could you share the batch code and date code for C25804?"
	events := collectEvents(t, g, content, "maria@acme.example")

	c := stream.NewCollector()
	for _, e := range events {
		c.AddEvent(e)
	}
	resp, _ := c.FinalResponse()
	if !strings.Contains(resp, "B2407A") {
		t.Errorf("response missing batch code:\n%s", resp)
	}
}

func TestScriptedGeneralInquiryFallback(t *testing.T) {
	g, _ := newTestGateway(t)

	content := "What would the price be for a bulk purchase?"
	events := collectEvents(t, g, content, "stranger@example.com")

	c := stream.NewCollector()
	for _, e := range events {
		c.AddEvent(e)
	}
	resp, _ := c.FinalResponse()
	if !strings.Contains(resp, "quotation") {
		t.Errorf("response missing canned pricing reply:\n%s", resp)
	}
	if !strings.Contains(resp, "Dear Valued Customer,") {
		t.Errorf("unknown sender should get the generic salutation:\n%s", resp)
	}
}

func TestScriptedEventShape(t *testing.T) {
	g, _ := newTestGateway(t)

	content := "Where is the courier with my delivery for LC100002?"
	events := collectEvents(t, g, content, "maria@acme.example")

	if events[0].Kind != stream.KindLifecycle || events[0].Phase != stream.PhaseInit {
		t.Errorf("first event = %+v, want lifecycle init", events[0])
	}
	last := events[len(events)-1]
	if last.Kind != stream.KindBoundary {
		t.Errorf("last event = %+v, want message boundary", last)
	}

	// Tool invocation ids are distinct and deterministic.
	seen := map[string]bool{}
	for _, e := range events {
		if e.Kind != stream.KindToolUse {
			continue
		}
		if e.Tool == nil || e.Tool.InvocationID == "" {
			t.Fatalf("tool event without invocation id: %+v", e)
		}
		if seen[e.Tool.InvocationID] {
			t.Errorf("duplicate invocation id %s", e.Tool.InvocationID)
		}
		seen[e.Tool.InvocationID] = true
	}
	if len(seen) == 0 {
		t.Fatal("no tool events emitted")
	}

	// Two runs over the same data yield the same sequence.
	again := collectEvents(t, g, content, "maria@acme.example")
	if len(again) != len(events) {
		t.Fatalf("event count differs between runs: %d vs %d", len(again), len(events))
	}
	for i := range events {
		if events[i].Kind != again[i].Kind || events[i].Text != again[i].Text {
			t.Errorf("event %d differs between runs", i)
		}
	}
}

func TestScriptedCancelledContext(t *testing.T) {
	g, _ := newTestGateway(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Process(ctx, "hello", "a@b.c"); err == nil {
		t.Error("cancelled context accepted")
	}
}
