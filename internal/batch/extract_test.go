package batch

import "testing"

const sampleResponse = `## Intent Classification
- Primary Intent: Logistics Status Inquiry
- Confidence: High
- Secondary Intent: Document Processing
- Confidence: Low

## Logistics/Order Status
- Order ID: LC100002
- Current Status: Confirmed
- Shipping Status: In Transit

## Professional Email Reply

Dear Maria,
...
`

func TestExtractFullResponse(t *testing.T) {
	ex := Extract(sampleResponse)
	if ex.PrimaryIntent != "Logistics Status Inquiry" {
		t.Errorf("primary intent = %q", ex.PrimaryIntent)
	}
	// First Confidence line inside the intent section wins.
	if ex.Confidence != "High" {
		t.Errorf("confidence = %q", ex.Confidence)
	}
	if ex.OrderID != "LC100002" {
		t.Errorf("order id = %q", ex.OrderID)
	}
}

func TestExtractMissingSections(t *testing.T) {
	ex := Extract("just plain text with no sections")
	if ex.PrimaryIntent != "Unknown" || ex.Confidence != "Unknown" {
		t.Errorf("extraction = %+v, want Unknown/Unknown", ex)
	}
	if ex.OrderID != "" {
		t.Errorf("order id = %q, want empty", ex.OrderID)
	}
}

func TestExtractIntentWithoutLogistics(t *testing.T) {
	resp := "## Intent Classification\n- Primary Intent: Others Inquiry\n- Confidence: Low\n\n## Professional Email Reply\n..."
	ex := Extract(resp)
	if ex.PrimaryIntent != "Others Inquiry" {
		t.Errorf("primary intent = %q", ex.PrimaryIntent)
	}
	if ex.OrderID != "" {
		t.Errorf("order id = %q, want empty", ex.OrderID)
	}
}

func TestExtractCaseInsensitiveHeaders(t *testing.T) {
	resp := "## INTENT CLASSIFICATION\n- primary intent: Batch/DC Code Inquiry\n- confidence: Medium\n"
	ex := Extract(resp)
	if ex.PrimaryIntent != "Batch/DC Code Inquiry" {
		t.Errorf("primary intent = %q", ex.PrimaryIntent)
	}
	if ex.Confidence != "Medium" {
		t.Errorf("confidence = %q", ex.Confidence)
	}
}
