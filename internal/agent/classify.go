package agent

import (
	"sort"
	"strings"
)

// Intent names used across classification, batch extraction, and the
// write-back CSV.
const (
	IntentLogistics    = "Logistics Status Inquiry"
	IntentInterception = "Pre-shipment Order Interception"
	IntentBatchCode    = "Batch/DC Code Inquiry"
	IntentDocument     = "Document Processing"
	IntentInvoice      = "Shipped Invoice Processing"
	IntentOthers       = "Others Inquiry"
	IntentUnknown      = "Unknown"
)

// Intent is one classified intent with a coarse confidence level.
type Intent struct {
	Name       string
	Confidence string
	Matches    int
}

// intentKeywords is ordered so ties between intents resolve the same way
// on every run.
var intentKeywords = []struct {
	name     string
	keywords []string
}{
	{IntentLogistics, []string{"tracking", "shipping", "delivery", "logistics", "courier", "logistics status", "express delivery", "track order"}},
	{IntentInterception, []string{"change address", "modify order", "cancel", "change shipping address", "cancel order", "modify order details", "merge orders"}},
	{IntentBatchCode, []string{"date code", "batch code", "lot code", "dc", "batch number", "production date"}},
	{IntentDocument, []string{"invoice", "coc", "package list", "commercial invoice", "invoice document", "packing list"}},
	{IntentInvoice, []string{"commercial invoice", "shipped", "shipping invoice", "customs clearance", "customs", "customs documents"}},
	{IntentOthers, []string{"price", "technical", "account", "return", "partnership", "complaint"}},
}

// Classify matches the email content against the intent keyword sets and
// returns at most the two strongest intents. Three or more keyword hits
// yield High confidence, two yield Medium, one yields Low.
func Classify(emailContent string) []Intent {
	lower := strings.ToLower(emailContent)

	var intents []Intent
	for _, entry := range intentKeywords {
		matches := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := "Low"
		switch {
		case matches >= 3:
			confidence = "High"
		case matches >= 2:
			confidence = "Medium"
		}
		intents = append(intents, Intent{Name: entry.name, Confidence: confidence, Matches: matches})
	}

	sort.SliceStable(intents, func(i, j int) bool {
		return intents[i].Matches > intents[j].Matches
	})

	if len(intents) > 2 {
		intents = intents[:2]
	}
	return intents
}
