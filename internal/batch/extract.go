// Package batch runs the triage pipeline over a set of emails, extracts
// the classification out of each structured reply, and writes the intents
// back to the classification CSV.
package batch

import (
	"regexp"
	"strings"
)

const unknown = "Unknown"

var (
	intentSection    = regexp.MustCompile(`(?is)##\s*Intent Classification(.*?)(?:##|$)`)
	logisticsSection = regexp.MustCompile(`(?is)##\s*Logistics/Order Status(.*?)(?:##|$)`)
	primaryIntent    = regexp.MustCompile(`(?i)Primary Intent:\s*([^\n]+)`)
	confidenceLevel  = regexp.MustCompile(`(?i)Confidence:\s*([^\n]+)`)
	orderIDLine      = regexp.MustCompile(`(?i)Order ID:\s*([^\n]+)`)
)

// Extraction is what the batch run pulls out of one structured reply.
type Extraction struct {
	PrimaryIntent string
	Confidence    string
	OrderID       string
}

// Extract reads the intent classification and order id out of a structured
// reply. Fields that cannot be located come back as Unknown (intent,
// confidence) or empty (order id).
func Extract(response string) Extraction {
	ex := Extraction{PrimaryIntent: unknown, Confidence: unknown}

	if m := intentSection.FindStringSubmatch(response); m != nil {
		section := m[1]
		if im := primaryIntent.FindStringSubmatch(section); im != nil {
			ex.PrimaryIntent = strings.TrimSpace(im[1])
		}
		if cm := confidenceLevel.FindStringSubmatch(section); cm != nil {
			ex.Confidence = strings.TrimSpace(cm[1])
		}
	}

	if m := logisticsSection.FindStringSubmatch(response); m != nil {
		if om := orderIDLine.FindStringSubmatch(m[1]); om != nil {
			ex.OrderID = strings.TrimSpace(om[1])
		}
	}

	return ex
}
