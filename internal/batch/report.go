package batch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// FormatReport renders the batch summary report.
func FormatReport(stats models.BatchStatistics) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("BATCH ANALYSIS SUMMARY REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Emails:           %d\n", stats.TotalEmails)
	fmt.Fprintf(&b, "Successfully Processed: %d\n", stats.CompletedEmails)
	fmt.Fprintf(&b, "Failed:                 %d\n", stats.FailedEmails)
	fmt.Fprintf(&b, "Success Rate:           %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(&b, "Total Time:             %.2fs\n", stats.TotalTime.Seconds())
	fmt.Fprintf(&b, "Average Time per Email: %.2fs\n", stats.AverageTime.Seconds())

	b.WriteString("\nCSV UPDATE STATUS\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "  Update Success:  %v\n", stats.CSVUpdated)
	fmt.Fprintf(&b, "  Records Updated: %d\n", stats.CSVUpdatesMade)

	if len(stats.IntentCounts) > 0 {
		b.WriteString("\nINTENT CLASSIFICATION RESULTS\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, line := range histogramLines(stats.IntentCounts, stats.CompletedEmails) {
			b.WriteString(line + "\n")
		}
	}

	if len(stats.ConfidenceCounts) > 0 {
		b.WriteString("\nCONFIDENCE DISTRIBUTION\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, line := range histogramLines(stats.ConfidenceCounts, stats.CompletedEmails) {
			b.WriteString(line + "\n")
		}
	}

	if stats.OrdersFound > 0 {
		fmt.Fprintf(&b, "\nOrders Identified: %d\n", stats.OrdersFound)
	}
	if stats.AvgResponseLength > 0 {
		fmt.Fprintf(&b, "Average Response Length: %d chars\n", stats.AvgResponseLength)
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// histogramLines renders a count map as lines sorted by count descending,
// name ascending for ties.
func histogramLines(counts map[string]int, total int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		pct := 0.0
		if total > 0 {
			pct = float64(e.count) / float64(total) * 100
		}
		lines = append(lines, fmt.Sprintf("  %s: %d emails (%.1f%%)", e.name, e.count, pct))
	}
	return lines
}
