package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display triage metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include processed and failed email counts, the intent distribution,
batch run counts, shipment interceptions, and tool invocations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Emails processed:", metrics.EmailsProcessed)
		fmt.Printf("  %-24s %d\n", "Emails failed:", metrics.EmailsFailed)
		fmt.Printf("  %-24s %d\n", "Batch runs:", metrics.BatchRuns)
		fmt.Printf("  %-24s %d\n", "Interceptions:", metrics.Interceptions)
		fmt.Printf("  %-24s %d\n", "Tool invocations:", metrics.ToolInvocations)

		if len(metrics.EmailsByIntent) > 0 {
			fmt.Println("\n  Emails by intent:")
			intents := make([]string, 0, len(metrics.EmailsByIntent))
			for intent := range metrics.EmailsByIntent {
				intents = append(intents, intent)
			}
			sort.Strings(intents)
			for _, intent := range intents {
				fmt.Printf("    %-28s %d\n", intent+":", metrics.EmailsByIntent[intent])
			}
		}

		return nil
	},
}

// parseSinceDuration converts a duration like "7d" or "24h" into the
// corresponding start time.
func parseSinceDuration(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "7d"
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration %q", s)
		}
		return time.Now().UTC().AddDate(0, 0, -days), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}
	return time.Now().UTC().Add(-d), nil
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "output as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "time window, e.g. 7d or 24h")
	rootCmd.AddCommand(metricsCmd)
}
