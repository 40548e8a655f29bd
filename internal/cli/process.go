package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/mail-triage/internal/agent"
	"github.com/valter-silva-au/mail-triage/internal/observability"
	"github.com/valter-silva-au/mail-triage/internal/stream"
	"github.com/valter-silva-au/mail-triage/internal/tui"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

var (
	processFile string
	processFrom string
	processTUI  bool
)

var processCmd = &cobra.Command{
	Use:   "process [email-id]",
	Short: "Process a single customer email",
	Long: `Process one customer email through the triage agent.

With an email-id argument the email is looked up in the configured emails
directory. With --file an arbitrary text file is processed instead. With no
argument the newest email in the directory is used.

The thinking-process transcript, the final reply, and a session summary are
printed when processing completes. Use --tui for a live-updating view.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Gateway == nil {
			return fmt.Errorf("agent gateway not initialized")
		}

		record, err := resolveEmail(args)
		if err != nil {
			return err
		}

		from := processFrom
		if from == "" {
			from = senderAddress(record.Sender)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		events, err := Gateway.Process(ctx, record.Content, from)
		if err != nil {
			return fmt.Errorf("processing email: %w", err)
		}

		var collector *stream.Collector
		if processTUI {
			collector, err = runSessionTUI(events)
			if err != nil {
				return err
			}
		} else {
			collector = stream.NewCollector()
			for {
				e, ok := events.Next()
				if !ok {
					break
				}
				collector.AddEvent(e)
			}
			collector.MarkComplete()

			response, _ := collector.FinalResponse()
			fmt.Println(collector.Transcript())
			fmt.Println("FINAL RESPONSE")
			fmt.Println(strings.Repeat("-", 40))
			fmt.Println(response)
			fmt.Println()
			fmt.Println(stream.FormatSummary(collector.Summary()))
		}

		logProcessed(record, collector)
		return nil
	},
}

// resolveEmail picks the email to process: --file wins, then the id
// argument, then the newest email in the directory.
func resolveEmail(args []string) (models.EmailRecord, error) {
	if processFile != "" {
		raw, err := os.ReadFile(processFile)
		if err != nil {
			return models.EmailRecord{}, fmt.Errorf("reading email file: %w", err)
		}
		return models.EmailRecord{
			ID:      processFile,
			Content: strings.TrimSpace(string(raw)),
		}, nil
	}

	if Emails == nil {
		return models.EmailRecord{}, fmt.Errorf("email loader not initialized")
	}
	emails, err := Emails.Load()
	if err != nil {
		return models.EmailRecord{}, fmt.Errorf("loading emails: %w", err)
	}
	if len(emails) == 0 {
		return models.EmailRecord{}, fmt.Errorf("no emails found in the configured emails directory")
	}

	if len(args) == 0 {
		return emails[0], nil
	}
	for _, e := range emails {
		if e.ID == args[0] {
			return e, nil
		}
	}
	return models.EmailRecord{}, fmt.Errorf("email %q not found", args[0])
}

// runSessionTUI drives the live session view and hands the collector back
// so the caller can log the run.
func runSessionTUI(events agent.EventStream) (*stream.Collector, error) {
	m := tui.NewModel(events)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running session view: %w", err)
	}
	if fm, ok := final.(tui.Model); ok {
		return fm.Collector(), nil
	}
	return m.Collector(), nil
}

// senderAddress strips a "Name <email>" wrapper down to the bare address.
func senderAddress(sender string) string {
	if i := strings.Index(sender, "<"); i >= 0 {
		if j := strings.Index(sender[i:], ">"); j > 0 {
			return sender[i+1 : i+j]
		}
	}
	return sender
}

func logProcessed(record models.EmailRecord, collector *stream.Collector) {
	if EventLog == nil || collector == nil {
		return
	}
	summary := collector.Summary()
	_ = EventLog.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    "email.processed",
		Message: "email processed",
		Data: map[string]any{
			"email_id":     record.ID,
			"tool_calls":   summary.ToolInvocations,
			"total_events": summary.TotalEvents,
		},
	})
}

func init() {
	processCmd.Flags().StringVar(&processFile, "file", "", "process this text file instead of a stored email")
	processCmd.Flags().StringVar(&processFrom, "from", "", "customer email address (default: extracted from the sender)")
	processCmd.Flags().BoolVar(&processTUI, "tui", false, "show a live-updating session view")
	rootCmd.AddCommand(processCmd)
}
