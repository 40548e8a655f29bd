package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/mail-triage/internal/batch"
	"github.com/valter-silva-au/mail-triage/internal/storage"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

var (
	batchMax   int
	batchPause time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run batch analysis over the intent CSV",
	Long: `Process every email in the intent CSV through the triage agent,
classify its intent, and write the results back into the ai-categ column.

A timestamped backup of the CSV is taken before the write-back. The run
pauses between emails and prints a summary report when it finishes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Gateway == nil {
			return fmt.Errorf("agent gateway not initialized")
		}
		if Cfg == nil {
			return fmt.Errorf("configuration not initialized")
		}

		intents, err := storage.OpenIntentCSV(Cfg.IntentCSV)
		if err != nil {
			return fmt.Errorf("opening intent csv: %w", err)
		}

		var records []models.EmailRecord
		for _, id := range intents.EmailIDs() {
			if record, ok := intents.FirstByID(id); ok {
				records = append(records, record)
			}
		}
		if len(records) == 0 {
			return fmt.Errorf("no emails found in %s", Cfg.IntentCSV)
		}

		pause := Cfg.BatchPause
		if cmd.Flags().Changed("pause") {
			pause = batchPause
		}
		maxEmails := Cfg.BatchMaxEmails
		if cmd.Flags().Changed("max") {
			maxEmails = batchMax
		}

		orch := batch.NewOrchestrator(Gateway, intents, EventLog, batch.Options{
			Pause:     pause,
			MaxEmails: maxEmails,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Starting batch analysis of %d emails...\n\n", len(records))
		run, err := orch.Run(ctx, records)
		if err != nil {
			return fmt.Errorf("running batch: %w", err)
		}

		fmt.Println(batch.FormatReport(run.Statistics))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchMax, "max", 0, "cap the number of emails processed (0 = no cap)")
	batchCmd.Flags().DurationVar(&batchPause, "pause", 0, "pause between emails (overrides config)")
	rootCmd.AddCommand(batchCmd)
}
