package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/mail-triage/internal/storage"
)

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "Browse stored customer emails",
	Long: `Browse customer emails from the emails directory and the tabular
intent CSV source.`,
}

var emailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emails in the emails directory, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Emails == nil {
			return fmt.Errorf("email loader not initialized")
		}
		emails, err := Emails.Load()
		if err != nil {
			return fmt.Errorf("loading emails: %w", err)
		}
		if len(emails) == 0 {
			fmt.Println("No emails found.")
			return nil
		}
		for _, e := range emails {
			fmt.Printf("%-20s %-16s %-32s %s\n",
				e.ID, e.SendTime.Format("2006-01-02 15:04"), e.Sender, e.Subject)
		}
		return nil
	},
}

var emailsShowCmd = &cobra.Command{
	Use:   "show <email-id>",
	Short: "Show the full conversation for an email id in the intent CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intents, err := openIntents()
		if err != nil {
			return err
		}
		conv, ok := intents.Conversation(args[0])
		if !ok {
			return fmt.Errorf("email %q not found", args[0])
		}
		for i, msg := range conv.Messages {
			fmt.Printf("Message %d  %s -> %s  (%s)\n", i+1,
				msg.Sender, msg.Recipient, msg.SendTime.Format("2006-01-02 15:04:05"))
			fmt.Println(msg.Content)
			fmt.Println()
		}
		return nil
	},
}

var emailsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the intent CSV by sender, receiver, or content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intents, err := openIntents()
		if err != nil {
			return err
		}
		matches := intents.Search(args[0])
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%-12s %-32s %s\n", m.ID, m.Sender, firstLine(m.Content))
		}
		return nil
	},
}

var emailsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics for the intent CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		intents, err := openIntents()
		if err != nil {
			return err
		}
		stats := intents.Stats()
		fmt.Printf("  %-18s %d\n", "Rows:", stats.TotalRows)
		fmt.Printf("  %-18s %d\n", "Unique emails:", stats.UniqueEmails)
		fmt.Printf("  %-18s %d\n", "Unique senders:", stats.UniqueSenders)
		fmt.Printf("  %-18s %d\n", "Classified:", stats.Classified)
		return nil
	},
}

func openIntents() (storage.IntentCSV, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	intents, err := storage.OpenIntentCSV(Cfg.IntentCSV)
	if err != nil {
		return nil, fmt.Errorf("opening intent csv: %w", err)
	}
	return intents, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}

func init() {
	emailsCmd.AddCommand(emailsListCmd)
	emailsCmd.AddCommand(emailsShowCmd)
	emailsCmd.AddCommand(emailsSearchCmd)
	emailsCmd.AddCommand(emailsStatsCmd)
	rootCmd.AddCommand(emailsCmd)
}
