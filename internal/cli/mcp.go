package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	mtamcp "github.com/valter-silva-au/mail-triage/internal/mcp"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the mta MCP server on stdio",
	Long: `Start the mta MCP (Model Context Protocol) server on stdio transport.

The server exposes the business operations as MCP tools that a hosted agent
can call: query_order, query_customer, query_customer_orders, query_product,
query_inventory, intercept_shipment, query_logistics, query_batch_code,
process_document_request, handle_general_inquiry, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Ops == nil {
			return fmt.Errorf("business operations not initialized")
		}

		srv := mtamcp.NewServer(Ops, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}
