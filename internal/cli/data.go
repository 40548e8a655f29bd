package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Browse the business data tables",
	Long: `List customers, orders, and products from the business data store,
with runtime overlay changes applied to orders.`,
}

var dataCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DataStore == nil {
			return fmt.Errorf("data store not initialized")
		}
		customers := DataStore.Customers()
		if len(customers) == 0 {
			fmt.Println("No customers loaded.")
			return nil
		}
		for _, c := range customers {
			fmt.Printf("%-10s %-20s %-28s %-16s %s\n",
				c.ID, c.Name, c.Email, c.Country, c.VIPLevel)
		}
		return nil
	},
}

var dataOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders with overlay changes applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DataStore == nil {
			return fmt.Errorf("data store not initialized")
		}
		orders := DataStore.Orders()
		if len(orders) == 0 {
			fmt.Println("No orders loaded.")
			return nil
		}
		for _, o := range orders {
			if Overlay != nil {
				o = Overlay.Apply(o)
			}
			fmt.Printf("%-10s %-28s %-14s %-14s %8.2f %s\n",
				o.ID, o.CustomerEmail, o.Status, o.ShippingStatus, o.TotalAmount, o.Currency)
		}
		return nil
	},
}

var dataProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DataStore == nil {
			return fmt.Errorf("data store not initialized")
		}
		products := DataStore.Products()
		if len(products) == 0 {
			fmt.Println("No products loaded.")
			return nil
		}
		for _, p := range products {
			fmt.Printf("%-14s %-36s %8.4f %-4s %-12s %d\n",
				p.ID, p.Name, p.UnitPrice, p.Currency, p.StockStatus, p.StockQuantity)
		}
		return nil
	},
}

var dataResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard runtime overlay changes",
	Long: `Discard every runtime change made during this process, such as
shipment interceptions, restoring the orders to their on-disk state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Overlay == nil {
			return fmt.Errorf("overlay not initialized")
		}
		n := Overlay.Len()
		Overlay.Reset()
		fmt.Printf("Discarded %d overlay change(s).\n", n)
		return nil
	},
}

func init() {
	dataCmd.AddCommand(dataCustomersCmd)
	dataCmd.AddCommand(dataOrdersCmd)
	dataCmd.AddCommand(dataProductsCmd)
	dataCmd.AddCommand(dataResetCmd)
	rootCmd.AddCommand(dataCmd)
}
