package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ratesCmd represents the rates command
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the configured exchange rates",
	Long:  `Lists how many units of each currency one unit of the base currency buys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cfg.RateTable()
		if err != nil {
			return fmt.Errorf("invalid rate table: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Base currency: %s\n", table.BaseCurrency())
		for _, cur := range table.Currencies() {
			rate, err := table.Rate(cur)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s: %s (precision %d)\n", cur, rate.String(), cfg.Precision.For(cur))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}
