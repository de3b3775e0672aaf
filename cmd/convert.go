package cmd

import (
	"fmt"

	"commission-fees/shared"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	convAmountStr    string
	convFromCurrency string
	convToCurrency   string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an amount between two currencies",
	Long:  `Converts an amount using the configured rate table. Conversions always go through the base currency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := shared.ParseCurrency(convFromCurrency)
		if err != nil {
			return fmt.Errorf("invalid source currency: %w", err)
		}
		to, err := shared.ParseCurrency(convToCurrency)
		if err != nil {
			return fmt.Errorf("invalid target currency: %w", err)
		}

		amount, err := decimal.NewFromString(convAmountStr)
		if err != nil {
			return fmt.Errorf("invalid amount format: %q. %v", convAmountStr, err)
		}
		if amount.IsNegative() {
			return fmt.Errorf("conversion amount cannot be negative: %s", amount)
		}

		converter, err := newConverter()
		if err != nil {
			return err
		}
		converted, err := converter.Convert(amount, to, from)
		if err != nil {
			return fmt.Errorf("failed to convert currency: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n",
			amount.StringFixed(cfg.Precision.For(from)), from,
			converted.StringFixed(cfg.Precision.For(to)), to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convAmountStr, "amount", "", "Amount in the source currency (required)")
	convertCmd.Flags().StringVar(&convFromCurrency, "from", "", "Source currency code (required)")
	convertCmd.Flags().StringVar(&convToCurrency, "to", "", "Target currency code (required)")
	_ = convertCmd.MarkFlagRequired("amount")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}
