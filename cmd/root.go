package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"commission-fees/app"
	"commission-fees/config"
	"commission-fees/exchange"
	"commission-fees/store"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	verbose bool

	// Loaded before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commission",
	Short: "Calculate commission fees for cash-in and cash-out operations",
	Long: `commission reads a batch of operations and prints the commission fee
of each one, in input order, one per line.

Deposits (cash_in) and withdrawals (cash_out) follow different rules;
amounts in other currencies are converted through the base currency, and
natural users get a weekly fee-free withdrawal allowance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging(cmd.ErrOrStderr())

		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with COMMISSION_ variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log processing details to stderr")
}

func configureLogging(w io.Writer) {
	// Ldate | Ltime for date and time, Lshortfile for file:line
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if verbose {
		log.SetOutput(w)
		return
	}
	log.SetOutput(io.Discard)
}

// Helper function to print errors and exit
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newConverter() (*exchange.Converter, error) {
	rates, err := cfg.RateTable()
	if err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}
	return exchange.NewConverter(rates), nil
}

func newBatchService(journal store.EventStore) (*app.BatchService, error) {
	converter, err := newConverter()
	if err != nil {
		return nil, err
	}
	return app.NewBatchService(store.NewMemoryStore(), journal, converter, cfg.BatchOptions()), nil
}
