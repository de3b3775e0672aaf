package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"commission-fees/app"
	"commission-fees/domain"
	"commission-fees/events"
	"commission-fees/feed"
	"commission-fees/store"

	"github.com/spf13/cobra"
)

var (
	grants      []string
	showJournal bool
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate FILE",
	Short: "Print the commission of every operation in a CSV file",
	Long: `Reads operations in the form

  2016-01-05,1,natural,cash_in,200.00,EUR

from FILE ("-" for stdin) and prints one commission per line.

Extra allowances can be granted with --grant USER:START:END:AMOUNT,
e.g. --grant 4:2016-01-04:2016-01-10:500.00 (amount in the base currency).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, closeIn, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		records, err := feed.ParseCSV(in)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		commands := make([]app.GrantAllowanceCommand, 0, len(grants))
		for _, g := range grants {
			grantCmd, err := parseGrant(g)
			if err != nil {
				return err
			}
			commands = append(commands, grantCmd)
		}

		journal := store.NewInMemoryEventStore()
		service, err := newBatchService(journal)
		if err != nil {
			return err
		}

		ops, err := service.Ingest(records)
		if err != nil {
			return fmt.Errorf("failed to ingest operations: %w", err)
		}
		for _, grantCmd := range commands {
			if _, err := service.Grant(grantCmd); err != nil {
				return fmt.Errorf("failed to grant allowance to user %d: %w", grantCmd.UserID, err)
			}
		}

		results, err := service.Calculate(ops)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, result := range results {
			fmt.Fprintln(out, result.Formatted)
		}

		if showJournal {
			return printJournal(cmd.ErrOrStderr(), journal, service.Discounts())
		}
		return nil
	},
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func parseGrant(s string) (app.GrantAllowanceCommand, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return app.GrantAllowanceCommand{}, fmt.Errorf("invalid grant format: %q. Use USER:START:END:AMOUNT (e.g., 4:2016-01-04:2016-01-10:500.00)", s)
	}
	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return app.GrantAllowanceCommand{}, fmt.Errorf("invalid user id in grant %q: %v", s, err)
	}
	start, err := time.Parse(time.DateOnly, parts[1])
	if err != nil {
		return app.GrantAllowanceCommand{}, fmt.Errorf("invalid start date in grant %q: %v", s, err)
	}
	end, err := time.Parse(time.DateOnly, parts[2])
	if err != nil {
		return app.GrantAllowanceCommand{}, fmt.Errorf("invalid end date in grant %q: %v", s, err)
	}
	amount, err := domain.ParseMinorUnits(parts[3])
	if err != nil {
		return app.GrantAllowanceCommand{}, fmt.Errorf("invalid amount in grant %q: %w", s, err)
	}
	return app.GrantAllowanceCommand{UserID: userID, PeriodStart: start, PeriodEnd: end, Amount: amount}, nil
}

func printJournal(w io.Writer, journal store.EventStore, discounts *app.DiscountRepository) error {
	for _, id := range journal.AggregateIDs() {
		history, err := journal.GetEvents(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Allowance %s\n", id)
		for _, event := range history {
			base := event.GetBase()
			switch e := event.(type) {
			case events.AllowanceGrantedEvent:
				fmt.Fprintf(w, "  v%d %s user=%d period=%s..%s total=%d\n", base.Version, base.Type,
					e.UserID, e.PeriodStart.Format(time.DateOnly), e.PeriodEnd.Format(time.DateOnly), e.Total)
			case events.AllowanceConsumedEvent:
				fmt.Fprintf(w, "  v%d %s requested=%d covered=%d uncovered=%d remaining=%d\n", base.Version, base.Type,
					e.Requested, e.Covered, e.Uncovered, e.Remaining)
			default:
				fmt.Fprintf(w, "  v%d %s\n", base.Version, base.Type)
			}
		}

		replayed, err := discounts.Replay(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  remaining after replay: %d of %d\n", replayed.Remaining, replayed.Total)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(calculateCmd)

	calculateCmd.Flags().StringSliceVarP(&grants, "grant", "g", []string{}, "Allowance in USER:START:END:AMOUNT format. Can be used multiple times.")
	calculateCmd.Flags().BoolVar(&showJournal, "journal", false, "Print the allowance event journal to stderr after the run")
}
