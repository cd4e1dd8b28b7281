package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	currencysync "go-currency-sync"
	"go-currency-sync/engine"
	"go-currency-sync/rates"
)

// NewBoardCommand fetches rates once, applies edits in order and prints every field
func NewBoardCommand(opts *RootOptions) *cobra.Command {
	var edits []string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board once, optionally after edits like --edit MYR=250",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			logger := opts.Logger(os.Stderr)

			e := engine.NewLoggingEngine(log.With(logger, "component", "engine"), engine.New())
			if err := e.Initialize(cfg.TrackedCurrencies(), cfg.PivotCurrency()); err != nil {
				return err
			}

			table, fetchErr := rates.Fetch(cmd.Context(), opts.Source(logger), cfg.PivotCurrency())
			if _, err := e.LoadRates(table, fetchErr); err != nil {
				return err
			}
			if fetchErr != nil {
				printf(cmd.ErrOrStderr(), "rates unavailable: %v\n", fetchErr)
			}

			for _, edit := range edits {
				code, text, ok := strings.Cut(edit, "=")
				if !ok {
					return fmt.Errorf("edit %q: want CODE=AMOUNT", edit)
				}
				if e.OnFieldEdited(currencysync.Currency(code), text) == nil {
					printf(cmd.ErrOrStderr(), "edit %s ignored\n", edit)
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range e.Snapshot() {
				printf(w, "%s\t%s\t\n", f.Code, f.Display)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&edits, "edit", nil, "CODE=AMOUNT typed into a field, repeatable")
	return cmd
}
