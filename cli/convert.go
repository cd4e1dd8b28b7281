package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	currencysync "go-currency-sync"
	"go-currency-sync/config"
	"go-currency-sync/exchangerate"
)

// NewConvertCommand converts one amount through the provider's pair endpoint
func NewConvertCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "convert AMOUNT BASE TARGET",
		Short:   "Convert a single amount, e.g. convert 100 USD MYR",
		Args:    cobra.ExactArgs(3),
		Example: "  currencysync convert 100 USD MYR",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if cfg.Provider != config.ProviderExchangeRate {
				return fmt.Errorf("convert needs the %s provider, not %s", config.ProviderExchangeRate, cfg.Provider)
			}

			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}
			base := currencysync.Currency(args[1]).Normalize()
			target := currencysync.Currency(args[2]).Normalize()

			s := exchangerate.NewService(cfg.APIURL, cfg.APIKey, cfg.HTTP.Timeout)
			rate, err := s.Pair(cmd.Context(), base, target)
			if err != nil {
				return err
			}

			converted := amount.Mul(decimal.NewFromFloat(float64(rate)))
			printf(cmd.OutOrStdout(), "%s %s is equal to %s %s\n", amount.String(), base, converted.StringFixed(2), target)
			return nil
		},
	}
}
