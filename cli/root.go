package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"go-currency-sync/coinbase"
	"go-currency-sync/config"
	"go-currency-sync/exchangerate"
	"go-currency-sync/rates"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	EnvFile  string
	LogLevel string
	Provider string
	Pivot    string
	Tracked  string

	// Config is loaded before any subcommand runs
	Config *config.Config
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "currencysync",
		Short:         "Live multi-currency converter",
		Long:          "Type an amount in one currency and see it in every other tracked currency.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "config.env", "optional dotenv file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.Provider, "provider", "", "exchangerate|coinbase (overrides CURRENCY_PROVIDER)")
	cmd.PersistentFlags().StringVar(&opts.Pivot, "pivot", "", "pivot currency (overrides CURRENCY_PIVOT)")
	cmd.PersistentFlags().StringVar(&opts.Tracked, "tracked", "", "comma separated tracked currencies (overrides CURRENCY_TRACKED)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBoardCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// load reads the config and applies flags given on the command line
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil && cfg == nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("provider") {
		cfg.Provider = o.Provider
	}
	if flags.Changed("pivot") {
		cfg.Pivot = o.Pivot
	}
	if flags.Changed("tracked") {
		cfg.Tracked = o.Tracked
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.Config = cfg
	return nil
}

// Logger a logfmt logger filtered at the configured level
func (o *RootOptions) Logger(w io.Writer) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(logger, allow(o.Config.LogLevel))
}

// allow maps a level name to a filter option, unknown names mean info
func allow(name string) level.Option {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	case "none":
		return level.AllowNone()
	}
	return level.AllowInfo()
}

// Source the configured rate provider, decorated with logging
func (o *RootOptions) Source(logger log.Logger) rates.Source {
	timeout := o.Config.HTTP.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var source rates.Source
	switch o.Config.Provider {
	case config.ProviderCoinbase:
		source = coinbase.NewService(timeout)
	default:
		source = exchangerate.NewService(o.Config.APIURL, o.Config.APIKey, timeout)
	}
	return rates.NewLoggingSource(log.With(logger, "component", o.Config.Provider), source)
}

func printf(w io.Writer, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(w, format, a...)
}
