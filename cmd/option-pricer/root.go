package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/scenario"
)

// cfg is populated by the root command before any subcommand runs.
var cfg config.Config

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbosity  int
	)

	root := &cobra.Command{
		Use:           "option-pricer",
		Short:         "Black-Scholes prices and Greeks for European options",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbosity") {
				loaded.Verbosity = verbosity
			}
			cfg = loaded
			logger.SetVerbosity(cfg.Verbosity)
			logger.Debugf("event=config_loaded cfg=%+v", cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON or YAML config")
	root.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", config.VerbosityInfo, "0=errors,1=info,2=debug,3=trace")

	root.AddCommand(
		newPriceCmd(),
		newRunCmd(),
		newGenerateCmd(),
		newHistVolCmd(),
		newMonteCarloCmd(),
		newServeCmd(),
	)
	return root
}

// contractFlags are the inputs shared by commands that take one contract.
type contractFlags struct {
	typ    string
	spot   float64
	strike float64
	years  float64
	days   float64
	rate   float64
	vol    float64
}

func (f *contractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.typ, "type", "t", "call", "option type: call or put")
	cmd.Flags().Float64Var(&f.spot, "spot", 0, "spot price of the underlying")
	cmd.Flags().Float64Var(&f.strike, "strike", 0, "strike price")
	cmd.Flags().Float64Var(&f.years, "years", 0, "time to expiry in years")
	cmd.Flags().Float64Var(&f.days, "days", 0, "time to expiry in calendar days (used when --years is 0)")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "risk-free rate, defaults to the configured rate")
	cmd.Flags().Float64Var(&f.vol, "vol", 0, "annualized volatility, e.g. 0.20")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("vol")
}

func (f *contractFlags) contract(cmd *cobra.Command) (pricing.OptionContract, error) {
	typ, err := pricing.ParseOptionType(f.typ)
	if err != nil {
		return pricing.OptionContract{}, err
	}

	T := f.years
	if T == 0 && f.days != 0 {
		T = f.days / scenario.DaysPerYear
	}
	if T == 0 {
		return pricing.OptionContract{}, fmt.Errorf("one of --years or --days is required")
	}

	rate := cfg.RiskFreeRate
	if cmd.Flags().Changed("rate") {
		rate = f.rate
	}

	return pricing.NewOptionContract(typ, f.spot, f.strike, T, rate, f.vol)
}
