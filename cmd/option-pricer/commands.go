package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/scenario"
	"github.com/contactkeval/option-pricer/internal/server"
)

func newPriceCmd() *cobra.Command {
	var (
		f      contractFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one contract and print its Greeks",
		Example: "  option-pricer price --type call --spot 100 --strike 105 --years 1 --rate 0.05 --vol 0.1985\n" +
			"  option-pricer price -t put --spot 100 --strike 95 --days 30 --vol 0.25 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.contract(cmd)
			if err != nil {
				return err
			}
			v, err := pricing.Valuate(c)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(server.PriceResponse{Valuation: v, VegaPerPoint: v.VegaPerPoint(), ThetaPerDay: v.ThetaPerDay()})
			}

			report.WriteTable(cmd.OutOrStdout(), []report.Row{report.FromValuation("contract", c, v)})
			fmt.Fprintf(cmd.OutOrStdout(), "d1=%s d2=%s vega is per 1.00 vol change (per point: %s), theta is per year (per day: %s)\n",
				report.Fixed(v.D1), report.Fixed(v.D2), report.Fixed(v.VegaPerPoint()), report.Fixed(v.ThetaPerDay()))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		scenarioPath string
		outDir       string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Value every contract of a scenario file (default: the worked example)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := scenario.Default()
			if scenarioPath != "" {
				loaded, err := scenario.LoadFile(scenarioPath)
				if err != nil {
					return err
				}
				sc = loaded
			}
			if sc.StrikeInterval == 0 {
				sc.StrikeInterval = cfg.StrikeInterval
			}

			start := time.Now()
			legs, err := sc.Resolve(cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			rows := report.FromResolved(legs)

			if format == "" {
				format = cfg.Format
			}
			if outDir == "" {
				outDir = cfg.ReportDir
			}
			if err := emit(cmd, format, outDir, sc.Name, rows); err != nil {
				return err
			}
			logger.Infof("event=run_done scenario=%s contracts=%d elapsed=%v", sc.Name, len(rows), time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (.json, .yaml, .csv)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "report directory for json/csv output")
	cmd.Flags().StringVarP(&format, "format", "f", "", "table, json or csv")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		count  int
		seed   int64
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Value randomly generated contracts from a seeded generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Seed
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			logger.Infof("event=generate count=%d seed=%d", count, seed)

			sc := scenario.NewGenerator(seed, scenario.DefaultRanges()).Scenario("synthetic", count)
			names, contracts, buildErrs := sc.Build(cfg.RiskFreeRate)

			results := pricing.ValuateBatch(cmd.Context(), contracts, cfg.Workers)
			for i, err := range buildErrs {
				if err != nil {
					results[i].Err = err
				}
			}

			if format == "" {
				format = cfg.Format
			}
			if outDir == "" {
				outDir = cfg.ReportDir
			}
			return emit(cmd, format, outDir, sc.Name, report.FromBatch(names, contracts, results))
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of contracts")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 = time based")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "report directory for json/csv output")
	cmd.Flags().StringVarP(&format, "format", "f", "", "table, json or csv")
	return cmd
}

func newHistVolCmd() *cobra.Command {
	var (
		file     string
		periods  float64
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "histvol",
		Short: "Annualized historical volatility from a CSV of closes (columns \"close\" and optional \"date\")",
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := data.LoadBars(file)
			if err != nil {
				return err
			}

			var start, end time.Time
			if from != "" {
				if start, err = time.Parse(data.DateLayout, from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			if to != "" {
				if end, err = time.Parse(data.DateLayout, to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			if bars, err = data.Between(bars, start, end); err != nil {
				return err
			}
			logger.Debugf("event=histvol file=%s bars=%d periods=%g", file, len(bars), periods)

			hv, err := pricing.HistoricalVolatility(data.Closes(bars), periods)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.Fixed(hv))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file with a close column")
	cmd.Flags().Float64Var(&periods, "periods", pricing.TradingDaysPerYear, "periods per year")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	var (
		f     contractFlags
		paths int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Cross-check the closed-form price against a seeded Monte Carlo simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.contract(cmd)
			if err != nil {
				return err
			}
			v, err := pricing.Valuate(c)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("seed") {
				seed = cfg.Seed
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			mc, err := pricing.MonteCarlo(c, paths, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "closed form: %s\nmonte carlo: %s ± %s (95%%: %s .. %s, %d paths, seed %d)\ninside interval: %t\n",
				report.Fixed(v.Price), report.Fixed(mc.Price), report.Fixed(mc.StdErr),
				report.Fixed(mc.Low), report.Fixed(mc.High), mc.Paths, seed, mc.Contains(v.Price))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&paths, "paths", 200000, "number of simulated paths")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 = time based")
	return cmd
}

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = cfg.Listen
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg).ListenAndServe(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, defaults to the configured one")
	return cmd
}

// emit prints a table to stdout or writes json/csv reports into outDir.
func emit(cmd *cobra.Command, format, outDir, name string, rows []report.Row) error {
	switch format {
	case config.FormatTable:
		report.WriteTable(cmd.OutOrStdout(), rows)
		return nil
	case config.FormatJSON, config.FormatCSV:
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", format)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("could not create output dir %s: %w", outDir, err)
	}
	if format == config.FormatJSON {
		if err := report.WriteJSON(report.Result{Scenario: name, Rows: rows}, outDir); err != nil {
			return err
		}
	} else if err := report.WriteCSV(rows, outDir); err != nil {
		return err
	}
	logger.Infof("event=report_written format=%s dir=%s rows=%d", format, outDir, len(rows))
	return nil
}
