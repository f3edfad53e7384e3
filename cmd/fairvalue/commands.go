package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/fairvalue/internal/batch"
	"github.com/seenimoa/fairvalue/internal/companies"
	"github.com/seenimoa/fairvalue/internal/history"
	"github.com/seenimoa/fairvalue/internal/peers"
	"github.com/seenimoa/fairvalue/internal/report"
	"github.com/seenimoa/fairvalue/internal/valuation"
	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// --- Value Command ---

var valueCmd = &cobra.Command{
	Use:   "value [file]",
	Short: "Value one company and print the full report",
	Long: `Value one company from a YAML or JSON input file and print the full
report. The primary output is appended to the valuation history.

Examples:
  fairvalue value acme.yaml
  fairvalue value portfolio.yaml --id acme --format html > acme.html
  fairvalue value acme.yaml --peers peers.html --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		c, err := loadCompany(args[0], id)
		if err != nil {
			return err
		}
		if peerFile, _ := cmd.Flags().GetString("peers"); peerFile != "" {
			m, err := loadPeers(peerFile)
			if err != nil {
				return err
			}
			c.Input = m.Apply(c.Input)
			log.Info("applied peer benchmarks",
				zap.String("file", peerFile),
				zap.Int("peers", m.Peers),
				zap.Float64("ev_ebitda", m.EVEBITDA),
				zap.Float64("pe", m.PE),
			)
		}

		format, err := reportFormat(cmd)
		if err != nil {
			return err
		}
		seedFlag, _ := cmd.Flags().GetUint64("seed")
		seed := resolveSeed(seedFlag)

		a, err := newValuator().Analyze(c.Input, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", c.ID, err)
		}
		log.Info("company valued",
			zap.String("company", c.ID),
			zap.Uint64("seed", seed),
			zap.Float64("fair_value", a.Output.FinalEquityValue),
			zap.String("recommendation", string(a.Output.Recommendation)),
		)

		if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
			recordHistory(cmd, c.ID, seed, a.Output)
		}

		return report.Render(cmd.OutOrStdout(), a, format, reportOptions())
	},
}

func init() {
	valueCmd.Flags().String("id", "", "company id to value when the file holds several")
	valueCmd.Flags().String("peers", "", "HTML peer table whose median multiples replace the comparables")
	valueCmd.Flags().String("format", "", "report format: text, json or html (default from config)")
	valueCmd.Flags().Uint64("seed", 0, "Monte Carlo seed (default from config, else random)")
	valueCmd.Flags().Bool("no-history", false, "do not append the result to the valuation history")
}

// --- Batch Command ---

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Value every company in a file concurrently",
	Long: `Value every company in a YAML or JSON file with a bounded worker pool
and print the portfolio summary. Companies that fail are listed with
their error and do not stop the others unless --fail-fast is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := companies.Load(args[0])
		if err != nil {
			return err
		}

		opts := batch.Options{Workers: cfg.Batch.Workers, FailFast: cfg.Batch.FailFast, Seed: cfg.Valuation.Seed}
		if cmd.Flags().Changed("workers") {
			opts.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("fail-fast") {
			opts.FailFast, _ = cmd.Flags().GetBool("fail-fast")
		}
		if cmd.Flags().Changed("seed") {
			opts.Seed, _ = cmd.Flags().GetUint64("seed")
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		var store history.Store
		if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
			store, err = openHistory()
			if err != nil {
				return err
			}
		}

		sum, runErr := batch.NewRunner(newValuator(), store, log, opts).Run(cmd.Context(), list)

		out := cmd.OutOrStdout()
		if asJSON {
			if err := report.JSON(out, sum); err != nil {
				return err
			}
		} else {
			outputs := make([]models.ValuationOutput, 0, len(sum.Results))
			for _, r := range sum.Results {
				outputs = append(outputs, r.Output())
			}
			fmt.Fprint(out, report.Summary(outputs, reportOptions()))
			writeFailures(out, sum.Errors)
		}

		if runErr != nil {
			return runErr
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d of %d companies failed", sum.Failed, sum.Total)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("workers", 0, "concurrent valuations (default from config)")
	batchCmd.Flags().Bool("fail-fast", false, "stop scheduling companies after the first failure")
	batchCmd.Flags().Uint64("seed", 0, "base Monte Carlo seed; company i uses seed+i")
	batchCmd.Flags().Bool("json", false, "print the batch summary as JSON")
	batchCmd.Flags().Bool("no-history", false, "do not append results to the valuation history")
}

// --- Sensitivity Command ---

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity [file]",
	Short: "Print the discount rate × terminal growth sensitivity grid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		c, err := loadCompany(args[0], id)
		if err != nil {
			return err
		}
		grid, err := valuation.SensitivityFor(c.Input)
		if err != nil {
			return fmt.Errorf("%s: %w", c.ID, err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(out, grid)
		}
		writeGrid(out, c.Input.Name, grid, cfg.Report.Currency)
		return nil
	},
}

func init() {
	sensitivityCmd.Flags().String("id", "", "company id when the file holds several")
	sensitivityCmd.Flags().Bool("json", false, "print the grid as JSON")
}

// --- Simulate Command ---

var simulateCmd = &cobra.Command{
	Use:   "simulate [file]",
	Short: "Run the Monte Carlo simulation around the fair value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		c, err := loadCompany(args[0], id)
		if err != nil {
			return err
		}

		p := monteCarloParams()
		if cmd.Flags().Changed("iterations") {
			p.Iterations, _ = cmd.Flags().GetInt("iterations")
		}
		seedFlag, _ := cmd.Flags().GetUint64("seed")
		seed := resolveSeed(seedFlag)

		mc, err := valuation.SimulateFor(c.Input, p, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", c.ID, err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(out, mc)
		}
		cur := cfg.Report.Currency
		fmt.Fprintf(out, "Monte Carlo: %s\n", c.Input.Name)
		fmt.Fprintf(out, "  %-12s %d (seed %d)\n", "Iterations", mc.Iterations, mc.Seed)
		fmt.Fprintf(out, "  %-12s %s\n", "Mean", utils.FormatMoney(mc.Mean, cur))
		fmt.Fprintf(out, "  %-12s %s\n", "Median", utils.FormatMoney(mc.Median, cur))
		fmt.Fprintf(out, "  %-12s %s\n", "Std dev", utils.FormatMoney(mc.StdDev, cur))
		fmt.Fprintf(out, "  %-12s %s\n", "P10", utils.FormatMoney(mc.P10, cur))
		fmt.Fprintf(out, "  %-12s %s\n", "P90", utils.FormatMoney(mc.P90, cur))
		return nil
	},
}

func init() {
	simulateCmd.Flags().String("id", "", "company id when the file holds several")
	simulateCmd.Flags().Uint64("seed", 0, "Monte Carlo seed (default from config, else random)")
	simulateCmd.Flags().Int("iterations", 0, "number of draws (default from config)")
	simulateCmd.Flags().Bool("json", false, "print the summary as JSON")
}

// --- Peers Command ---

var peersCmd = &cobra.Command{
	Use:   "peers [html-file]",
	Short: "Print median multiples from an HTML peer table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadPeers(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(out, m)
		}
		fmt.Fprintf(out, "Peer benchmarks (%d peers)\n", m.Peers)
		fmt.Fprintf(out, "  %-10s %s\n", "EV/EBITDA", multipleOrNA(m.EVEBITDA))
		fmt.Fprintf(out, "  %-10s %s\n", "P/E", multipleOrNA(m.PE))
		fmt.Fprintf(out, "  %-10s %s\n", "PEG", multipleOrNA(m.PEG))
		return nil
	},
}

func init() {
	peersCmd.Flags().Bool("json", false, "print the benchmarks as JSON")
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history [company-id]",
	Short: "List recorded valuations of a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("history is disabled (history.enabled = false)")
		}

		records, err := store.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%s: %w", args[0], history.ErrNotFound)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.JSON(out, records)
		}
		writeHistory(out, records, cfg.Report.Currency)

		if file, _ := cmd.Flags().GetString("file"); file != "" {
			info, err := os.Stat(file)
			if err != nil {
				return fmt.Errorf("company file: %w", err)
			}
			stale, err := history.IsStale(cmd.Context(), store, args[0], info.ModTime())
			if err != nil {
				return err
			}
			if stale {
				log.Warn("valuation is stale", zap.String("company", args[0]), zap.String("file", file))
				fmt.Fprintf(out, "\n  ⚠ STALE: %s changed %s, after the latest valuation\n",
					file, info.ModTime().Local().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintf(out, "\n  ✓ Up to date with %s\n", file)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Bool("json", false, "print the records as JSON")
	historyCmd.Flags().String("file", "", "company file; flags the latest valuation as stale when the file changed after it")
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// newValuator keeps the fixed simulation defaults so stored mc_p10/mc_p90
// are comparable across runs; config only tunes the simulate command.
func newValuator() *valuation.Valuator {
	return valuation.New(valuation.WithLogger(log))
}

func monteCarloParams() valuation.MonteCarloParams {
	return valuation.MonteCarloParams{
		GrowthVolatility:   cfg.Valuation.GrowthVolatility,
		DiscountVolatility: cfg.Valuation.DiscountVolatility,
		Iterations:         cfg.Valuation.Iterations,
	}
}

// resolveSeed prefers the flag, then the configured seed, then a fresh one.
func resolveSeed(flag uint64) uint64 {
	switch {
	case flag != 0:
		return flag
	case cfg.Valuation.Seed != 0:
		return cfg.Valuation.Seed
	default:
		return valuation.NewSeed()
	}
}

func reportOptions() report.Options {
	return report.Options{Currency: cfg.Report.Currency}
}

func reportFormat(cmd *cobra.Command) (report.Format, error) {
	name, _ := cmd.Flags().GetString("format")
	if name == "" {
		name = cfg.Report.Format
	}
	return report.ParseFormat(name)
}

// openHistory returns nil when history is disabled.
func openHistory() (history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.NewFileStore(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func recordHistory(cmd *cobra.Command, companyID string, seed uint64, out models.ValuationOutput) {
	store, err := openHistory()
	if err != nil {
		log.Warn("history unavailable", zap.Error(err))
		return
	}
	if store == nil {
		return
	}
	rec := history.NewRecord(companyID, seed, out)
	if err := store.Append(cmd.Context(), rec); err != nil {
		log.Warn("history append failed", zap.String("company", companyID), zap.Error(err))
		return
	}
	log.Debug("history recorded", zap.String("company", companyID), zap.String("record", rec.ID.String()))
}

// loadCompany picks one company from a file: the one with id, or the only
// one when id is empty.
func loadCompany(path, id string) (companies.Company, error) {
	list, err := companies.Load(path)
	if err != nil {
		return companies.Company{}, err
	}
	return pickCompany(list, id)
}

func pickCompany(list []companies.Company, id string) (companies.Company, error) {
	if id == "" {
		if len(list) != 1 {
			ids := make([]string, len(list))
			for i, c := range list {
				ids[i] = c.ID
			}
			return companies.Company{}, fmt.Errorf("file holds %d companies (%s): pass --id or use batch",
				len(list), strings.Join(ids, ", "))
		}
		return list[0], nil
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return companies.Company{}, fmt.Errorf("company %q not found", id)
}

func loadPeers(path string) (peers.Multiples, error) {
	f, err := os.Open(path)
	if err != nil {
		return peers.Multiples{}, fmt.Errorf("open peer table: %w", err)
	}
	defer f.Close()

	list, err := peers.ParseTable(f)
	if err != nil {
		return peers.Multiples{}, fmt.Errorf("%s: %w", path, err)
	}
	return peers.Benchmarks(list)
}

func multipleOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return utils.FormatMultiple(v)
}

func writeFailures(w io.Writer, failures []batch.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  FAILED (%d)\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  %-28s %s\n", f.CompanyID, f.Message)
	}
}

func writeGrid(w io.Writer, name string, grid models.SensitivityGrid, currency string) {
	fmt.Fprintf(w, "Sensitivity: %s (equity value)\n", name)
	fmt.Fprintf(w, "  %8s", "g \\ r")
	for _, dr := range grid.DiscountRates {
		fmt.Fprintf(w, " %11s", utils.FormatRate(dr))
	}
	fmt.Fprintln(w)
	for i, tg := range grid.TerminalGrowths {
		fmt.Fprintf(w, "  %8s", utils.FormatRate(tg))
		for j := range grid.DiscountRates {
			cell := grid.Cell(i, j)
			v := "N/A"
			if cell.Applicable {
				v = utils.FormatCompact(cell.Value, currency)
			}
			fmt.Fprintf(w, " %11s", v)
		}
		fmt.Fprintln(w)
	}
}

func writeHistory(w io.Writer, records []history.Record, currency string) {
	fmt.Fprintf(w, "  %-20s %14s %12s %10s  %-12s %s\n", "Valued at", "Fair value", "Per share", "Upside", "Rec.", "Seed")
	for _, r := range records {
		fmt.Fprintf(w, "  %-20s %14s %12s %10s  %-12s %d\n",
			r.ValuedAt.Local().Format("2006-01-02 15:04:05"),
			utils.FormatCompact(r.Output.FinalEquityValue, currency),
			utils.FormatMoney(r.Output.FinalPricePerShare, currency),
			utils.FormatPct(r.Output.UpsidePct),
			r.Output.Recommendation,
			r.Seed)
	}
}
