package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fairvalue/internal/companies"
	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/history"
	"github.com/seenimoa/fairvalue/internal/valuation"
)

const acmeInput = `
    name: Acme Analytics
    sector: Technology
    revenue: 5000000
    ebitda: 1500000
    depreciation: 100000
    capex_pct: 0.05
    working_capital_change: -50000
    profit_margin: 0.15
    growth_rate_y1: 0.30
    growth_rate_y2: 0.25
    growth_rate_y3: 0.20
    terminal_growth: 0.03
    tax_rate: 0.25
    shares_outstanding: 1000000
    debt: 500000
    cash: 1000000
    market_cap_estimate: 3000000
    beta: 1.5
    risk_free_rate: 0.04
    market_risk_premium: 0.07
    country_risk_premium: 0
    size_premium: 0.03
    comparable_ev_ebitda: 12
    comparable_pe: 25
    comparable_peg: 1.5
`

// workspace writes a config file and returns its path and the temp dir.
func workspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "valuation:\n  iterations: 200\n" +
		"history:\n  enabled: true\n  path: " + filepath.Join(dir, "history.jsonl") + "\n" +
		"logging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, dir
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores flag defaults; cobra keeps values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestValueCommandRecordsHistory(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "acme.yaml", "id: acme\ninput:"+acmeInput)

	out, err := execute(t, "value", file, "--config", cfgPath, "--seed", "42", "--format", "json")
	require.NoError(t, err)

	var analysis struct {
		Output struct {
			Name           string `json:"name"`
			Recommendation string `json:"recommendation"`
		} `json:"output"`
		MonteCarlo struct {
			Iterations int    `json:"iterations"`
			Seed       uint64 `json:"seed"`
		} `json:"monte_carlo"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, "Acme Analytics", analysis.Output.Name)
	assert.Equal(t, "STRONG BUY", analysis.Output.Recommendation)

	out, err = execute(t, "history", "acme", "--config", cfgPath, "--json")
	require.NoError(t, err)

	var records []history.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "acme", records[0].CompanyID)
	assert.Equal(t, uint64(42), records[0].Seed)
}

func TestValueCommandIgnoresSimulationConfig(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "acme.yaml", "id: acme\ninput:"+acmeInput)

	list, err := companies.Load(file)
	require.NoError(t, err)
	want, err := valuation.New().Valuate(list[0].Input, 42)
	require.NoError(t, err)

	out, err := execute(t, "value", file, "--config", cfgPath, "--seed", "42", "--format", "json", "--no-history")
	require.NoError(t, err)

	var analysis struct {
		Output struct {
			MCP10 float64 `json:"mc_p10"`
			MCP90 float64 `json:"mc_p90"`
		} `json:"output"`
		MonteCarlo struct {
			Iterations int `json:"iterations"`
		} `json:"monte_carlo"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, valuation.DefaultMonteCarlo().Iterations, analysis.MonteCarlo.Iterations)
	assert.Equal(t, want.MCP10, analysis.Output.MCP10)
	assert.Equal(t, want.MCP90, analysis.Output.MCP90)

	// simulate is the one command tuned by the configured iterations.
	out, err = execute(t, "simulate", file, "--config", cfgPath, "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "200 (seed 42)")
}

func TestHistoryCommandFlagsStaleValuation(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "acme.yaml", "id: acme\ninput:"+acmeInput)

	_, err := execute(t, "value", file, "--config", cfgPath, "--seed", "3")
	require.NoError(t, err)

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(file, past, past))
	out, err := execute(t, "history", "acme", "--config", cfgPath, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date with")

	future := time.Now().Add(24 * time.Hour)
	require.NoError(t, os.Chtimes(file, future, future))
	out, err = execute(t, "history", "acme", "--config", cfgPath, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "STALE")
}

func TestValueCommandTextReport(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "acme.yaml", "id: acme\ninput:"+acmeInput)

	out, err := execute(t, "value", file, "--config", cfgPath, "--seed", "7", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "★ RECOMMENDATION")
	assert.Contains(t, out, "STRONG BUY")

	_, err = execute(t, "history", "acme", "--config", cfgPath)
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestBatchCommandReportsFailures(t *testing.T) {
	cfgPath, dir := workspace(t)
	broken := strings.Replace(acmeInput, "revenue: 5000000", "revenue: 0", 1)
	file := writeFile(t, dir, "portfolio.yaml",
		"companies:\n  - id: acme\n    input:"+indent(acmeInput)+"  - id: broken\n    input:"+indent(broken))

	out, err := execute(t, "batch", file, "--config", cfgPath, "--seed", "100", "--workers", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 companies failed")
	assert.Contains(t, out, "PORTFOLIO SUMMARY (1 companies)")
	assert.Contains(t, out, "FAILED (1)")
	assert.Contains(t, out, "broken")
}

func TestSensitivityAndSimulateCommands(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "acme.yaml", "id: acme\ninput:"+acmeInput)

	out, err := execute(t, "sensitivity", file, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sensitivity: Acme Analytics")
	assert.Contains(t, out, "g \\ r")

	out, err = execute(t, "simulate", file, "--config", cfgPath, "--seed", "9", "--iterations", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "50 (seed 9)")
}

func TestPeersCommand(t *testing.T) {
	cfgPath, dir := workspace(t)
	file := writeFile(t, dir, "peers.html", `<html><body><table>
<thead><tr><th>Name</th><th>EV/EBITDA</th><th>P/E</th><th>PEG</th></tr></thead>
<tbody>
<tr><td>Alpha</td><td>10x</td><td>20</td><td>1.2</td></tr>
<tr><td>Beta</td><td>14x</td><td>30</td><td>-</td></tr>
</tbody></table></body></html>`)

	out, err := execute(t, "peers", file, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Peer benchmarks (2 peers)")
	assert.Contains(t, out, "12.00x")
	assert.Contains(t, out, "25.00x")
}

func TestPickCompany(t *testing.T) {
	list := []companies.Company{{ID: "a"}, {ID: "b"}}

	_, err := pickCompany(list, "")
	assert.ErrorContains(t, err, "pass --id")

	c, err := pickCompany(list, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", c.ID)

	_, err = pickCompany(list, "zzz")
	assert.ErrorContains(t, err, `"zzz" not found`)

	c, err = pickCompany(list[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "a", c.ID)
}

func TestResolveSeed(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	cfg = &config.Config{}
	assert.Equal(t, uint64(5), resolveSeed(5))

	cfg.Valuation.Seed = 11
	assert.Equal(t, uint64(11), resolveSeed(0))
	assert.Equal(t, uint64(5), resolveSeed(5))
}

// indent nests an input block one list level deeper.
func indent(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ") + "\n"
}
