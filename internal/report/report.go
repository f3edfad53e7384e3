package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Options controls report rendering.
type Options struct {
	Currency    string    // currency symbol (default "$")
	Title       string    // custom report title (optional)
	GeneratedAt time.Time // default: now
	ChartCfg    ChartConfig
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = "$"
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	if o.ChartCfg.Width == 0 {
		o.ChartCfg = DefaultChartConfig()
	}
	return o
}

// ════════════════════════════════════════════════════════════════════
// Report Data: flattened for text and HTML rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the view model shared by the text and HTML renderers.
type ReportData struct {
	// Header
	Title       string
	CompanyName string
	Sector      string
	GeneratedAt string

	// Recommendation
	Recommendation      string
	RecommendationClass string
	TargetPrice         string
	CurrentPrice        string
	Upside              string
	UpsidePositive      bool
	Range               []RatioRow

	// Sections
	Capital     []RatioRow
	Projection  []ProjectionRow
	Terminal    []RatioRow
	TVClamped   bool
	DCF         []RatioRow
	Comparables []RatioRow
	Blend       []RatioRow
	Ratios      []RatioRow
	ZScore      string
	ZZone       string

	// Sensitivity grid, rows by terminal growth, columns by discount rate
	SensRates []string
	SensRows  []SensitivityRow

	MonteCarlo []RatioRow

	// Charts (embedded SVG strings)
	MethodChart template.HTML
}

// RatioRow represents a key-value row.
type RatioRow struct {
	Label string
	Value string
}

// ProjectionRow is one forecast year.
type ProjectionRow struct {
	Year    int
	Growth  string
	Revenue string
	EBITDA  string
	FCF     string
	PVFCF   string
}

// SensitivityRow is one terminal growth rate across all discount rates.
type SensitivityRow struct {
	Growth string
	Cells  []string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// Text renders a plain-text valuation report (terminal / CLI friendly).
func Text(a *models.ValuationAnalysis, opts Options) (string, error) {
	if a == nil {
		return "", fmt.Errorf("analysis is nil")
	}
	return renderTextReport(buildReportData(a, opts.withDefaults())), nil
}

// HTML renders a self-contained HTML valuation report.
func HTML(a *models.ValuationAnalysis, opts Options) (string, error) {
	if a == nil {
		return "", fmt.Errorf("analysis is nil")
	}
	opts = opts.withDefaults()
	data := buildReportData(a, opts)
	data.MethodChart = template.HTML(methodChart(a, opts))

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// Render dispatches to the renderer for format and writes the result to w.
func Render(w io.Writer, a *models.ValuationAnalysis, format Format, opts Options) error {
	var (
		out string
		err error
	)
	switch format {
	case FormatJSON:
		return JSON(w, a)
	case FormatHTML:
		out, err = HTML(a, opts)
	default:
		out, err = Text(a, opts)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// ════════════════════════════════════════════════════════════════════
// Internal: build report data
// ════════════════════════════════════════════════════════════════════

func buildReportData(a *models.ValuationAnalysis, opts Options) ReportData {
	out := a.Output
	cur := opts.Currency
	money := func(v float64) string { return utils.FormatMoney(v, cur) }
	compact := func(v float64) string { return utils.FormatCompact(v, cur) }

	data := ReportData{
		Title:       opts.Title,
		CompanyName: out.Name,
		Sector:      out.Sector,
		GeneratedAt: opts.GeneratedAt.UTC().Format("02 Jan 2006, 15:04 UTC"),

		Recommendation:      string(out.Recommendation),
		RecommendationClass: recommendationClass(out.Recommendation),
		TargetPrice:         money(a.Range.TargetPrice),
		CurrentPrice:        money(out.CurrentPrice),
		Upside:              utils.FormatPct(out.UpsidePct),
		UpsidePositive:      out.UpsidePct >= 0,
		ZScore:              fmt.Sprintf("%.2f", a.ZScore.Score),
		ZZone:               string(a.ZScore.Zone),
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("%s: Fair Value Report", out.Name)
	}

	data.Range = []RatioRow{
		{Label: "Bear (-25%)", Value: fmt.Sprintf("%s (%s/share)", compact(a.Range.Bear), money(a.Range.BearPerShare))},
		{Label: "Base", Value: fmt.Sprintf("%s (%s/share)", compact(a.Range.Base), money(a.Range.BasePerShare))},
		{Label: "Bull (+25%)", Value: fmt.Sprintf("%s (%s/share)", compact(a.Range.Bull), money(a.Range.BullPerShare))},
	}

	c := a.Capital
	data.Capital = []RatioRow{
		{Label: "Cost of equity", Value: utils.FormatRate(c.CostOfEquity)},
		{Label: "Cost of debt", Value: fmt.Sprintf("%s (spread %s)", utils.FormatRate(c.CostOfDebt), utils.FormatRate(c.CreditSpread))},
		{Label: "Weights E / D", Value: fmt.Sprintf("%s / %s", utils.FormatRate(c.WeightEquity), utils.FormatRate(c.WeightDebt))},
		{Label: "WACC", Value: utils.FormatRate(c.WACC)},
	}

	for _, y := range a.DCF.Years {
		data.Projection = append(data.Projection, ProjectionRow{
			Year:    y.Year,
			Growth:  utils.FormatRate(y.Growth),
			Revenue: compact(y.Revenue),
			EBITDA:  compact(y.EBITDA),
			FCF:     compact(y.FCF),
			PVFCF:   compact(y.PVFCF),
		})
	}

	tv := a.DCF.Terminal
	data.TVClamped = tv.Clamped
	data.Terminal = []RatioRow{
		{Label: "Terminal FCF", Value: money(tv.TerminalFCF)},
		{Label: "Terminal growth", Value: utils.FormatRate(tv.Growth)},
		{Label: "Terminal value", Value: money(tv.Value)},
		{Label: "PV of terminal value", Value: money(tv.PresentValue)},
	}

	data.DCF = []RatioRow{
		{Label: "Sum PV(FCF)", Value: money(a.DCF.SumPVFCF)},
		{Label: "Enterprise value", Value: money(a.DCF.EnterpriseValue)},
		{Label: "+ Cash", Value: money(a.Input.Cash)},
		{Label: "- Debt", Value: money(a.Input.Debt)},
		{Label: "Equity value", Value: money(a.DCF.EquityValue)},
		{Label: "Per share", Value: money(a.DCF.PricePerShare)},
	}

	cm := a.Comparables
	data.Comparables = []RatioRow{
		{Label: "EV/EBITDA multiple", Value: utils.FormatMultiple(a.Input.ComparableEVEBITDA)},
		{Label: "Implied EV", Value: money(cm.ImpliedEV)},
		{Label: "Implied equity (EV)", Value: money(cm.ImpliedEquityEV)},
		{Label: "P/E multiple", Value: utils.FormatMultiple(a.Input.ComparablePE)},
		{Label: "Net profit", Value: money(cm.Profit)},
		{Label: "Implied equity (P/E)", Value: money(cm.ImpliedEquityPE)},
		{Label: "Company P/E (DCF)", Value: naIfZero(cm.CompanyPE, utils.FormatMultiple)},
		{Label: "Implied PEG", Value: fmt.Sprintf("%s vs industry %.2f", naIfZero(cm.ImpliedPEG, func(v float64) string { return fmt.Sprintf("%.2f", v) }), a.Input.ComparablePEG)},
	}

	data.Blend = []RatioRow{
		{Label: "DCF (50%)", Value: money(out.DCFEquityValue)},
		{Label: "EV/EBITDA (25%)", Value: money(out.CompEVValue)},
		{Label: "P/E (25%)", Value: money(out.CompPEValue)},
		{Label: "Fair value", Value: money(out.FinalEquityValue)},
		{Label: "Market cap", Value: money(out.MarketCap)},
	}

	r := a.Ratios
	data.Ratios = []RatioRow{
		{Label: "EV/EBITDA", Value: utils.FormatMultiple(r.EVEBITDA)},
		{Label: "EV/Revenue", Value: utils.FormatMultiple(r.EVRevenue)},
		{Label: "P/E", Value: utils.FormatMultiple(r.PE)},
		{Label: "FCF yield", Value: fmt.Sprintf("%.2f%%", r.FCFYield)},
		{Label: "ROE", Value: fmt.Sprintf("%.2f%%", r.ROE)},
		{Label: "ROIC", Value: fmt.Sprintf("%.2f%%", r.ROIC)},
		{Label: "EBITDA margin", Value: fmt.Sprintf("%.2f%%", r.EBITDAMargin)},
		{Label: "Debt/Equity", Value: fmt.Sprintf("%.2f", r.DebtToEquity)},
		{Label: "Net debt/EBITDA", Value: fmt.Sprintf("%.2f", r.NetDebtToEBITDA)},
		{Label: "Interest coverage", Value: fmt.Sprintf("%.2f", r.InterestCoverage)},
	}

	grid := a.Sensitivity
	for _, dr := range grid.DiscountRates {
		data.SensRates = append(data.SensRates, utils.FormatRate(dr))
	}
	for i, tg := range grid.TerminalGrowths {
		row := SensitivityRow{Growth: utils.FormatRate(tg)}
		for j := range grid.DiscountRates {
			cell := grid.Cell(i, j)
			if cell.Applicable {
				row.Cells = append(row.Cells, compact(cell.Value))
			} else {
				row.Cells = append(row.Cells, "N/A")
			}
		}
		data.SensRows = append(data.SensRows, row)
	}

	mc := a.MonteCarlo
	data.MonteCarlo = []RatioRow{
		{Label: "Iterations", Value: fmt.Sprintf("%d (seed %d)", mc.Iterations, mc.Seed)},
		{Label: "Mean", Value: money(mc.Mean)},
		{Label: "Median", Value: money(mc.Median)},
		{Label: "Std dev", Value: money(mc.StdDev)},
		{Label: "P10 / P90", Value: fmt.Sprintf("%s / %s", money(mc.P10), money(mc.P90))},
	}

	return data
}

func naIfZero(v float64, format func(float64) string) string {
	if v == 0 {
		return "N/A"
	}
	return format(v)
}

func recommendationClass(r models.Recommendation) string {
	switch r {
	case models.StrongBuy:
		return "strong-buy"
	case models.Buy:
		return "buy"
	case models.Hold:
		return "hold"
	case models.Underweight:
		return "sell"
	case models.Sell:
		return "strong-sell"
	default:
		return "neutral"
	}
}

func methodChart(a *models.ValuationAnalysis, opts Options) string {
	cfg := opts.ChartCfg
	cfg.Height = 260
	cfg.Title = "Equity value by method"
	return HorizontalBarChart([]BarItem{
		{Label: "DCF", Value: a.Output.DCFEquityValue},
		{Label: "EV/EBITDA", Value: a.Output.CompEVValue},
		{Label: "P/E", Value: a.Output.CompPEValue},
		{Label: "Fair value", Value: a.Output.FinalEquityValue, Color: "#2563eb"},
		{Label: "Market cap", Value: a.Output.MarketCap, Color: "#9ca3af"},
	}, cfg, func(v float64) string { return utils.FormatCompact(v, opts.Currency) })
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 72)
	thinLine := strings.Repeat("─", 72)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Sector: %s | Generated: %s\n", d.Sector, d.GeneratedAt))
	sb.WriteString(line + "\n")

	// Recommendation
	sb.WriteString("\n  ★ RECOMMENDATION\n")
	sb.WriteString(fmt.Sprintf("  %s | Target: %s | Current: %s | Upside: %s\n",
		d.Recommendation, d.TargetPrice, d.CurrentPrice, d.Upside))
	writeRows(&sb, d.Range)
	sb.WriteString(thinLine + "\n")

	writeSection := func(title string, rows []RatioRow) {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		writeRows(&sb, rows)
		sb.WriteString(thinLine + "\n")
	}

	writeSection("COST OF CAPITAL", d.Capital)

	// Projection
	sb.WriteString("\n  ■ 10-YEAR PROJECTION\n")
	sb.WriteString(fmt.Sprintf("    %4s %8s %12s %12s %12s %12s\n", "Year", "Growth", "Revenue", "EBITDA", "FCF", "PV(FCF)"))
	for _, p := range d.Projection {
		sb.WriteString(fmt.Sprintf("    %4d %8s %12s %12s %12s %12s\n", p.Year, p.Growth, p.Revenue, p.EBITDA, p.FCF, p.PVFCF))
	}
	sb.WriteString(thinLine + "\n")

	terminalTitle := "TERMINAL VALUE"
	if d.TVClamped {
		terminalTitle += " (growth clamped below WACC)"
	}
	writeSection(terminalTitle, d.Terminal)
	writeSection("DCF SUMMARY", d.DCF)
	writeSection("COMPARABLES", d.Comparables)
	writeSection("VALUATION BLEND", d.Blend)
	writeSection("KEY RATIOS", d.Ratios)

	sb.WriteString("\n  ■ ALTMAN Z-SCORE (proxy)\n")
	sb.WriteString(fmt.Sprintf("    %-22s %s (%s)\n", "Z-score", d.ZScore, d.ZZone))
	sb.WriteString(thinLine + "\n")

	// Sensitivity
	sb.WriteString("\n  ■ SENSITIVITY (equity value, terminal growth × discount rate)\n")
	sb.WriteString(fmt.Sprintf("    %8s", "g \\ r"))
	for _, r := range d.SensRates {
		sb.WriteString(fmt.Sprintf(" %11s", r))
	}
	sb.WriteString("\n")
	for _, row := range d.SensRows {
		sb.WriteString(fmt.Sprintf("    %8s", row.Growth))
		for _, c := range row.Cells {
			sb.WriteString(fmt.Sprintf(" %11s", c))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(thinLine + "\n")

	writeSection("MONTE CARLO", d.MonteCarlo)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Disclaimer: Model output for educational purposes. Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

func writeRows(sb *strings.Builder, rows []RatioRow) {
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("    %-22s %s\n", r.Label, r.Value))
	}
}

// ════════════════════════════════════════════════════════════════════
// Portfolio summary
// ════════════════════════════════════════════════════════════════════

// Summary renders the batch portfolio table: one line per valued company
// followed by a count per recommendation.
func Summary(outputs []models.ValuationOutput, opts Options) string {
	opts = opts.withDefaults()
	var sb strings.Builder
	line := strings.Repeat("═", 96)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  PORTFOLIO SUMMARY (%d companies)\n", len(outputs)))
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  %-28s %14s %12s %12s %10s  %s\n",
		"Company", "Fair value", "Target", "Current", "Upside", "Recommendation"))
	sb.WriteString("  " + strings.Repeat("─", 94) + "\n")

	counts := make(map[models.Recommendation]int)
	for _, o := range outputs {
		counts[o.Recommendation]++
		sb.WriteString(fmt.Sprintf("  %-28s %14s %12s %12s %10s  %s\n",
			truncate(o.Name, 28),
			utils.FormatCompact(o.FinalEquityValue, opts.Currency),
			utils.FormatMoney(o.FinalPricePerShare, opts.Currency),
			utils.FormatMoney(o.CurrentPrice, opts.Currency),
			utils.FormatPct(o.UpsidePct),
			o.Recommendation))
	}

	sb.WriteString(line + "\n")
	for _, r := range []models.Recommendation{models.StrongBuy, models.Buy, models.Hold, models.Underweight, models.Sell} {
		if n := counts[r]; n > 0 {
			sb.WriteString(fmt.Sprintf("  %-14s %d\n", r, n))
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
