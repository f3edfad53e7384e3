package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/fairvalue/internal/valuation"
	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleInput() models.ValuationInput {
	return models.ValuationInput{
		Name:                 "Acme <Analytics>",
		Sector:               "Technology",
		Revenue:              5_000_000,
		EBITDA:               1_500_000,
		Depreciation:         100_000,
		CapexPct:             0.05,
		WorkingCapitalChange: -50_000,
		ProfitMargin:         0.15,
		GrowthRateY1:         0.30,
		GrowthRateY2:         0.25,
		GrowthRateY3:         0.20,
		TerminalGrowth:       0.03,
		TaxRate:              0.25,
		SharesOutstanding:    1_000_000,
		Debt:                 500_000,
		Cash:                 1_000_000,
		MarketCapEstimate:    3_000_000,
		Beta:                 1.5,
		RiskFreeRate:         0.04,
		MarketRiskPremium:    0.07,
		SizePremium:          0.03,
		ComparableEVEBITDA:   12.0,
		ComparablePE:         25.0,
		ComparablePEG:        1.5,
	}
}

func sampleAnalysis(t *testing.T) *models.ValuationAnalysis {
	t.Helper()
	a, err := valuation.New().Analyze(sampleInput(), 42)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return a
}

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// ════════════════════════════════════════════════════════════════════
// Text
// ════════════════════════════════════════════════════════════════════

func TestTextReportSections(t *testing.T) {
	a := sampleAnalysis(t)
	out, err := Text(a, Options{GeneratedAt: fixedTime})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}

	for _, want := range []string{
		"Acme <Analytics>: Fair Value Report",
		"14 Mar 2026, 09:30 UTC",
		"★ RECOMMENDATION",
		"STRONG BUY | Target: $20.06 | Current: $3.00 | Upside: " + utils.FormatPct(a.Output.UpsidePct),
		"Bear (-25%)",
		"COST OF CAPITAL",
		fmt.Sprintf("%-22s %s", "WACC", "15.59%"),
		"10-YEAR PROJECTION",
		"TERMINAL VALUE",
		"DCF SUMMARY",
		"COMPARABLES",
		"Implied PEG",
		"VALUATION BLEND",
		fmt.Sprintf("%-22s %s", "Fair value", utils.FormatMoney(a.Output.FinalEquityValue, "$")),
		"KEY RATIOS",
		"(Safe Zone)",
		"SENSITIVITY",
		"MONTE CARLO",
		"seed 42",
		"Disclaimer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}

	if strings.Contains(out, "clamped") {
		t.Error("unclamped analysis should not mention clamping")
	}
}

func TestTextReportProjectionRows(t *testing.T) {
	out, err := Text(sampleAnalysis(t), Options{GeneratedAt: fixedTime})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	// Year 1: revenue 6.5M, growth 30%.
	if !strings.Contains(out, "30.00%") || !strings.Contains(out, "$6.5 M") {
		t.Error("projection table missing year-1 values")
	}
	for year := 1; year <= 10; year++ {
		if !strings.Contains(out, fmt.Sprintf("\n    %4d ", year)) {
			t.Errorf("projection table missing year %d", year)
		}
	}
}

func TestTextReportClampedAndNA(t *testing.T) {
	in := sampleInput()
	in.Beta = 0
	in.RiskFreeRate = 0.02
	in.MarketRiskPremium = 0.05
	in.SizePremium = 0
	in.Debt = 0
	in.TerminalGrowth = 0.10

	a, err := valuation.New().Analyze(in, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	out, err := Text(a, Options{Currency: "€", GeneratedAt: fixedTime})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(out, "growth clamped below WACC") {
		t.Error("clamped terminal value should be flagged")
	}
	if !strings.Contains(out, "N/A") {
		t.Error("sensitivity grid should contain N/A cells")
	}
	if !strings.Contains(out, "€") {
		t.Error("currency symbol should be applied")
	}
}

func TestTextNilAnalysis(t *testing.T) {
	if _, err := Text(nil, Options{}); err == nil {
		t.Error("expected error for nil analysis")
	}
	if _, err := HTML(nil, Options{}); err == nil {
		t.Error("expected error for nil analysis")
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML / JSON / Render
// ════════════════════════════════════════════════════════════════════

func TestHTMLReport(t *testing.T) {
	out, err := HTML(sampleAnalysis(t), Options{GeneratedAt: fixedTime})
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Acme &lt;Analytics&gt;",
		`class="rec-box strong-buy"`,
		"<svg",
		"Equity value by method",
		"10-Year Projection",
		"Sensitivity",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html report missing %q", want)
		}
	}
	if strings.Contains(out, "Acme <Analytics>") {
		t.Error("company name must be escaped")
	}
}

func TestJSON(t *testing.T) {
	a := sampleAnalysis(t)
	var buf bytes.Buffer
	if err := JSON(&buf, a.Output); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["recommendation"] != "STRONG BUY" {
		t.Errorf("recommendation: got %v", decoded["recommendation"])
	}
	if _, ok := decoded["mc_p10"]; !ok {
		t.Error("json output should carry mc_p10")
	}
}

func TestRenderDispatch(t *testing.T) {
	a := sampleAnalysis(t)
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "★ RECOMMENDATION"},
		{FormatHTML, "<!DOCTYPE html>"},
		{FormatJSON, `"output"`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Render(&buf, a, tt.format, Options{GeneratedAt: fixedTime}); err != nil {
			t.Fatalf("Render(%s): %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("Render(%s) missing %q", tt.format, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "html": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

// ════════════════════════════════════════════════════════════════════
// Summary / Charts
// ════════════════════════════════════════════════════════════════════

func TestSummary(t *testing.T) {
	outputs := []models.ValuationOutput{
		{Name: "Acme", FinalEquityValue: 20e6, FinalPricePerShare: 20, CurrentPrice: 3, UpsidePct: 568.67, Recommendation: models.StrongBuy},
		{Name: "A company with a very long registered name", FinalEquityValue: 9e5, FinalPricePerShare: 0.9, CurrentPrice: 1, UpsidePct: -10, Recommendation: models.Underweight},
		{Name: "Steady", FinalEquityValue: 1e6, FinalPricePerShare: 10, CurrentPrice: 10, UpsidePct: 0, Recommendation: models.Hold},
	}

	out := Summary(outputs, Options{})
	for _, want := range []string{
		"PORTFOLIO SUMMARY (3 companies)",
		"Acme",
		"$20 M",
		"+568.67%",
		"A company with a very long …",
		fmt.Sprintf("%-14s %d", models.StrongBuy, 1),
		fmt.Sprintf("%-14s %d", models.Underweight, 1),
		fmt.Sprintf("%-14s %d", models.Hold, 1),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
	if strings.Contains(out, fmt.Sprintf("\n  %-14s", models.Sell)) {
		t.Error("summary should omit empty recommendation counts")
	}
}

func TestHorizontalBarChart(t *testing.T) {
	svg := HorizontalBarChart([]BarItem{
		{Label: "DCF", Value: 100},
		{Label: "P/E", Value: -50},
	}, DefaultChartConfig(), nil)

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("chart should be a complete svg element")
	}
	if !strings.Contains(svg, "-50.0") || !strings.Contains(svg, "P/E") {
		t.Error("chart should label every bar")
	}
	if strings.Count(svg, "<rect") != 3 {
		t.Errorf("expected background + 2 bars, got %d rects", strings.Count(svg, "<rect"))
	}

	empty := HorizontalBarChart(nil, ChartConfig{}, nil)
	if !strings.Contains(empty, "No data") {
		t.Error("empty chart should say No data")
	}
}

func TestRecommendationClass(t *testing.T) {
	tests := map[models.Recommendation]string{
		models.StrongBuy:   "strong-buy",
		models.Buy:         "buy",
		models.Hold:        "hold",
		models.Underweight: "sell",
		models.Sell:        "strong-sell",
	}
	for rec, want := range tests {
		if got := recommendationClass(rec); got != want {
			t.Errorf("recommendationClass(%s) = %q, want %q", rec, got, want)
		}
	}
}
