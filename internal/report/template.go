package report

// ReportTemplate is the HTML template for the valuation report.
// It is embedded as a Go constant; no external file dependencies.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }

  /* Recommendation badge */
  .rec-box { padding: 16px; border-radius: 8px; margin: 12px 0; }
  .rec-box.strong-buy { background: #dcfce7; border-left: 5px solid var(--green); }
  .rec-box.buy { background: #ecfdf5; border-left: 5px solid #22c55e; }
  .rec-box.hold { background: #fefce8; border-left: 5px solid #eab308; }
  .rec-box.sell { background: #fef2f2; border-left: 5px solid #f97316; }
  .rec-box.strong-sell { background: #fef2f2; border-left: 5px solid var(--red); }
  .rec-label { font-size: 1.4rem; font-weight: 700; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: right; padding: 6px 8px; font-weight: 600; }
  td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  td.na { color: var(--muted); }

  .ratio-grid {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(260px, 1fr));
    gap: 8px;
    margin: 10px 0 16px;
  }
  .ratio-card {
    background: var(--section-bg);
    padding: 8px 12px;
    border-radius: 6px;
    display: flex;
    justify-content: space-between;
  }
  .ratio-card .label { color: var(--muted); font-size: 0.85rem; }
  .ratio-card .value { font-weight: 600; }

  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
  @media print {
    body { max-width: 100%; padding: 10px; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">{{.CompanyName}} · {{.Sector}} · {{.GeneratedAt}}</p>
</div>

<!-- ═══════ RECOMMENDATION ═══════ -->
<div class="rec-box {{.RecommendationClass}}">
  <div class="rec-label">{{.Recommendation}}</div>
  <div>Target {{.TargetPrice}} · Current {{.CurrentPrice}} ·
    <span class="{{if .UpsidePositive}}positive{{else}}negative{{end}}">{{.Upside}}</span></div>
</div>
<div class="ratio-grid">
  {{range .Range}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

{{if .MethodChart}}
<div class="chart-container">{{.MethodChart}}</div>
{{end}}

<h2>Cost of Capital</h2>
<div class="ratio-grid">
  {{range .Capital}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<h2>10-Year Projection</h2>
<table>
  <thead><tr><th>Year</th><th>Growth</th><th>Revenue</th><th>EBITDA</th><th>FCF</th><th>PV(FCF)</th></tr></thead>
  <tbody>
  {{range .Projection}}
  <tr><td>{{.Year}}</td><td>{{.Growth}}</td><td>{{.Revenue}}</td><td>{{.EBITDA}}</td><td>{{.FCF}}</td><td>{{.PVFCF}}</td></tr>
  {{end}}
  </tbody>
</table>

<h2>Terminal Value{{if .TVClamped}} <span class="muted">(growth clamped below WACC)</span>{{end}}</h2>
<div class="ratio-grid">
  {{range .Terminal}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<h2>DCF Summary</h2>
<div class="ratio-grid">
  {{range .DCF}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<h2>Comparables</h2>
<div class="ratio-grid">
  {{range .Comparables}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<h2>Valuation Blend</h2>
<div class="ratio-grid">
  {{range .Blend}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<h2>Key Ratios</h2>
<div class="ratio-grid">
  {{range .Ratios}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
  <div class="ratio-card"><span class="label">Z-score (proxy)</span><span class="value">{{.ZScore}} · {{.ZZone}}</span></div>
</div>

<h2>Sensitivity</h2>
<p class="muted">Equity value by terminal growth (rows) and discount rate (columns).</p>
<table>
  <thead><tr><th>g \ r</th>{{range .SensRates}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
  {{range .SensRows}}
  <tr><td>{{.Growth}}</td>{{range .Cells}}<td{{if eq . "N/A"}} class="na"{{end}}>{{.}}</td>{{end}}</tr>
  {{end}}
  </tbody>
</table>

<h2>Monte Carlo</h2>
<div class="ratio-grid">
  {{range .MonteCarlo}}<div class="ratio-card"><span class="label">{{.Label}}</span><span class="value">{{.Value}}</span></div>{{end}}
</div>

<!-- ═══════ FOOTER ═══════ -->
<div class="footer">
  <p><strong>Disclaimer:</strong> Model output for educational and informational purposes only.
  It does not constitute financial advice.</p>
  <p>Generated on {{.GeneratedAt}}</p>
</div>

</body>
</html>`
