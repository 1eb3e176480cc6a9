package backtest

import (
	"fmt"
	"html/template"
	"os"
)

var reportFuncs = template.FuncMap{
	"usd": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%+.2f%%", v)
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportHTML))

type bucketRow struct {
	Label string
	Count int
	Width int // percent of the widest bucket
}

type reportPage struct {
	Report
	Buckets []bucketRow
}

// SaveHTML renders the report as a self-contained page, the shareable
// cousin of the JSON file.
func (r Report) SaveHTML(path string) error {
	page := reportPage{Report: r}
	max := 0
	for _, b := range holdingBuckets {
		if c := r.HoldingDays[b.label]; c > max {
			max = c
		}
	}
	for _, b := range holdingBuckets {
		count, ok := r.HoldingDays[b.label]
		if !ok {
			continue
		}
		page.Buckets = append(page.Buckets, bucketRow{Label: b.label, Count: count, Width: count * 100 / max})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return reportTemplate.Execute(f, page)
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Backtest {{.Metadata.StartDate}} to {{.Metadata.EndDate}}</title>
<style>
  body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
  h1 { font-size: 1.4rem; }
  h2 { font-size: 1.1rem; margin-top: 2rem; }
  table { border-collapse: collapse; margin: 1rem 0; }
  th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
  th { background: #f0f0f0; }
  td:first-child, th:first-child { text-align: left; }
  .bar { background: #4a90d9; height: 14px; display: inline-block; }
  .pos { color: #0a7d33; }
  .neg { color: #c0392b; }
  .muted { color: #777; }
</style>
</head>
<body>
<h1>Backtest {{.Metadata.StartDate}} to {{.Metadata.EndDate}}</h1>
<p class="muted">Run {{.Metadata.RunID}}, generated {{.Metadata.GeneratedAt}}</p>

<table>
  <tr><td>Trades</td><td>{{.Metadata.ClosedTrades}} closed, {{.Metadata.StillOpen}} still open</td></tr>
  <tr><td>Win rate</td><td>{{.Metadata.WinRate}}%</td></tr>
  <tr><td>Invested</td><td>{{usd .Metadata.TotalInvested}}</td></tr>
  <tr><td>Total P&amp;L</td><td class="{{if ge .Metadata.TotalPnL 0.0}}pos{{else}}neg{{end}}">{{usd .Metadata.TotalPnL}} ({{pct .Metadata.ReturnPct}})</td></tr>
  <tr><td>Avg holding</td><td>{{.Metadata.AvgHoldingDays}} days</td></tr>
  <tr><td>Screenings</td><td>{{.Metadata.ScreeningRuns}} (every {{.Metadata.FrequencyDays}}+ days)</td></tr>
</table>

{{if .Buckets}}
<h2>Holding days</h2>
<table>
{{range .Buckets}}  <tr><td>{{.Label}}</td><td style="border:none;text-align:left"><span class="bar" style="width:{{.Width}}px"></span> {{.Count}}</td></tr>
{{end}}</table>
{{end}}

<h2>Closed trades</h2>
{{if .Trades}}
<table>
  <tr><th>Ticker</th><th>Company</th><th>Entry</th><th>Entry $</th><th>Target $</th><th>Exit</th><th>Exit $</th><th>Days</th><th>P&amp;L</th><th>P&amp;L %</th></tr>
{{range .Trades}}  <tr><td>{{.Ticker}}</td><td>{{.CompanyName}}</td><td>{{.EntryDate}}</td><td>{{usd .EntryPrice}}</td><td>{{usd .TargetPrice}}</td><td>{{.ExitDate}}</td><td>{{usd .ExitPrice}}</td><td>{{.HoldingDays}}</td><td class="{{if ge .PnL 0.0}}pos{{else}}neg{{end}}">{{usd .PnL}}</td><td>{{pct .PnLPct}}</td></tr>
{{end}}</table>
{{else}}
<p class="muted">No trades closed in this run.</p>
{{end}}

{{if .OpenPositions}}
<h2>Still open</h2>
<table>
  <tr><th>Ticker</th><th>Company</th><th>Entry</th><th>Entry $</th><th>Target $</th><th>Shares</th></tr>
{{range .OpenPositions}}  <tr><td>{{.Ticker}}</td><td>{{.CompanyName}}</td><td>{{.EntryDate}}</td><td>{{usd .EntryPrice}}</td><td>{{usd .TargetPrice}}</td><td>{{.Shares}}</td></tr>
{{end}}</table>
{{end}}

{{if .Warnings}}
<h2>Warnings</h2>
<ul>
{{range .Warnings}}  <li class="muted">{{.}}</li>
{{end}}</ul>
{{end}}
</body>
</html>
`
