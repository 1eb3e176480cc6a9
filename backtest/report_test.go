package backtest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meanrev/screener/models"
)

func sampleResult() *models.BacktestResult {
	trades := []models.Trade{{
		Ticker:      "AAA",
		CompanyName: "Alpha Co",
		EntryDate:   day("2024-01-08"),
		EntryPrice:  88,
		Shares:      10000.0 / 88,
		TargetPrice: 100,
		ExitDate:    day("2024-01-10"),
		ExitPrice:   100,
		HoldingDays: 2,
		PnL:         10000.0 / 88 * 12,
		PnLPct:      12.0 / 88 * 100,
	}}
	open := []models.Position{{
		Ticker:      "BBB",
		CompanyName: "Beta Co",
		EntryDate:   day("2024-01-04"),
		EntryPrice:  80,
		Shares:      125,
		TargetPrice: 100,
		Status:      models.PositionStatusOpen,
	}}
	r := Summarize(trades, open, []string{"CCC: no price data"})
	r.ScreeningRuns = 2
	return r
}

func TestReportTradeFieldContract(t *testing.T) {
	report := NewReport(sampleResult(), testConfig("2024-01-01", "2024-01-11"), "run-1", time.Now())

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Trades []map[string]any `json:"trades"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(doc.Trades))
	}

	// Downstream tooling reads these exact keys.
	want := []string{
		"ticker", "company_name", "entry_date", "entry_price", "shares",
		"target_price", "exit_date", "exit_price", "holding_days", "pnl", "pnl_pct",
	}
	trade := doc.Trades[0]
	for _, key := range want {
		if _, ok := trade[key]; !ok {
			t.Errorf("trade record missing key %q", key)
		}
	}
	if len(trade) != len(want) {
		t.Errorf("trade record has %d keys, want %d: %v", len(trade), len(want), trade)
	}
	if trade["entry_date"] != "2024-01-08" || trade["exit_date"] != "2024-01-10" {
		t.Errorf("dates = %v / %v", trade["entry_date"], trade["exit_date"])
	}
}

func TestReportRounding(t *testing.T) {
	report := NewReport(sampleResult(), testConfig("2024-01-01", "2024-01-11"), "run-1", time.Now())

	trade := report.Trades[0]
	if trade.Shares != 113.6364 {
		t.Errorf("Shares = %v, want 113.6364", trade.Shares)
	}
	if trade.PnL != 1363.64 {
		t.Errorf("PnL = %v, want 1363.64", trade.PnL)
	}
	if trade.PnLPct != 13.64 {
		t.Errorf("PnLPct = %v, want 13.64", trade.PnLPct)
	}
	if report.Metadata.TotalInvested != 10000 {
		t.Errorf("TotalInvested = %v, want 10000", report.Metadata.TotalInvested)
	}
}

func TestReportEmptyListsStayLists(t *testing.T) {
	report := NewReport(Summarize(nil, nil, nil), testConfig("2024-01-01", "2024-01-11"), "run-1", time.Now())

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"trades":[]`) {
		t.Error("empty trades serialized as something other than []")
	}
	if !strings.Contains(string(data), `"open_positions":[]`) {
		t.Error("empty open_positions serialized as something other than []")
	}
}

func TestReportSave(t *testing.T) {
	dir := t.TempDir()
	report := NewReport(sampleResult(), testConfig("2024-01-01", "2024-01-11"), "run-1", time.Now())

	jsonPath := filepath.Join(dir, "backtest.json")
	if err := report.Save(jsonPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var parsed Report
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("written report does not parse: %v", err)
	}
	if parsed.Metadata.RunID != "run-1" || len(parsed.Trades) != 1 {
		t.Errorf("round-tripped report = %+v", parsed.Metadata)
	}

	htmlPath := filepath.Join(dir, "backtest.html")
	if err := report.SaveHTML(htmlPath); err != nil {
		t.Fatalf("SaveHTML() error: %v", err)
	}
	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<html", "AAA", "Beta Co", "run-1"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleResult())

	out := buf.String()
	for _, want := range []string{
		"BACKTEST RESULTS",
		"1 closed, 1 still open",
		"Win rate:    100.0%",
		"0-7",
		"Top winners:",
		"AAA",
		"1 warnings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q in:\n%s", want, out)
		}
	}
}
