package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meanrev/screener/models"
)

// Reports round money and percentages to cents and share counts to four
// places. Full precision stays internal to the simulation.
func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }
func round4(v float64) float64 { return decimal.NewFromFloat(v).Round(4).InexactFloat64() }

// TradeRecord is the wire form of one closed trade.
type TradeRecord struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"company_name"`
	EntryDate   string  `json:"entry_date"`
	EntryPrice  float64 `json:"entry_price"`
	Shares      float64 `json:"shares"`
	TargetPrice float64 `json:"target_price"`
	ExitDate    string  `json:"exit_date"`
	ExitPrice   float64 `json:"exit_price"`
	HoldingDays int     `json:"holding_days"`
	PnL         float64 `json:"pnl"`
	PnLPct      float64 `json:"pnl_pct"`
}

// PositionRecord is the wire form of a position still open at the horizon.
type PositionRecord struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"company_name"`
	EntryDate   string  `json:"entry_date"`
	EntryPrice  float64 `json:"entry_price"`
	Shares      float64 `json:"shares"`
	TargetPrice float64 `json:"target_price"`
}

type ReportMetadata struct {
	RunID          string  `json:"run_id"`
	GeneratedAt    string  `json:"generated_at"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	WindowLen      int     `json:"window_len"`
	FrequencyDays  int     `json:"frequency_days"`
	LookbackDays   int     `json:"lookback_days"`
	Investment     float64 `json:"investment_per_trade"`
	ScreeningRuns  int     `json:"screening_runs"`
	TotalTrades    int     `json:"total_trades"`
	ClosedTrades   int     `json:"closed_trades"`
	StillOpen      int     `json:"still_open"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalInvested  float64 `json:"total_invested"`
	ReturnPct      float64 `json:"return_pct"`
	AvgHoldingDays float64 `json:"avg_holding_days"`
}

// Report is the serializable outcome of a backtest run.
type Report struct {
	Metadata      ReportMetadata   `json:"metadata"`
	HoldingDays   map[string]int   `json:"holding_days_distribution"`
	Trades        []TradeRecord    `json:"trades"`
	OpenPositions []PositionRecord `json:"open_positions"`
	Warnings      []string         `json:"warnings,omitempty"`
}

// NewReport converts a run result into its wire form.
func NewReport(result *models.BacktestResult, cfg Config, runID string, generatedAt time.Time) Report {
	trades := make([]TradeRecord, 0, len(result.Trades))
	for _, t := range result.Trades {
		trades = append(trades, TradeRecord{
			Ticker:      t.Ticker,
			CompanyName: t.CompanyName,
			EntryDate:   t.EntryDate.Format("2006-01-02"),
			EntryPrice:  round2(t.EntryPrice),
			Shares:      round4(t.Shares),
			TargetPrice: round2(t.TargetPrice),
			ExitDate:    t.ExitDate.Format("2006-01-02"),
			ExitPrice:   round2(t.ExitPrice),
			HoldingDays: t.HoldingDays,
			PnL:         round2(t.PnL),
			PnLPct:      round2(t.PnLPct),
		})
	}
	open := make([]PositionRecord, 0, len(result.OpenPositions))
	for _, p := range result.OpenPositions {
		open = append(open, PositionRecord{
			Ticker:      p.Ticker,
			CompanyName: p.CompanyName,
			EntryDate:   p.EntryDate.Format("2006-01-02"),
			EntryPrice:  round2(p.EntryPrice),
			Shares:      round4(p.Shares),
			TargetPrice: round2(p.TargetPrice),
		})
	}
	return Report{
		Metadata: ReportMetadata{
			RunID:          runID,
			GeneratedAt:    generatedAt.UTC().Format(time.RFC3339),
			StartDate:      cfg.Start.Format("2006-01-02"),
			EndDate:        cfg.End.Format("2006-01-02"),
			WindowLen:      cfg.WindowLen,
			FrequencyDays:  cfg.FrequencyDays,
			LookbackDays:   cfg.LookbackDays,
			Investment:     round2(cfg.Investment),
			ScreeningRuns:  result.ScreeningRuns,
			TotalTrades:    result.TotalTrades,
			ClosedTrades:   result.ClosedTrades,
			StillOpen:      result.StillOpen,
			WinningTrades:  result.WinningTrades,
			LosingTrades:   result.LosingTrades,
			WinRate:        round2(result.WinRate),
			TotalPnL:       round2(result.TotalPnL),
			TotalInvested:  round2(result.TotalInvested),
			ReturnPct:      round2(result.ReturnPct),
			AvgHoldingDays: round2(result.AvgHoldingDays),
		},
		HoldingDays:   result.HoldingDays,
		Trades:        trades,
		OpenPositions: open,
		Warnings:      result.Warnings,
	}
}

// Save writes the report as indented JSON.
func (r Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PrintSummary writes the human-readable run summary.
func PrintSummary(w io.Writer, r *models.BacktestResult) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "BACKTEST RESULTS")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Trades:      %d closed, %d still open\n", r.ClosedTrades, r.StillOpen)
	fmt.Fprintf(w, "Win rate:    %.1f%% (%d winners, %d losers)\n", r.WinRate, r.WinningTrades, r.LosingTrades)
	fmt.Fprintf(w, "Invested:    $%.2f across closed trades\n", r.TotalInvested)
	fmt.Fprintf(w, "Total P&L:   $%.2f (%+.2f%%)\n", r.TotalPnL, r.ReturnPct)
	fmt.Fprintf(w, "Avg holding: %.1f days\n", r.AvgHoldingDays)

	if len(r.HoldingDays) > 0 {
		fmt.Fprintln(w, "\nHolding days distribution:")
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
			fmt.Fprintf(w, "  %-8s %s %d\n", b.label, strings.Repeat("█", count*40/max), count)
		}
	}

	printExtremes(w, r.Trades)

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\n%d warnings, see the report file for details\n", len(r.Warnings))
	}
}

// printExtremes lists the five best and worst closed trades.
func printExtremes(w io.Writer, trades []models.Trade) {
	var winners, losers []models.Trade
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			winners = append(winners, t)
		case t.PnL < 0:
			losers = append(losers, t)
		}
	}
	sort.SliceStable(winners, func(i, j int) bool { return winners[i].PnL > winners[j].PnL })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].PnL < losers[j].PnL })
	if len(winners) > 5 {
		winners = winners[:5]
	}
	if len(losers) > 5 {
		losers = losers[:5]
	}

	if len(winners) > 0 {
		fmt.Fprintln(w, "\nTop winners:")
		for _, t := range winners {
			fmt.Fprintf(w, "  %-10s %+10.2f (%+.2f%%) held %d days\n", t.Ticker, t.PnL, t.PnLPct, t.HoldingDays)
		}
	}
	if len(losers) > 0 {
		fmt.Fprintln(w, "\nTop losers:")
		for _, t := range losers {
			fmt.Fprintf(w, "  %-10s %+10.2f (%+.2f%%) held %d days\n", t.Ticker, t.PnL, t.PnLPct, t.HoldingDays)
		}
	}
}
