package models

import "time"

type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

// Position is a simulated holding. EntryDate and ExitDate are trading days
// normalized with Day; ExitDate and ExitPrice stay zero while the position
// is open.
type Position struct {
	Ticker      string
	CompanyName string
	EntryDate   time.Time
	EntryPrice  float64
	Shares      float64
	TargetPrice float64
	Status      PositionStatus
	ExitDate    time.Time
	ExitPrice   float64
}

// Trade is the reporting record derived from a closed position. Values are
// kept at full precision here; rounding happens when a report is written.
type Trade struct {
	Ticker      string
	CompanyName string
	EntryDate   time.Time
	EntryPrice  float64
	Shares      float64
	TargetPrice float64
	ExitDate    time.Time
	ExitPrice   float64
	HoldingDays int
	PnL         float64
	PnLPct      float64
}

// NewTrade derives the trade record for a closed position.
func NewTrade(p Position) Trade {
	t := Trade{
		Ticker:      p.Ticker,
		CompanyName: p.CompanyName,
		EntryDate:   p.EntryDate,
		EntryPrice:  p.EntryPrice,
		Shares:      p.Shares,
		TargetPrice: p.TargetPrice,
		ExitDate:    p.ExitDate,
		ExitPrice:   p.ExitPrice,
	}
	// Dates are midnight UTC, so the subtraction is a whole number of days.
	t.HoldingDays = int(p.ExitDate.Sub(p.EntryDate).Hours() / 24)
	t.PnL = p.Shares * (p.ExitPrice - p.EntryPrice)
	if invested := p.EntryPrice * p.Shares; invested > 0 {
		t.PnLPct = t.PnL / invested * 100
	}
	return t
}

// BacktestResult is the aggregate outcome of one simulation run.
type BacktestResult struct {
	Trades        []Trade    // closed trades in close order
	OpenPositions []Position // still open when the horizon ended

	TotalTrades    int
	ClosedTrades   int
	StillOpen      int
	WinningTrades  int
	LosingTrades   int
	TotalPnL       float64
	TotalInvested  float64 // capital deployed into closed trades only
	ReturnPct      float64
	WinRate        float64 // percent of closed trades with positive pnl
	AvgHoldingDays float64
	HoldingDays    map[string]int // histogram keyed by bucket label
	ScreeningRuns  int
	Warnings       []string
}
