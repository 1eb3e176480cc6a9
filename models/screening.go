package models

import "time"

// ScreeningResult is one ranked row of a screening run.
type ScreeningResult struct {
	Ticker       string
	CompanyName  string
	Country      string
	Index        string
	FoundingYear int
	AgeYears     int
	Worst        WindowResult
}

// ScreeningFilters records the parameters a screening ran with.
type ScreeningFilters struct {
	Indices      []string
	Countries    []string
	MinAgeYears  int
	LookbackDays int
	WindowLen    int
}

// UniverseStats counts how the candidate universe narrowed at each step.
type UniverseStats struct {
	Constituents  int // tickers scraped from index pages
	WithMetadata  int // matched to a metadata row
	PassedFilters int // survived age and country filters
	WithHistory   int // price history fetched successfully
	Screened      int // had enough history to evaluate a window
}

// ScreeningOutput is the full result of one screening run.
type ScreeningOutput struct {
	RunID    string
	Date     time.Time
	Filters  ScreeningFilters
	Universe UniverseStats
	Results  []ScreeningResult
	Warnings []string
}
