package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means a series has too few points to evaluate a
	// window. Callers filter the ticker out rather than failing the run.
	ErrInsufficientData = errors.New("insufficient data for window")

	// ErrPositionOpen means a ticker already has an open position.
	ErrPositionOpen = errors.New("position already open")

	// ErrInvalidConfig means a run was started with unusable parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MalformedSeriesError flags a price series that violates ordering or
// positivity. The series is excluded from the run and surfaced as a warning.
type MalformedSeriesError struct {
	Ticker string
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed price series for %s: %s", e.Ticker, e.Reason)
}
