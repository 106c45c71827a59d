package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataUnavailable: no candidate/backend/round produced a usable series
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientHistory: a series was fetched but is shorter than MinSeriesLength
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrComputation: indicator math failed on malformed input
	ErrComputation = errors.New("computation error")

	// ErrNewsUnavailable: no news source could be reached
	ErrNewsUnavailable = errors.New("news unavailable")
)

// DataUnavailableError names the symbol and every candidate spelling tried
type DataUnavailableError struct {
	Symbol string
	Tried  []string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("No valid data found for symbol: %s. Tried: %s", e.Symbol, strings.Join(e.Tried, ", "))
}

// Is makes errors.Is(err, ErrDataUnavailable) true
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// ComputationError wraps a failure inside indicator math
type ComputationError struct {
	Indicator string
	Err       error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in %s: %v", e.Indicator, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrComputation) true
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// InsufficientHistory builds an ErrInsufficientHistory for n closes
func InsufficientHistory(n int) error {
	return fmt.Errorf("%w: got %d closes, need %d", ErrInsufficientHistory, n, MinSeriesLength)
}
