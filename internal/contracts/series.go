package contracts

// MinSeriesLength is the minimum number of closes required before
// indicators are computed
const MinSeriesLength = 30

// PriceSeries is a chronological series of daily closing prices
// ⭐ SSOT: S0 → S1 가격 시계열 전달
type PriceSeries struct {
	Symbol string    `json:"symbol"` // resolved candidate, e.g. "INFY.NS"
	Source string    `json:"source"` // backend that produced it
	Closes []float64 `json:"closes"`
}

// Len returns the number of closes
func (s PriceSeries) Len() int {
	return len(s.Closes)
}

// Sufficient reports whether the series is long enough for indicators
func (s PriceSeries) Sufficient() bool {
	return len(s.Closes) >= MinSeriesLength
}
