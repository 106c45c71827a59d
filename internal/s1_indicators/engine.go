package s1_indicators

import (
	"fmt"
	"math"

	"github.com/stocklens/backend/internal/contracts"
)

// Config holds indicator periods
type Config struct {
	RSIPeriod int

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	BollPeriod int
	BollWidth  float64 // standard deviations
}

// DefaultConfig returns RSI 14, MACD 12/26/9, Bollinger 20/2
func DefaultConfig() Config {
	return Config{
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BollPeriod: 20,
		BollWidth:  2,
	}
}

// Engine computes the indicator set from a close series.
// It holds no state between calls and performs no I/O.
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type Engine struct {
	cfg Config
}

// NewEngine creates an engine; zero periods fall back to DefaultConfig
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = def.RSIPeriod
	}
	if cfg.MACDFast <= 0 {
		cfg.MACDFast = def.MACDFast
	}
	if cfg.MACDSlow <= 0 {
		cfg.MACDSlow = def.MACDSlow
	}
	if cfg.MACDSignal <= 0 {
		cfg.MACDSignal = def.MACDSignal
	}
	if cfg.BollPeriod <= 1 {
		cfg.BollPeriod = def.BollPeriod
	}
	if cfg.BollWidth <= 0 {
		cfg.BollWidth = def.BollWidth
	}
	return &Engine{cfg: cfg}
}

// Compute derives the indicator set in a single pass over closes.
// Every value is the last defined sample of its series; values whose
// window never fills stay nil.
func (e *Engine) Compute(closes []float64) (contracts.IndicatorSet, error) {
	var set contracts.IndicatorSet

	if len(closes) < contracts.MinSeriesLength {
		return set, contracts.InsufficientHistory(len(closes))
	}
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return set, &contracts.ComputationError{
				Indicator: "series",
				Err:       fmt.Errorf("close[%d] is not finite: %v", i, c),
			}
		}
	}

	rsi := newRSI(e.cfg.RSIPeriod)
	macd := newMACD(e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	boll := newRollingStats(e.cfg.BollPeriod)

	for _, c := range closes {
		if v, ok := rsi.Push(c); ok {
			set.RSI = contracts.Float(v)
		}

		line, signal := macd.Push(c)
		set.MACD = contracts.Float(line)
		set.Signal = contracts.Float(signal)

		boll.Push(c)
		if boll.Full() {
			mid, sd := boll.Mean(), boll.StdDev()
			set.BollMiddle = contracts.Float(mid)
			set.BollUpper = contracts.Float(mid + e.cfg.BollWidth*sd)
			set.BollLower = contracts.Float(mid - e.cfg.BollWidth*sd)
		}
	}

	if err := checkFinite(set); err != nil {
		return contracts.IndicatorSet{}, err
	}
	return set, nil
}

func checkFinite(set contracts.IndicatorSet) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"RSI", set.RSI},
		{"MACD", set.MACD},
		{"Signal", set.Signal},
		{"BOLL_UPPER", set.BollUpper},
		{"BOLL_MIDDLE", set.BollMiddle},
		{"BOLL_LOWER", set.BollLower},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return &contracts.ComputationError{Indicator: f.name, Err: fmt.Errorf("result is not finite: %v", *f.v)}
		}
	}
	return nil
}

// rsiState is the rolling-mean RSI.
// The first sample has no predecessor and enters both windows as a zero
// delta, so the first value is available after period samples.
type rsiState struct {
	gains  *rollingStats
	losses *rollingStats
	prev   float64
	seen   bool
}

func newRSI(period int) *rsiState {
	return &rsiState{
		gains:  newRollingStats(period),
		losses: newRollingStats(period),
	}
}

// Push returns the RSI at this sample and whether it is defined
func (s *rsiState) Push(c float64) (float64, bool) {
	delta := 0.0
	if s.seen {
		delta = c - s.prev
	}
	s.prev, s.seen = c, true

	s.gains.Push(math.Max(delta, 0))
	s.losses.Push(math.Max(-delta, 0))

	if !s.gains.Full() {
		return 0, false
	}

	gain, loss := s.gains.Mean(), s.losses.Mean()
	switch {
	case loss == 0 && gain == 0:
		return 0, false
	case loss == 0:
		return 100, true
	}
	return 100 - 100/(1+gain/loss), true
}

// macdState tracks the fast/slow EMAs and the signal EMA of their spread
type macdState struct {
	fast, slow, signal *ewma
}

func newMACD(fast, slow, signal int) *macdState {
	return &macdState{
		fast:   newEWMA(fast),
		slow:   newEWMA(slow),
		signal: newEWMA(signal),
	}
}

// Push returns the MACD line and signal at this sample
func (m *macdState) Push(c float64) (float64, float64) {
	line := m.fast.Push(c) - m.slow.Push(c)
	return line, m.signal.Push(line)
}
