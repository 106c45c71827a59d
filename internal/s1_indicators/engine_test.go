package s1_indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/contracts"
)

const tolerance = 1e-9

// wave produces a deterministic, non-trivial close series
func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		x := float64(i)
		out[i] = 100 + 8*math.Sin(x/5) + 3*math.Cos(x/2.3) + 0.05*x
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Reference implementations recompute every window from scratch.

func refSMA(xs []float64, period int) float64 {
	sum := 0.0
	for _, x := range xs[len(xs)-period:] {
		sum += x
	}
	return sum / float64(period)
}

func refStd(xs []float64, period int) float64 {
	win := xs[len(xs)-period:]
	mean := refSMA(xs, period)
	ss := 0.0
	for _, x := range win {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(period-1))
}

func refEMA(xs []float64, span int) []float64 {
	w := 1 - 2/(float64(span)+1)
	out := make([]float64, len(xs))
	for t := range xs {
		num, den := 0.0, 0.0
		for i := 0; i <= t; i++ {
			wt := math.Pow(w, float64(i))
			num += wt * xs[t-i]
			den += wt
		}
		out[t] = num / den
	}
	return out
}

func refRSI(xs []float64, period int) *float64 {
	var last *float64
	for t := period - 1; t < len(xs); t++ {
		gain, loss := 0.0, 0.0
		for i := t - period + 1; i <= t; i++ {
			if i == 0 {
				continue
			}
			d := xs[i] - xs[i-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		gain /= float64(period)
		loss /= float64(period)
		switch {
		case gain == 0 && loss == 0:
			continue
		case loss == 0:
			last = contracts.Float(100)
		default:
			last = contracts.Float(100 - 100/(1+gain/loss))
		}
	}
	return last
}

func TestCompute_MatchesReference(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
	}{
		{"wave 30", wave(30)},
		{"wave 126", wave(126)},
		{"declining", linear(60, 500, -1.75)},
		{"large prices", func() []float64 {
			xs := wave(90)
			for i := range xs {
				xs[i] *= 250
			}
			return xs
		}()},
	}

	engine := NewEngine(DefaultConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := engine.Compute(tt.closes)
			require.NoError(t, err)

			fast, slow := refEMA(tt.closes, 12), refEMA(tt.closes, 26)
			line := make([]float64, len(tt.closes))
			for i := range line {
				line[i] = fast[i] - slow[i]
			}
			signal := refEMA(line, 9)
			scale := math.Max(1, math.Abs(tt.closes[len(tt.closes)-1]))

			require.NotNil(t, set.MACD)
			require.NotNil(t, set.Signal)
			assert.InDelta(t, line[len(line)-1], *set.MACD, tolerance*scale)
			assert.InDelta(t, signal[len(signal)-1], *set.Signal, tolerance*scale)

			mid, sd := refSMA(tt.closes, 20), refStd(tt.closes, 20)
			require.NotNil(t, set.BollMiddle)
			assert.InDelta(t, mid, *set.BollMiddle, tolerance*scale)
			assert.InDelta(t, mid+2*sd, *set.BollUpper, 1e-7*scale)
			assert.InDelta(t, mid-2*sd, *set.BollLower, 1e-7*scale)

			want := refRSI(tt.closes, 14)
			if want == nil {
				assert.Nil(t, set.RSI)
			} else {
				require.NotNil(t, set.RSI)
				assert.InDelta(t, *want, *set.RSI, 1e-7)
			}
		})
	}
}

func TestCompute_MiddleBandAgreesWithTalib(t *testing.T) {
	closes := wave(120)

	set, err := NewEngine(DefaultConfig()).Compute(closes)
	require.NoError(t, err)

	sma := talib.Sma(closes, 20)
	assert.InDelta(t, sma[len(sma)-1], *set.BollMiddle, 1e-8)
}

func TestCompute_ConstantSeries(t *testing.T) {
	set, err := NewEngine(DefaultConfig()).Compute(constant(40, 101.37))
	require.NoError(t, err)

	assert.Nil(t, set.RSI, "zero gains over zero losses is undefined")

	require.NotNil(t, set.BollMiddle)
	assert.Equal(t, 101.37, *set.BollMiddle)
	assert.Equal(t, *set.BollMiddle, *set.BollUpper)
	assert.Equal(t, *set.BollMiddle, *set.BollLower)

	require.True(t, set.HasTrend())
	assert.Equal(t, 0.0, *set.MACD)
	assert.Equal(t, 0.0, *set.Signal)
}

func TestCompute_IncreasingSeries(t *testing.T) {
	for _, n := range []int{30, 31, 64, 250} {
		set, err := NewEngine(DefaultConfig()).Compute(linear(n, 10, 0.5))
		require.NoError(t, err)

		require.NotNil(t, set.MACD)
		assert.GreaterOrEqual(t, *set.MACD, 0.0, "n=%d", n)
		require.NotNil(t, set.RSI)
		assert.Equal(t, 100.0, *set.RSI, "no losses in the window, n=%d", n)
	}
}

func TestCompute_RSIFallsBackToLastDefinedValue(t *testing.T) {
	// 20 rising closes then a long flat tail: the tail windows are 0/0 and
	// the reported value is the last one that was defined.
	closes := append(linear(20, 50, 1), constant(25, 69)...)

	set, err := NewEngine(DefaultConfig()).Compute(closes)
	require.NoError(t, err)

	require.NotNil(t, set.RSI)
	assert.Equal(t, 100.0, *set.RSI)
	assert.Equal(t, 69.0, *set.BollMiddle)
	assert.Equal(t, 69.0, *set.BollUpper)
}

func TestCompute_RSIRange(t *testing.T) {
	// Deterministic pseudo-random walk
	seed := uint32(7)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed%2001)/1000 - 1
	}

	engine := NewEngine(DefaultConfig())
	for run := 0; run < 50; run++ {
		closes := make([]float64, 30+run*3)
		price := 100.0
		for i := range closes {
			price = math.Max(1, price+next()*3)
			closes[i] = price
		}

		set, err := engine.Compute(closes)
		require.NoError(t, err)
		if set.RSI != nil {
			assert.GreaterOrEqual(t, *set.RSI, 0.0)
			assert.LessOrEqual(t, *set.RSI, 100.0)
		}
	}
}

func TestCompute_Errors(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	_, err := engine.Compute(wave(29))
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	_, err = engine.Compute(nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	bad := wave(40)
	bad[17] = math.NaN()
	_, err = engine.Compute(bad)
	assert.ErrorIs(t, err, contracts.ErrComputation)

	var compErr *contracts.ComputationError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, "series", compErr.Indicator)

	bad[17] = math.Inf(1)
	_, err = engine.Compute(bad)
	assert.ErrorIs(t, err, contracts.ErrComputation)
}

func TestCompute_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	closes := wave(100)

	a, err := engine.Compute(closes)
	require.NoError(t, err)
	b, err := engine.Compute(closes)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNewEngine_Defaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewEngine(Config{}).cfg)

	custom := NewEngine(Config{RSIPeriod: 7, BollWidth: 3})
	assert.Equal(t, 7, custom.cfg.RSIPeriod)
	assert.Equal(t, 3.0, custom.cfg.BollWidth)
	assert.Equal(t, 26, custom.cfg.MACDSlow)
}
