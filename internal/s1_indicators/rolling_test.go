package s1_indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingStats_WindowLifecycle(t *testing.T) {
	r := newRollingStats(3)

	r.Push(1)
	r.Push(2)
	assert.False(t, r.Full())
	assert.True(t, math.IsNaN(r.Mean()))
	assert.True(t, math.IsNaN(r.StdDev()))

	r.Push(6)
	assert.True(t, r.Full())
	assert.InDelta(t, 3.0, r.Mean(), 1e-12)
	assert.InDelta(t, math.Sqrt(7), r.StdDev(), 1e-12) // var = (4+1+9)/2

	r.Push(10) // evicts 1 -> {2, 6, 10}
	assert.InDelta(t, 6.0, r.Mean(), 1e-12)
	assert.InDelta(t, 4.0, r.StdDev(), 1e-12)
}

func TestRollingStats_FlatWindowIsExact(t *testing.T) {
	r := newRollingStats(4)
	for _, x := range []float64{0.1, 0.7, 0.3, 0.3, 0.3, 0.3} {
		r.Push(x)
	}

	assert.Equal(t, 0.3, r.Mean())
	assert.Equal(t, 0.0, r.StdDev())

	r.Push(0.4)
	assert.InDelta(t, 0.325, r.Mean(), 1e-12)
	assert.Greater(t, r.StdDev(), 0.0)
}

func TestEWMA_AdjustedWeights(t *testing.T) {
	e := newEWMA(3) // alpha 0.5, decay 0.5

	assert.Equal(t, 10.0, e.Push(10))
	// (0.5*10 + 20) / 1.5
	assert.InDelta(t, 25.0/1.5, e.Push(20), 1e-12)
	// (0.25*10 + 0.5*20 + 30) / 1.75
	assert.InDelta(t, 42.5/1.75, e.Push(30), 1e-12)
}

func TestEWMA_ConstantInputIsExact(t *testing.T) {
	e := newEWMA(26)
	var v float64
	for i := 0; i < 100; i++ {
		v = e.Push(17.3)
	}
	assert.Equal(t, 17.3, v)
}
