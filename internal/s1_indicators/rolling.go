package s1_indicators

import "math"

// rollingStats is a fixed-size trailing window over a stream of samples.
// Mean and sample variance are maintained incrementally (Welford add/remove)
// on top of a ring buffer, so each Push is O(1).
//
// A window whose samples are all identical reports that sample as its mean
// and exactly 0 as its variance. Incremental removal would otherwise leave
// rounding residue (e.g. a mean of 1e-17 over a window of zeros).
type rollingStats struct {
	ring []float64
	next int // ring write position
	n    int // samples currently in the window

	mean float64
	m2   float64 // sum of squared deviations from mean

	run  int // length of the trailing run of identical samples
	last float64
}

func newRollingStats(size int) *rollingStats {
	return &rollingStats{ring: make([]float64, size)}
}

// Push appends x, evicting the oldest sample once the window is full
func (r *rollingStats) Push(x float64) {
	if r.n == len(r.ring) {
		r.remove(r.ring[r.next])
	}
	r.ring[r.next] = x
	r.next = (r.next + 1) % len(r.ring)
	r.add(x)

	if r.run > 0 && x == r.last {
		r.run++
	} else {
		r.run = 1
	}
	r.last = x
}

func (r *rollingStats) add(x float64) {
	r.n++
	delta := x - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (x - r.mean)
}

func (r *rollingStats) remove(x float64) {
	r.n--
	if r.n == 0 {
		r.mean, r.m2 = 0, 0
		return
	}
	delta := x - r.mean
	r.mean -= delta / float64(r.n)
	r.m2 -= delta * (x - r.mean)
}

// Full reports whether the window holds size samples
func (r *rollingStats) Full() bool {
	return r.n == len(r.ring)
}

func (r *rollingStats) flat() bool {
	return r.run >= r.n
}

// Mean of the samples in the window, NaN until the window is full
func (r *rollingStats) Mean() float64 {
	if !r.Full() {
		return math.NaN()
	}
	if r.flat() {
		return r.last
	}
	return r.mean
}

// StdDev is the sample (n-1) standard deviation, NaN until the window is full
func (r *rollingStats) StdDev() float64 {
	if !r.Full() || r.n < 2 {
		return math.NaN()
	}
	if r.flat() || r.m2 <= 0 {
		return 0
	}
	return math.Sqrt(r.m2 / float64(r.n-1))
}

// ewma is an exponentially weighted mean with adjusted weights:
// y_t = Σ w^i x_{t-i} / Σ w^i, w = 1 - 2/(span+1).
// Defined from the first sample onwards.
type ewma struct {
	decay  float64
	weight float64 // Σ w^i over samples seen
	value  float64
	seen   bool
}

func newEWMA(span int) *ewma {
	alpha := 2.0 / (float64(span) + 1.0)
	return &ewma{decay: 1 - alpha}
}

// Push folds x into the average and returns the updated value
func (e *ewma) Push(x float64) float64 {
	if !e.seen {
		e.value, e.weight, e.seen = x, 1, true
		return e.value
	}

	e.weight *= e.decay
	if e.value != x {
		e.value = (e.weight*e.value + x) / (e.weight + 1)
	}
	e.weight++
	return e.value
}
