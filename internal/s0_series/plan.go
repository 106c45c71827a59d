package s0_series

import (
	"context"
	"iter"
	"strings"
	"time"
)

// Backend is one way of fetching daily closes for a ticker
type Backend interface {
	Name() string
	FetchCloses(ctx context.Context, symbol string) ([]float64, error)
}

// Exchange suffixes tried after the bare symbol
var exchangeSuffixes = []string{".NS", ".BO", ".NSE"}

// Candidates returns the ticker spellings tried for symbol, in order
func Candidates(symbol string) []string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	out := make([]string, 0, len(exchangeSuffixes)+1)
	out = append(out, sym)
	for _, suffix := range exchangeSuffixes {
		out = append(out, sym+suffix)
	}
	return out
}

// Attempt is one (round, candidate, backend) step of the search.
// Delay is slept before the attempt; only the first backend of a
// candidate in a retry round carries one.
type Attempt struct {
	Round     int
	Candidate string
	Backend   Backend
	Delay     time.Duration
}

// Plan is the full search order for one symbol
type Plan struct {
	Candidates []string
	Backends   []Backend
	Rounds     int
	RetryUnit  time.Duration
}

// Attempts yields every attempt in order: rounds, then candidates,
// then backends. Iteration stops as soon as the consumer stops.
func (p Plan) Attempts() iter.Seq[Attempt] {
	return func(yield func(Attempt) bool) {
		for round := 0; round < p.Rounds; round++ {
			delay := time.Duration(round) * p.RetryUnit

			for _, candidate := range p.Candidates {
				for i, backend := range p.Backends {
					attempt := Attempt{Round: round, Candidate: candidate, Backend: backend}
					if i == 0 {
						attempt.Delay = delay
					}
					if !yield(attempt) {
						return
					}
				}
			}
		}
	}
}
