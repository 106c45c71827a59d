package s0_series

import (
	"context"
	"time"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/metrics"
)

// Acquirer resolves a user symbol to a usable daily close series
// ⭐ SSOT: S0 가격 시계열 수집은 여기서만
type Acquirer struct {
	backends  []Backend
	rounds    int
	retryUnit time.Duration
	logger    *logger.Logger

	// sleep is replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAcquirer creates an acquirer over backends, tried in the given order
func NewAcquirer(backends []Backend, cfg config.SeriesConfig, log *logger.Logger) *Acquirer {
	return &Acquirer{
		backends:  backends,
		rounds:    cfg.MaxRetries + 1,
		retryUnit: cfg.RetryUnit,
		logger:    log.WithComponent("s0_series"),
		sleep:     sleepContext,
	}
}

// Plan returns the search order for symbol
func (a *Acquirer) Plan(symbol string) Plan {
	return Plan{
		Candidates: Candidates(symbol),
		Backends:   a.backends,
		Rounds:     a.rounds,
		RetryUnit:  a.retryUnit,
	}
}

// Acquire returns the first series with at least contracts.MinSeriesLength
// closes. Per-attempt failures are logged and skipped; exhaustion returns
// *contracts.DataUnavailableError. Only context cancellation aborts early.
func (a *Acquirer) Acquire(ctx context.Context, symbol string) (contracts.PriceSeries, error) {
	plan := a.Plan(symbol)
	log := a.logger.WithSymbol(symbol)

	for attempt := range plan.Attempts() {
		if attempt.Delay > 0 {
			if err := a.sleep(ctx, attempt.Delay); err != nil {
				return contracts.PriceSeries{}, err
			}
		}
		if err := ctx.Err(); err != nil {
			return contracts.PriceSeries{}, err
		}

		name := attempt.Backend.Name()
		closes, err := attempt.Backend.FetchCloses(ctx, attempt.Candidate)
		if err != nil {
			metrics.SeriesAttempts.WithLabelValues(name, "error").Inc()
			log.WithFields(map[string]interface{}{
				"candidate": attempt.Candidate,
				"backend":   name,
				"round":     attempt.Round,
				"error":     err.Error(),
			}).Debug("Series attempt failed")
			continue
		}

		if len(closes) < contracts.MinSeriesLength {
			metrics.SeriesAttempts.WithLabelValues(name, "short").Inc()
			log.WithFields(map[string]interface{}{
				"candidate": attempt.Candidate,
				"backend":   name,
				"round":     attempt.Round,
				"count":     len(closes),
			}).Debug("Series too short")
			continue
		}

		metrics.SeriesAttempts.WithLabelValues(name, "success").Inc()
		metrics.SeriesResolutions.WithLabelValues("resolved").Inc()
		log.WithFields(map[string]interface{}{
			"candidate": attempt.Candidate,
			"backend":   name,
			"round":     attempt.Round,
			"count":     len(closes),
		}).Info("Series resolved")

		return contracts.PriceSeries{
			Symbol: attempt.Candidate,
			Source: name,
			Closes: closes,
		}, nil
	}

	metrics.SeriesResolutions.WithLabelValues("unavailable").Inc()
	log.Warn("No usable series for any candidate")

	return contracts.PriceSeries{}, &contracts.DataUnavailableError{
		Symbol: symbol,
		Tried:  plan.Candidates,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
