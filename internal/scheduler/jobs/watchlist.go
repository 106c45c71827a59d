package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/logger"
)

// DefaultWatchlistWorkers bounds concurrent symbol analyses
const DefaultWatchlistWorkers = 4

// ErrEmptyWatchlist is returned when there is nothing to analyse
var ErrEmptyWatchlist = errors.New("watchlist is empty")

// Analyzer produces a composite verdict for a symbol
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, useNews bool) contracts.CompositeVerdict
	NewsEnabled() bool
}

// WatchlistResult is the outcome for one symbol
type WatchlistResult struct {
	Symbol  string
	Verdict contracts.CompositeVerdict
}

// Degraded reports whether the technical half failed
func (r WatchlistResult) Degraded() bool {
	return r.Verdict.Degraded()
}

// WatchlistJob analyses every watchlist symbol on a schedule
// ⭐ SSOT: 관심종목 정기 분석은 이 Job에서만
type WatchlistJob struct {
	analyzer Analyzer
	symbols  []string
	schedule string
	workers  int
	logger   *logger.Logger
}

// NewWatchlistJob creates a new watchlist job
func NewWatchlistJob(analyzer Analyzer, symbols []string, schedule string, log *logger.Logger) *WatchlistJob {
	return &WatchlistJob{
		analyzer: analyzer,
		symbols:  symbols,
		schedule: schedule,
		workers:  DefaultWatchlistWorkers,
		logger:   log.WithComponent("watchlist_job"),
	}
}

// WithWorkers overrides the worker count
func (j *WatchlistJob) WithWorkers(n int) *WatchlistJob {
	if n > 0 {
		j.workers = n
	}
	return j
}

// Name returns the job name
func (j *WatchlistJob) Name() string {
	return "watchlist_analysis"
}

// Schedule returns the cron schedule
func (j *WatchlistJob) Schedule() string {
	return j.schedule
}

// Run analyses the watchlist. Verdicts persist through the analyzer's store.
// Fails only when every symbol came back degraded.
func (j *WatchlistJob) Run(ctx context.Context) error {
	results, err := j.Analyze(ctx)
	if err != nil {
		return err
	}

	degraded := 0
	for _, r := range results {
		if r.Degraded() {
			degraded++
		}
	}

	if degraded == len(results) {
		return fmt.Errorf("all %d watchlist symbols failed: %s", degraded, results[0].Verdict.Error)
	}
	return nil
}

// Analyze runs the worker pool and returns results in watchlist order
func (j *WatchlistJob) Analyze(ctx context.Context) ([]WatchlistResult, error) {
	if len(j.symbols) == 0 {
		return nil, ErrEmptyWatchlist
	}

	useNews := j.analyzer.NewsEnabled()

	workers := j.workers
	if workers > len(j.symbols) {
		workers = len(j.symbols)
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(j.symbols),
		"workers": workers,
		"news":    useNews,
	}).Info("Starting watchlist analysis")

	results := make([]WatchlistResult, len(j.symbols))
	indexCh := make(chan int, len(j.symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				symbol := j.symbols[idx]
				results[idx] = WatchlistResult{
					Symbol:  symbol,
					Verdict: j.analyzer.Analyze(ctx, symbol, useNews),
				}
			}
		}()
	}

	for i := range j.symbols {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	success, failed := 0, 0
	for _, r := range results {
		if r.Degraded() {
			failed++
			j.logger.WithSymbol(r.Symbol).WithField("error", r.Verdict.Error).Warn("Watchlist symbol degraded")
			continue
		}
		success++
	}

	j.logger.WithFields(map[string]interface{}{
		"success": success,
		"failed":  failed,
		"total":   len(results),
	}).Info("Watchlist analysis completed")

	return results, nil
}
