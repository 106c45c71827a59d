package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/internal/s2_sentiment"
	"github.com/stocklens/backend/internal/s3_scoring"
	"github.com/stocklens/backend/pkg/logger"
)

// SeriesSource resolves a symbol to a close series
type SeriesSource interface {
	Acquire(ctx context.Context, symbol string) (contracts.PriceSeries, error)
}

// IndicatorComputer turns closes into an indicator set
type IndicatorComputer interface {
	Compute(closes []float64) (contracts.IndicatorSet, error)
}

// NewsSource delivers raw news for a symbol
type NewsSource interface {
	Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error)
}

// Analyzer wires S0 → S1 → S3 with optional S2 news blending
// ⭐ SSOT: 분석 파이프라인 오케스트레이션은 여기서만
type Analyzer struct {
	series     SeriesSource
	engine     IndicatorComputer
	classifier *s2_sentiment.Classifier
	scorer     *s3_scoring.Scorer
	news       NewsSource
	store      Store
	logger     *logger.Logger
}

// Option customises an Analyzer
type Option func(*Analyzer)

// WithNews enables news blending through src
func WithNews(src NewsSource) Option {
	return func(a *Analyzer) { a.news = src }
}

// WithStore persists results through store
func WithStore(store Store) Option {
	return func(a *Analyzer) {
		if store != nil {
			a.store = store
		}
	}
}

// New creates a new analyzer
func New(
	series SeriesSource,
	engine IndicatorComputer,
	classifier *s2_sentiment.Classifier,
	scorer *s3_scoring.Scorer,
	log *logger.Logger,
	opts ...Option,
) *Analyzer {
	a := &Analyzer{
		series:     series,
		engine:     engine,
		classifier: classifier,
		scorer:     scorer,
		store:      NopStore{},
		logger:     log.WithComponent("analyzer"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewsEnabled reports whether a news source is configured
func (a *Analyzer) NewsEnabled() bool {
	return a.news != nil
}

// ComputeIndicators acquires the series for symbol and computes its
// indicators. The set's Symbol is the candidate that resolved.
func (a *Analyzer) ComputeIndicators(ctx context.Context, symbol string) (contracts.IndicatorSet, error) {
	series, err := a.series.Acquire(ctx, symbol)
	if err != nil {
		return contracts.IndicatorSet{}, err
	}

	set, err := a.compute(series.Closes)
	if err != nil {
		return contracts.IndicatorSet{}, err
	}
	set.Symbol = series.Symbol

	if err := a.store.SaveIndicators(ctx, set); err != nil {
		a.logger.WithSymbol(symbol).WithError(err).Warn("Failed to save indicators")
	}

	return set, nil
}

// compute runs the engine, turning a panic into a ComputationError
func (a *Analyzer) compute(closes []float64) (set contracts.IndicatorSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &contracts.ComputationError{Indicator: "engine", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return a.engine.Compute(closes)
}

// Analyze produces the composite verdict for symbol. It never fails:
// indicator errors degrade the verdict and news errors drop the news side.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, useNews bool) contracts.CompositeVerdict {
	log := a.logger.WithSymbol(symbol)

	input := contracts.ScoreInput{News: contracts.TechnicalOnly{}}

	set, err := a.ComputeIndicators(ctx, symbol)
	if err != nil {
		log.WithError(err).Warn("Indicators unavailable")
		input.IndicatorErr = err
	} else {
		input.Indicators = &set
	}

	if useNews && a.news != nil {
		summary, err := a.newsSummary(ctx, symbol)
		if err != nil {
			log.WithError(err).Warn("News unavailable, scoring on indicators only")
		} else {
			input.News = contracts.NewsModeFor(summary)
		}
	}

	verdict := a.scorer.Score(input)

	if err := a.store.SaveVerdict(ctx, normalize(symbol), verdict); err != nil {
		log.WithError(err).Warn("Failed to save verdict")
	}

	return verdict
}

func (a *Analyzer) newsSummary(ctx context.Context, symbol string) (*contracts.NewsSentimentSummary, error) {
	report, err := a.news.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(report.Articles) == 0 {
		return nil, nil
	}

	articles := a.classifier.AnalyzeArticles(report.Articles)
	summary := s2_sentiment.Summarize(articles)
	return &summary, nil
}

// ProcessNews fetches, classifies and summarises the news for symbol
func (a *Analyzer) ProcessNews(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	if a.news == nil {
		return nil, fmt.Errorf("%w: no news source configured", contracts.ErrNewsUnavailable)
	}

	report, err := a.news.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	report.Articles = a.classifier.AnalyzeArticles(report.Articles)
	summary := s2_sentiment.Summarize(report.Articles)
	report.OverallSentiment = &summary
	report.SummaryText = a.classifier.SummaryText(report.Articles)

	a.logger.WithFields(map[string]interface{}{
		"symbol":   report.Symbol,
		"articles": summary.Total,
		"overall":  summary.Overall,
	}).Info("Processed news")

	return report, nil
}

// SaveNews persists a processed news report
func (a *Analyzer) SaveNews(ctx context.Context, report *contracts.NewsReport) error {
	if err := a.store.SaveArticleAnalysis(ctx, report.Symbol, report.Articles); err != nil {
		return fmt.Errorf("save articles: %w", err)
	}
	if err := a.store.SaveSummary(ctx, report.Symbol, report.SummaryText); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
