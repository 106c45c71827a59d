package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/internal/s1_indicators"
	"github.com/stocklens/backend/internal/s2_sentiment"
	"github.com/stocklens/backend/internal/s3_scoring"
	"github.com/stocklens/backend/pkg/logger"
)

type stubSeries struct {
	series contracts.PriceSeries
	err    error
}

func (s stubSeries) Acquire(ctx context.Context, symbol string) (contracts.PriceSeries, error) {
	return s.series, s.err
}

type stubEngine struct {
	set   contracts.IndicatorSet
	panic bool
}

func (e stubEngine) Compute(closes []float64) (contracts.IndicatorSet, error) {
	if e.panic {
		var m map[string]int
		m["boom"]++
	}
	return e.set, nil
}

type stubNews struct {
	report *contracts.NewsReport
	err    error
	calls  int
}

func (n *stubNews) Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	// 호출마다 새 슬라이스
	report := *n.report
	report.Articles = append([]contracts.Article(nil), n.report.Articles...)
	return &report, nil
}

type recordingStore struct {
	NopStore
	indicators []contracts.IndicatorSet
	verdicts   map[string]contracts.CompositeVerdict
	articles   map[string][]contracts.Article
	summaries  map[string]string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		verdicts:  map[string]contracts.CompositeVerdict{},
		articles:  map[string][]contracts.Article{},
		summaries: map[string]string{},
	}
}

func (s *recordingStore) SaveIndicators(ctx context.Context, set contracts.IndicatorSet) error {
	s.indicators = append(s.indicators, set)
	return nil
}

func (s *recordingStore) SaveVerdict(ctx context.Context, symbol string, v contracts.CompositeVerdict) error {
	s.verdicts[symbol] = v
	return nil
}

func (s *recordingStore) SaveArticleAnalysis(ctx context.Context, symbol string, articles []contracts.Article) error {
	s.articles[symbol] = articles
	return nil
}

func (s *recordingStore) SaveSummary(ctx context.Context, symbol, text string) error {
	s.summaries[symbol] = text
	return nil
}

var f = contracts.Float

func resolved(symbol string) stubSeries {
	return stubSeries{series: contracts.PriceSeries{Symbol: symbol, Source: "chart", Closes: make([]float64, 40)}}
}

func newTestAnalyzer(t *testing.T, series SeriesSource, engine IndicatorComputer, opts ...Option) *Analyzer {
	t.Helper()
	classifier, err := s2_sentiment.NewDefaultClassifier()
	require.NoError(t, err)
	return New(series, engine, classifier, s3_scoring.NewScorer(logger.Nop()), logger.Nop(), opts...)
}

func mixedNews() *stubNews {
	positive := contracts.Article{Headline: "Profits surge", Summary: "to record high"}
	return &stubNews{report: &contracts.NewsReport{
		Symbol: "INFY",
		Articles: []contracts.Article{
			positive, positive, positive,
			{Headline: "Shares plunge", Summary: "after fraud probe"},
		},
	}}
}

func TestAnalyze_TechnicalOnly(t *testing.T) {
	store := newRecordingStore()
	engine := stubEngine{set: contracts.IndicatorSet{RSI: f(65), MACD: f(1.2), Signal: f(1.0)}}
	a := newTestAnalyzer(t, resolved("INFY.NS"), engine, WithStore(store))

	verdict := a.Analyze(context.Background(), "infy", false)

	assert.Equal(t, contracts.LabelPositive, verdict.Label)
	assert.Equal(t, 0.8, verdict.Score)
	require.NotNil(t, verdict.Indicators)
	assert.Equal(t, "INFY.NS", verdict.Indicators.Symbol)
	assert.Nil(t, verdict.NewsSentiment)

	assert.Equal(t, verdict, store.verdicts["INFY"])
	require.Len(t, store.indicators, 1)
	assert.Equal(t, "INFY.NS", store.indicators[0].Symbol)
}

func TestAnalyze_WithNews(t *testing.T) {
	engine := stubEngine{set: contracts.IndicatorSet{RSI: f(45), MACD: f(0.5), Signal: f(0.9)}}
	news := mixedNews()
	a := newTestAnalyzer(t, resolved("INFY.NS"), engine, WithNews(news))

	verdict := a.Analyze(context.Background(), "INFY", true)

	assert.Equal(t, contracts.LabelNeutral, verdict.Label)
	assert.Equal(t, -0.12, verdict.Score)
	require.NotNil(t, verdict.NewsSentiment)
	assert.Equal(t, contracts.NewsSentimentSummary{
		Positive: 3, Negative: 1, Total: 4, Overall: contracts.LabelPositive,
	}, *verdict.NewsSentiment)
}

func TestAnalyze_NewsSkipped(t *testing.T) {
	engine := stubEngine{set: contracts.IndicatorSet{RSI: f(45), MACD: f(0.5), Signal: f(0.9)}}

	t.Run("disabled by caller", func(t *testing.T) {
		news := mixedNews()
		a := newTestAnalyzer(t, resolved("INFY"), engine, WithNews(news))

		verdict := a.Analyze(context.Background(), "INFY", false)

		assert.Equal(t, 0, news.calls)
		assert.Equal(t, -0.45, verdict.Score)
	})

	t.Run("fetch failure is silent", func(t *testing.T) {
		news := &stubNews{err: errors.New("webhook down")}
		a := newTestAnalyzer(t, resolved("INFY"), engine, WithNews(news))

		verdict := a.Analyze(context.Background(), "INFY", true)

		assert.Equal(t, 1, news.calls)
		assert.Nil(t, verdict.NewsSentiment)
		assert.Equal(t, contracts.LabelNegative, verdict.Label)
		assert.Equal(t, -0.45, verdict.Score)
		assert.Empty(t, verdict.Error)
	})

	t.Run("no articles", func(t *testing.T) {
		news := &stubNews{report: &contracts.NewsReport{Symbol: "INFY"}}
		a := newTestAnalyzer(t, resolved("INFY"), engine, WithNews(news))

		verdict := a.Analyze(context.Background(), "INFY", true)

		assert.Nil(t, verdict.NewsSentiment)
		assert.Equal(t, -0.45, verdict.Score)
	})
}

func TestAnalyze_DataUnavailable(t *testing.T) {
	unavailable := &contracts.DataUnavailableError{Symbol: "XYZ", Tried: []string{"XYZ", "XYZ.NS", "XYZ.BO", "XYZ.NSE"}}
	a := newTestAnalyzer(t, stubSeries{err: unavailable}, stubEngine{})

	verdict := a.Analyze(context.Background(), "XYZ", true)

	assert.Equal(t, contracts.LabelNeutral, verdict.Label)
	assert.Equal(t, 0.0, verdict.Score)
	assert.Nil(t, verdict.Indicators)
	assert.Equal(t, "No valid data found for symbol: XYZ. Tried: XYZ, XYZ.NS, XYZ.BO, XYZ.NSE", verdict.Error)
}

func TestComputeIndicators_RecoversPanic(t *testing.T) {
	a := newTestAnalyzer(t, resolved("INFY"), stubEngine{panic: true})

	_, err := a.ComputeIndicators(context.Background(), "INFY")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrComputation)
}

func TestComputeIndicators_RealEngine(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 1500 + 40*math.Sin(float64(i)/6) + float64(i)
	}
	series := stubSeries{series: contracts.PriceSeries{Symbol: "INFY.NS", Source: "spark", Closes: closes}}
	a := newTestAnalyzer(t, series, s1_indicators.NewEngine(s1_indicators.DefaultConfig()))

	set, err := a.ComputeIndicators(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, "INFY.NS", set.Symbol)
	require.NotNil(t, set.RSI)
	assert.True(t, *set.RSI >= 0 && *set.RSI <= 100)
	require.NotNil(t, set.BollUpper)
	assert.Greater(t, *set.BollUpper, *set.BollLower)
}

func TestProcessNews(t *testing.T) {
	store := newRecordingStore()
	a := newTestAnalyzer(t, resolved("INFY"), stubEngine{}, WithNews(mixedNews()), WithStore(store))

	report, err := a.ProcessNews(context.Background(), "INFY")
	require.NoError(t, err)

	require.Len(t, report.Articles, 4)
	for _, article := range report.Articles {
		assert.NotEmpty(t, article.Sentiment)
		assert.NotNil(t, article.Score)
	}
	require.NotNil(t, report.OverallSentiment)
	assert.Equal(t, contracts.LabelPositive, report.OverallSentiment.Overall)
	assert.NotEmpty(t, report.SummaryText)

	require.NoError(t, a.SaveNews(context.Background(), report))
	assert.Len(t, store.articles["INFY"], 4)
	assert.Equal(t, report.SummaryText, store.summaries["INFY"])
}

func TestProcessNews_Errors(t *testing.T) {
	a := newTestAnalyzer(t, resolved("INFY"), stubEngine{})
	assert.False(t, a.NewsEnabled())

	_, err := a.ProcessNews(context.Background(), "INFY")
	assert.ErrorIs(t, err, contracts.ErrNewsUnavailable)

	failing := newTestAnalyzer(t, resolved("INFY"), stubEngine{}, WithNews(&stubNews{err: errors.New("timeout")}))
	_, err = failing.ProcessNews(context.Background(), "INFY")
	assert.EqualError(t, err, "timeout")
}
