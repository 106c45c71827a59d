package s3_scoring

import (
	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/metrics"
	"github.com/stocklens/backend/pkg/numeric"
)

// Weights and thresholds of the composite score
const (
	rsiUpper  = 60.0
	rsiLower  = 40.0
	rsiWeight = 0.35

	trendWeight = 0.45

	newsWeight     = 0.5
	blendTechnical = 0.6
	blendNews      = 0.4

	positiveCutoff = 0.2
	negativeCutoff = -0.2
)

// Scorer blends technical indicators with optional news sentiment
// ⭐ SSOT: 최종 판정 점수 계산은 여기서만
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new composite scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log.WithComponent("s3_scoring")}
}

// Score produces the composite verdict for input.
// It never fails: an indicator error degrades the technical score to 0
// and is reported in the verdict's Error field.
func (s *Scorer) Score(input contracts.ScoreInput) contracts.CompositeVerdict {
	mode := input.News
	if mode == nil {
		mode = contracts.TechnicalOnly{}
	}

	verdict := contracts.CompositeVerdict{}

	var technical float64
	switch {
	case input.IndicatorErr != nil:
		verdict.Error = input.IndicatorErr.Error()
	case input.Indicators != nil:
		technical = TechnicalScore(input.Indicators)
		indicators := *input.Indicators
		verdict.Indicators = &indicators
	}

	blended := technical
	if withNews, ok := mode.(contracts.TechnicalPlusNews); ok {
		summary := withNews.Summary
		verdict.NewsSentiment = &summary
		blended = blendTechnical*technical + blendNews*NewsScore(summary)
	}

	verdict.Label = labelFor(blended)
	verdict.Score = numeric.Round2(blended)

	metrics.Verdicts.WithLabelValues(string(verdict.Label), mode.ModeName()).Inc()
	s.logger.WithFields(map[string]interface{}{
		"label":     verdict.Label,
		"score":     verdict.Score,
		"technical": technical,
		"mode":      mode.ModeName(),
	}).Debug("Composite verdict")

	return verdict
}

// TechnicalScore sums the momentum and trend contributions.
// Undefined indicators contribute nothing.
func TechnicalScore(set *contracts.IndicatorSet) float64 {
	var score float64

	if set.RSI != nil {
		switch rsi := *set.RSI; {
		case rsi >= rsiUpper:
			score += rsiWeight
		case rsi <= rsiLower:
			score -= rsiWeight
		}
	}

	if set.HasTrend() {
		switch {
		case *set.MACD > *set.Signal:
			score += trendWeight
		case *set.MACD < *set.Signal:
			score -= trendWeight
		}
	}

	return score
}

// NewsScore maps a news summary to [-0.5, 0.5]
func NewsScore(summary contracts.NewsSentimentSummary) float64 {
	if summary.Total == 0 {
		return 0
	}

	total := float64(summary.Total)
	switch summary.Overall {
	case contracts.LabelPositive:
		return newsWeight * float64(summary.Positive) / total
	case contracts.LabelNegative:
		return -newsWeight * float64(summary.Negative) / total
	default:
		return 0
	}
}

func labelFor(score float64) contracts.Label {
	switch {
	case score >= positiveCutoff:
		return contracts.LabelPositive
	case score <= negativeCutoff:
		return contracts.LabelNegative
	default:
		return contracts.LabelNeutral
	}
}
