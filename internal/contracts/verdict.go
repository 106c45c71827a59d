package contracts

// NewsMode selects how the composite score treats news.
// The only implementations are TechnicalOnly and TechnicalPlusNews.
type NewsMode interface {
	ModeName() string
	newsMode()
}

// TechnicalOnly scores from indicators alone
type TechnicalOnly struct{}

// TechnicalPlusNews blends indicators with a non-empty news summary
type TechnicalPlusNews struct {
	Summary NewsSentimentSummary
}

func (TechnicalOnly) ModeName() string     { return "technical" }
func (TechnicalPlusNews) ModeName() string { return "technical_news" }
func (TechnicalOnly) newsMode()            {}
func (TechnicalPlusNews) newsMode()        {}

// NewsModeFor picks the mode for an optional summary.
// nil and zero-article summaries fall back to TechnicalOnly.
func NewsModeFor(summary *NewsSentimentSummary) NewsMode {
	if summary == nil || summary.Total == 0 {
		return TechnicalOnly{}
	}
	return TechnicalPlusNews{Summary: *summary}
}

// ScoreInput is everything the composite scorer needs.
// Exactly one of Indicators and IndicatorErr is expected to be set.
type ScoreInput struct {
	Indicators   *IndicatorSet
	IndicatorErr error
	News         NewsMode // nil means TechnicalOnly
}

// CompositeVerdict is the final blended call
// ⭐ SSOT: S3 최종 판정 결과
type CompositeVerdict struct {
	Label         Label                 `json:"label"`
	Score         float64               `json:"score"`
	Indicators    *IndicatorSet         `json:"indicators,omitempty"`
	NewsSentiment *NewsSentimentSummary `json:"news_sentiment,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// Degraded reports whether the technical side was unavailable
func (v CompositeVerdict) Degraded() bool {
	return v.Error != ""
}
