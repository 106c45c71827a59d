package contracts

// Label is a three-way directional label
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// SentimentResult is the polarity of one piece of text
type SentimentResult struct {
	Label Label   `json:"sentiment"`
	Score float64 `json:"score"` // [-1, 1], 2 decimals
}

// Article is one news item as delivered by an upstream news source.
// Sentiment and Score are filled in by the classifier.
type Article struct {
	Headline    string   `json:"headline"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url,omitempty"`
	Source      string   `json:"source,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	Sentiment   Label    `json:"sentiment,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// Text is the classifier input for an article
func (a Article) Text() string {
	return a.Headline + " " + a.Summary
}

// NewsSentimentSummary aggregates per-article labels
type NewsSentimentSummary struct {
	Positive int   `json:"positive_articles"`
	Negative int   `json:"negative_articles"`
	Neutral  int   `json:"neutral_articles"`
	Total    int   `json:"total_articles"`
	Overall  Label `json:"overall"`
}

// NewsReport is the processed news payload for one symbol
type NewsReport struct {
	Symbol           string                `json:"symbol"`
	Source           string                `json:"source,omitempty"`
	Articles         []Article             `json:"articles"`
	OverallSentiment *NewsSentimentSummary `json:"overall_sentiment,omitempty"`
	SummaryText      string                `json:"summary_text,omitempty"`
}
