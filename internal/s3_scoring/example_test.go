package s3_scoring_test

import (
	"fmt"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/internal/s3_scoring"
	"github.com/stocklens/backend/pkg/logger"
)

// Example blends a bearish trend with mildly positive news
func Example() {
	scorer := s3_scoring.NewScorer(logger.Nop())

	summary := &contracts.NewsSentimentSummary{
		Positive: 3,
		Negative: 1,
		Total:    4,
		Overall:  contracts.LabelPositive,
	}

	verdict := scorer.Score(contracts.ScoreInput{
		Indicators: &contracts.IndicatorSet{
			Symbol: "INFY.NS",
			RSI:    contracts.Float(45),
			MACD:   contracts.Float(-0.4),
			Signal: contracts.Float(0.1),
		},
		News: contracts.NewsModeFor(summary),
	})

	fmt.Printf("%s %.2f\n", verdict.Label, verdict.Score)
	// Output: Neutral -0.12
}
