package analyzer

import (
	"context"

	"github.com/stocklens/backend/internal/contracts"
)

// Store persists analysis results
type Store interface {
	SaveIndicators(ctx context.Context, set contracts.IndicatorSet) error
	SaveVerdict(ctx context.Context, symbol string, verdict contracts.CompositeVerdict) error
	SaveArticleAnalysis(ctx context.Context, symbol string, articles []contracts.Article) error
	SaveSummary(ctx context.Context, symbol, summaryText string) error
}

// NopStore discards everything; used when no database is configured
type NopStore struct{}

func (NopStore) SaveIndicators(context.Context, contracts.IndicatorSet) error { return nil }

func (NopStore) SaveVerdict(context.Context, string, contracts.CompositeVerdict) error { return nil }

func (NopStore) SaveArticleAnalysis(context.Context, string, []contracts.Article) error { return nil }

func (NopStore) SaveSummary(context.Context, string, string) error { return nil }
