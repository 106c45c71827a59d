package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/database"
)

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS stocklens`,
	`CREATE TABLE IF NOT EXISTS stocklens.indicators (
		id         BIGSERIAL PRIMARY KEY,
		symbol     TEXT        NOT NULL,
		payload    JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS stocklens.verdicts (
		id         BIGSERIAL PRIMARY KEY,
		symbol     TEXT          NOT NULL,
		label      TEXT          NOT NULL,
		score      NUMERIC(6, 2) NOT NULL,
		degraded   BOOLEAN       NOT NULL DEFAULT false,
		payload    JSONB         NOT NULL,
		created_at TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verdicts_symbol_created
		ON stocklens.verdicts (symbol, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS stocklens.article_analyses (
		id         BIGSERIAL PRIMARY KEY,
		symbol     TEXT        NOT NULL,
		articles   JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS stocklens.summaries (
		id           BIGSERIAL PRIMARY KEY,
		symbol       TEXT        NOT NULL,
		summary_text TEXT        NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// StoredVerdict is a verdict row with its timestamp
type StoredVerdict struct {
	Symbol    string                     `json:"symbol"`
	Verdict   contracts.CompositeVerdict `json:"verdict"`
	CreatedAt time.Time                  `json:"created_at"`
}

// AnalysisRepository persists indicators, verdicts and news analyses
// ⭐ SSOT: 분석 결과 저장/조회는 여기서만
type AnalysisRepository struct {
	db *database.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *database.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// EnsureSchema creates the stocklens tables if missing
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	return r.db.Migrate(ctx, schema...)
}

// SaveIndicators stores an indicator set
func (r *AnalysisRepository) SaveIndicators(ctx context.Context, set contracts.IndicatorSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal indicators: %w", err)
	}

	query := `INSERT INTO stocklens.indicators (symbol, payload) VALUES ($1, $2)`
	if _, err := r.db.Pool.Exec(ctx, query, set.Symbol, payload); err != nil {
		return fmt.Errorf("failed to insert indicators: %w", err)
	}
	return nil
}

// SaveVerdict stores a composite verdict for symbol
func (r *AnalysisRepository) SaveVerdict(ctx context.Context, symbol string, verdict contracts.CompositeVerdict) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	query := `
		INSERT INTO stocklens.verdicts (symbol, label, score, degraded, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Pool.Exec(ctx, query, symbol, string(verdict.Label), verdict.Score, verdict.Degraded(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert verdict: %w", err)
	}
	return nil
}

// SaveArticleAnalysis stores classified articles for symbol
func (r *AnalysisRepository) SaveArticleAnalysis(ctx context.Context, symbol string, articles []contracts.Article) error {
	if articles == nil {
		articles = []contracts.Article{}
	}
	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	query := `INSERT INTO stocklens.article_analyses (symbol, articles) VALUES ($1, $2)`
	if _, err := r.db.Pool.Exec(ctx, query, symbol, payload); err != nil {
		return fmt.Errorf("failed to insert article analysis: %w", err)
	}
	return nil
}

// SaveSummary stores the news summary text for symbol
func (r *AnalysisRepository) SaveSummary(ctx context.Context, symbol, summaryText string) error {
	query := `INSERT INTO stocklens.summaries (symbol, summary_text) VALUES ($1, $2)`
	if _, err := r.db.Pool.Exec(ctx, query, symbol, summaryText); err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

// LatestVerdicts returns up to limit verdicts for symbol, newest first
func (r *AnalysisRepository) LatestVerdicts(ctx context.Context, symbol string, limit int) ([]StoredVerdict, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT symbol, payload, created_at
		FROM stocklens.verdicts
		WHERE symbol = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []StoredVerdict{}
	for rows.Next() {
		var v StoredVerdict
		var payload []byte

		if err := rows.Scan(&v.Symbol, &payload, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		if err := json.Unmarshal(payload, &v.Verdict); err != nil {
			return nil, fmt.Errorf("failed to decode verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return verdicts, nil
}
