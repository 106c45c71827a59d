package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stocklens/backend/internal/analyzer"
	"github.com/stocklens/backend/internal/data/repos"
	"github.com/stocklens/backend/internal/external/newsfeed"
	"github.com/stocklens/backend/internal/external/yahoo"
	"github.com/stocklens/backend/internal/s0_series"
	"github.com/stocklens/backend/internal/s1_indicators"
	"github.com/stocklens/backend/internal/s2_sentiment"
	"github.com/stocklens/backend/internal/s3_scoring"
	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/database"
	"github.com/stocklens/backend/pkg/httputil"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/metrics"
	"github.com/stocklens/backend/pkg/redis"
)

// redisPrefix namespaces every stocklens key in a shared Redis
const redisPrefix = "stocklens"

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB // nil without DATABASE_URL
	redis    *redis.Client
	repo     *repos.AnalysisRepository // nil without DATABASE_URL
	analyzer *analyzer.Analyzer
}

// loadConfig loads config and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires config -> clients -> stages -> analyzer
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	// 1. Logger + metrics
	log := logger.New(cfg)
	if cfg.MetricsEnabled {
		metrics.Init()
	}

	a := &app{cfg: cfg, log: log}

	// 2. Database (optional)
	db, err := database.New(cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Debug("DATABASE_URL not set, persistence disabled")
	case err != nil:
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		a.db = db
		a.repo = repos.NewAnalysisRepository(db)

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.repo.EnsureSchema(schemaCtx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 3. Redis (optional; disabled client is a no-op)
	rdb, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rdb

	// 4. HTTP clients
	yahooHTTP := httputil.NewWithTimeout(cfg, log, cfg.Yahoo.Timeout)
	switch {
	case cfg.Yahoo.RatePerSec == 0:
		// 0 = 무제한
	case rdb.Enabled():
		// 여러 프로세스가 같은 Yahoo 한도를 공유
		limiter := redis.NewRateLimiter(rdb, redisPrefix)
		yahooHTTP.WithRateLimiter(limiter.For(redis.YahooRateLimit(cfg.Yahoo.RatePerSec)))
	default:
		yahooHTTP.WithRateLimit(cfg.Yahoo.RatePerSec)
	}
	// 재시도는 Acquirer가 담당
	yahooHTTP.DisableRetry()

	newsHTTP := httputil.NewWithTimeout(cfg, log, cfg.News.Timeout)

	// 5. Stages
	yc := yahoo.NewClient(yahooHTTP, cfg.Yahoo, log)
	acquirer := s0_series.NewAcquirer(
		[]s0_series.Backend{yc.Spark(), yc.History(), yc.Chart()},
		cfg.Series,
		log,
	)

	engine := s1_indicators.NewEngine(s1_indicators.DefaultConfig())

	classifier, err := newClassifier(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	scorer := s3_scoring.NewScorer(log)

	// 6. News sources: webhook first (if configured), RSS as fallback
	var sources []newsfeed.Source
	if cfg.News.WebhookURL != "" {
		cache := redis.NewCache(rdb, redisPrefix)
		sources = append(sources, newsfeed.NewWebhookSource(newsHTTP, cfg.News, cache, log))
	}
	if cfg.News.RSSURL != "" {
		sources = append(sources, newsfeed.NewRSSSource(cfg.News, log))
	}

	opts := []analyzer.Option{}
	if len(sources) > 0 {
		opts = append(opts, analyzer.WithNews(newsfeed.NewChain(log, sources...)))
	}
	if a.repo != nil {
		opts = append(opts, analyzer.WithStore(a.repo))
	}

	a.analyzer = analyzer.New(acquirer, engine, classifier, scorer, log, opts...)

	log.WithFields(map[string]interface{}{
		"env":          cfg.Env,
		"news_sources": len(sources),
		"persistence":  a.repo != nil,
		"redis":        rdb.Enabled(),
	}).Debug("Application wired")

	return a, nil
}

func newClassifier(cfg *config.Config) (*s2_sentiment.Classifier, error) {
	if cfg.SentimentLexiconPath == "" {
		classifier, err := s2_sentiment.NewDefaultClassifier()
		if err != nil {
			return nil, fmt.Errorf("load default lexicon: %w", err)
		}
		return classifier, nil
	}

	lex, err := s2_sentiment.LoadLexicon(cfg.SentimentLexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", cfg.SentimentLexiconPath, err)
	}
	return s2_sentiment.NewClassifier(lex), nil
}

// Close releases the database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
