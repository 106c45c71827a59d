package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/metrics"
)

// Source delivers raw (unclassified) news for a symbol
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error)
}

// Chain tries sources in order and returns the first success
type Chain struct {
	sources []Source
	logger  *logger.Logger
}

// NewChain creates a chain over sources
func NewChain(log *logger.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  log.WithComponent("newsfeed"),
	}
}

func (c *Chain) Name() string { return "chain" }

// Fetch returns the first successful report. When every source fails the
// error wraps contracts.ErrNewsUnavailable and each source error.
func (c *Chain) Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	var errs []error

	for _, src := range c.sources {
		report, err := src.Fetch(ctx, symbol)
		if err != nil {
			metrics.NewsFetches.WithLabelValues(src.Name(), "error").Inc()
			c.logger.WithFields(map[string]interface{}{
				"source": src.Name(),
				"symbol": symbol,
				"error":  err.Error(),
			}).Warn("News source failed")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		metrics.NewsFetches.WithLabelValues(src.Name(), "success").Inc()
		c.logger.WithFields(map[string]interface{}{
			"source":   src.Name(),
			"symbol":   symbol,
			"articles": len(report.Articles),
		}).Debug("Fetched news")
		return report, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no news source configured", contracts.ErrNewsUnavailable)
	}
	return nil, fmt.Errorf("%w: %w", contracts.ErrNewsUnavailable, errors.Join(errs...))
}

// stripHTML returns the visible text of an HTML fragment with
// whitespace collapsed
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func cleanArticles(articles []contracts.Article) []contracts.Article {
	if articles == nil {
		return []contracts.Article{}
	}
	for i := range articles {
		articles[i].Headline = stripHTML(articles[i].Headline)
		articles[i].Summary = stripHTML(articles[i].Summary)
	}
	return articles
}
