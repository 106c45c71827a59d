package newsfeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/httputil"
	"github.com/stocklens/backend/pkg/logger"
)

const maxRSSArticles = 20

// RSSSource scrapes the Yahoo Finance headline feed for a symbol
type RSSSource struct {
	feedURL string
	timeout time.Duration
	logger  *logger.Logger
}

// NewRSSSource creates an RSS source
func NewRSSSource(cfg config.NewsConfig, log *logger.Logger) *RSSSource {
	return &RSSSource{
		feedURL: cfg.RSSURL,
		timeout: cfg.Timeout,
		logger:  log.WithComponent("newsfeed.rss"),
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch reads up to maxRSSArticles items of the feed
func (s *RSSSource) Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	feedURL, err := s.requestURL(symbol)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(httputil.BrowserUserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	articles := []contracts.Article{}
	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(articles) >= maxRSSArticles {
			return
		}

		headline := strings.TrimSpace(e.ChildText("title"))
		if headline == "" {
			return
		}

		articles = append(articles, contracts.Article{
			Headline:    headline,
			Summary:     e.ChildText("description"),
			URL:         strings.TrimSpace(e.ChildText("link")),
			Source:      "Yahoo Finance",
			PublishedAt: strings.TrimSpace(e.ChildText("pubDate")),
		})
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(feedURL); err != nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("rss request failed: %w", fetchErr)
		}
		return nil, fmt.Errorf("rss request failed: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("rss request failed: %w", fetchErr)
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"articles": len(articles),
	}).Debug("Fetched RSS feed")

	return &contracts.NewsReport{
		Symbol:   strings.ToUpper(symbol),
		Source:   s.Name(),
		Articles: cleanArticles(articles),
	}, nil
}

func (s *RSSSource) requestURL(symbol string) (string, error) {
	u, err := url.Parse(s.feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid RSS URL: %w", err)
	}

	q := u.Query()
	q.Set("s", strings.ToUpper(symbol))
	q.Set("region", "US")
	q.Set("lang", "en-US")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
