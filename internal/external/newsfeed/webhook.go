package newsfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/httputil"
	"github.com/stocklens/backend/pkg/logger"
	"github.com/stocklens/backend/pkg/redis"
)

// WebhookSource fetches articles from a workflow webhook that returns
// {"symbol": ..., "articles": [...]} or a one-element list of it
type WebhookSource struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	webhookURL string
	apiKey     string
	logger     *logger.Logger
}

// NewWebhookSource creates a webhook source. cache may be nil.
func NewWebhookSource(httpClient *httputil.Client, cfg config.NewsConfig, cache *redis.Cache, log *logger.Logger) *WebhookSource {
	return &WebhookSource{
		httpClient: httpClient,
		cache:      cache,
		webhookURL: cfg.WebhookURL,
		apiKey:     cfg.APIKey,
		logger:     log.WithComponent("newsfeed.webhook"),
	}
}

func (s *WebhookSource) Name() string { return "webhook" }

type webhookPayload struct {
	Symbol   string              `json:"symbol"`
	Articles []contracts.Article `json:"articles"`
}

// Fetch returns the webhook payload for symbol, cached for redis.TTLShort
func (s *WebhookSource) Fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	if s.cache == nil {
		return s.fetch(ctx, symbol)
	}

	var report contracts.NewsReport
	err := s.cache.GetOrSet(ctx, redis.NewsKey(s.Name(), symbol), &report, redis.TTLShort, func() (interface{}, error) {
		return s.fetch(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *WebhookSource) fetch(ctx context.Context, symbol string) (*contracts.NewsReport, error) {
	fullURL, err := s.requestURL(symbol)
	if err != nil {
		return nil, err
	}

	var headers map[string]string
	if strings.Contains(s.webhookURL, "ngrok") {
		headers = map[string]string{"ngrok-skip-browser-warning": "true"}
	}

	body, err := s.httpClient.GetBody(ctx, fullURL, headers)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	payload, err := parseWebhookPayload(body)
	if err != nil {
		return nil, fmt.Errorf("parse webhook response failed: %w", err)
	}

	return &contracts.NewsReport{
		Symbol:   strings.ToUpper(symbol),
		Source:   s.Name(),
		Articles: cleanArticles(payload.Articles),
	}, nil
}

func (s *WebhookSource) requestURL(symbol string) (string, error) {
	if s.webhookURL == "" {
		return "", fmt.Errorf("webhook URL not configured")
	}

	u, err := url.Parse(s.webhookURL)
	if err != nil {
		return "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	q := u.Query()
	q.Set("stock", symbol)
	if s.apiKey != "" {
		q.Set("api_key", s.apiKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// parseWebhookPayload accepts an object or a list whose first element
// is the object
func parseWebhookPayload(body []byte) (webhookPayload, error) {
	var payload webhookPayload

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []webhookPayload
		if err := json.Unmarshal(body, &list); err != nil {
			return payload, err
		}
		if len(list) == 0 {
			return payload, fmt.Errorf("empty list response")
		}
		return list[0], nil
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
