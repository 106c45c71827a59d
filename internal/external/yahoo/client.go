package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/httputil"
	"github.com/stocklens/backend/pkg/logger"
)

// ErrNoData is returned when a response parses but carries no closes
var ErrNoData = errors.New("yahoo: no data in response")

const (
	seriesRange    = "6mo"
	seriesInterval = "1d"
	historyWindow  = 6 * 30 * 24 * time.Hour
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	siteURL    string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("yahoo"),
		baseURL:    cfg.BaseURL,
		siteURL:    cfg.SiteURL,
		now:        time.Now,
	}
}

// Spark returns the bulk download backend
func (c *Client) Spark() *SparkBackend {
	return &SparkBackend{client: c}
}

// History returns the single-ticker history page backend
func (c *Client) History() *HistoryBackend {
	return &HistoryBackend{client: c}
}

// Chart returns the raw chart endpoint backend
func (c *Client) Chart() *ChartBackend {
	return &ChartBackend{client: c}
}

// fetch GETs fullURL and returns the body of a 200 response
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	body, err := c.httpClient.GetBody(ctx, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return body, nil
}

func (c *Client) apiURL(path string, params url.Values) string {
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// dropNulls keeps the defined closes in order
func dropNulls(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

type quoteIndicators struct {
	Quote []struct {
		Close []*float64 `json:"close"`
	} `json:"quote"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("yahoo: %s: %s", e.Code, e.Description)
}
