package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/httputil"
	"github.com/stocklens/backend/pkg/logger"
)

const sparkBody = `{"spark":{"result":[{"symbol":"INFY.NS","response":[{"timestamp":[1,2,3,4],
"indicators":{"quote":[{"close":[1500.5,null,1510.25,1498]}]}}]}],"error":null}}`

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"INFY.NS"},"timestamp":[1,2,3],
"indicators":{"quote":[{"open":[1,2,3],"close":[101.5,null,103]}]}}],"error":null}}`

const chartErrorBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

const historyPage = `<html><body>
<table>
  <thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close Close price adjusted for splits.</th><th>Adj Close</th><th>Volume</th></tr></thead>
  <tbody>
    <tr><td>Mar 3, 2025</td><td>1,610.00</td><td>1,620.00</td><td>1,600.00</td><td>1,615.40</td><td>1,615.40</td><td>1,000</td></tr>
    <tr><td>Feb 28, 2025</td><td colspan="6">20.00 Dividend</td></tr>
    <tr><td>Feb 27, 2025</td><td>1,590.00</td><td>1,605.00</td><td>1,585.00</td><td>1,600.10</td><td>1,600.10</td><td>1,200</td></tr>
    <tr><td>Feb 26, 2025</td><td>1,580.00</td><td>1,595.00</td><td>1,575.00</td><td>-</td><td>-</td><td>-</td></tr>
    <tr><td>Feb 25, 2025</td><td>1,570.00</td><td>1,590.00</td><td>1,565.00</td><td>1,585.75</td><td>1,585.75</td><td>900</td></tr>
  </tbody>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := httputil.New(&config.Config{}, logger.Nop()).DisableRetry()
	client := NewClient(httpClient, config.YahooConfig{BaseURL: server.URL, SiteURL: server.URL}, logger.Nop())
	client.now = func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) }
	return client
}

func TestSparkBackend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/spark", r.URL.Path)
		assert.Equal(t, "INFY.NS", r.URL.Query().Get("symbols"))
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, httputil.BrowserUserAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, sparkBody)
	})

	backend := client.Spark()
	assert.Equal(t, "spark", backend.Name())

	closes, err := backend.FetchCloses(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1500.5, 1510.25, 1498}, closes)
}

func TestChartBackend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/INFY.NS":
			fmt.Fprint(w, chartBody)
		case "/v8/finance/chart/GONE":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, chartErrorBody)
		default:
			fmt.Fprint(w, chartErrorBody)
		}
	})

	backend := client.Chart()
	assert.Equal(t, "chart", backend.Name())

	closes, err := backend.FetchCloses(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.Equal(t, []float64{101.5, 103}, closes)

	_, err = backend.FetchCloses(context.Background(), "GONE")
	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	_, err = backend.FetchCloses(context.Background(), "DELISTED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestHistoryBackend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/INFY.NS/history", r.URL.Path)
		assert.Equal(t, "1741046400", r.URL.Query().Get("period2"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		fmt.Fprint(w, historyPage)
	})

	backend := client.History()
	assert.Equal(t, "history", backend.Name())

	closes, err := backend.FetchCloses(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1585.75, 1600.10, 1615.40}, closes)
}

func TestParseSpark(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []float64
		wantErr bool
	}{
		{"valid", sparkBody, []float64{1500.5, 1510.25, 1498}, false},
		{"empty result", `{"spark":{"result":[],"error":null}}`, nil, true},
		{"api error", `{"spark":{"result":null,"error":{"code":"Bad Request","description":"Missing value"}}}`, nil, true},
		{"malformed", `{"spark":`, nil, true},
		{"all null", `{"spark":{"result":[{"response":[{"indicators":{"quote":[{"close":[null,null]}]}}]}]}}`, []float64{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSpark([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChart_NoQuote(t *testing.T) {
	_, err := parseChart([]byte(`{"chart":{"result":[{"indicators":{"quote":[]}}],"error":null}}`))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseHistoryTable(t *testing.T) {
	t.Run("no table", func(t *testing.T) {
		_, err := parseHistoryTable([]byte("<html><body><p>Consent required</p></body></html>"))
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("no close column", func(t *testing.T) {
		_, err := parseHistoryTable([]byte("<table><thead><tr><th>Date</th></tr></thead><tbody></tbody></table>"))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "close column"))
	})

	t.Run("only dividend rows", func(t *testing.T) {
		page := `<table><thead><tr><th>Date</th><th>Close</th></tr></thead>
<tbody><tr><td colspan="2">Dividend</td></tr></tbody></table>`
		_, err := parseHistoryTable([]byte(page))
		assert.ErrorIs(t, err, ErrNoData)
	})
}
