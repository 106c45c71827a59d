package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/pkg/config"
	"github.com/stocklens/backend/pkg/logger"
)

func newTestClient() *Client {
	return New(&config.Config{Env: "development"}, logger.Nop())
}

func TestNew(t *testing.T) {
	client := newTestClient()
	require.NotNil(t, client)

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)
	assert.Equal(t, BrowserUserAgent, client.headers.Get("User-Agent"))
	assert.Nil(t, client.limiter)
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(&config.Config{}, logger.Nop(), 5*time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout())
}

func TestBuilders(t *testing.T) {
	client := newTestClient().WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)

	client.WithRateLimit(0)
	assert.Nil(t, client.limiter, "non-positive rate keeps the client unlimited")

	client.WithRateLimit(10)
	assert.NotNil(t, client.limiter)
}

func TestGet_SendsDefaultAndExtraHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, BrowserUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "true", r.Header.Get("ngrok-skip-browser-warning"))
		assert.Equal(t, "1", r.Header.Get("X-Client"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient().WithHeader("X-Client", "1")

	resp, err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{
		"ngrok-skip-browser-warning": "true",
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	client := newTestClient().DisableRetry()

	body, err := client.GetBody(context.Background(), server.URL+"/ok", nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	_, err = client.GetBody(context.Background(), server.URL+"/missing", nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"symbol":"INFY"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	resp, err := newTestClient().PostJSON(context.Background(), server.URL, map[string]string{"symbol": "INFY"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient().WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDisableRetry_SingleAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resp, err := newTestClient().DisableRetry().Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

type countingLimiter struct{ calls int }

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls++
	return nil
}

type refusingLimiter struct{}

func (refusingLimiter) Wait(ctx context.Context) error {
	return context.DeadlineExceeded
}

func TestRateLimiterIsConsulted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	limiter := &countingLimiter{}
	client := newTestClient().WithRateLimiter(limiter)

	for i := 0; i < 2; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, 2, limiter.calls)

	_, err := newTestClient().WithRateLimiter(refusingLimiter{}).Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewWithTimeout(&config.Config{}, logger.Nop(), 20*time.Millisecond).DisableRetry()

	_, err := client.Get(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}
