package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolygonTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/reference/tickers/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		_, _ = w.Write([]byte(`{"status":"OK","results":{"ticker":"AAPL","name":"Apple Inc.","weighted_shares_outstanding":15500000000,"market_cap":2900000000000}}`))
	})
	mux.HandleFunc("/v3/reference/tickers/NONE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"NOT_FOUND"}`))
	})
	mux.HandleFunc("/v1/open-close/AAPL/2024-01-04", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
		_, _ = w.Write([]byte(`{"status":"OK","from":"2024-01-04","symbol":"AAPL","open":150,"high":155,"low":149,"close":152,"volume":1000000,"preMarket":149.5,"afterHours":152.2}`))
	})
	mux.HandleFunc("/v1/open-close/AAPL/2024-01-05", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR"}`))
	})
	mux.HandleFunc("/v2/aggs/ticker/AAPL/range/1/minute/2024-01-04/2024-01-04", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asc", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":2,"results":[{"o":149,"h":150,"l":148,"c":149.5,"v":1200,"vw":149.2,"t":1704358800000},{"o":149.5,"h":151,"l":149,"c":150,"v":800,"vw":150.1,"t":1704358860000}]}`))
	})
	mux.HandleFunc("/v2/aggs/ticker/AAPL/range/1/minute/2024-01-06/2024-01-06", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":0}`))
	})
	mux.HandleFunc("/v3/reference/tickers/FAIL", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPolygonFetcher(t *testing.T) {
	srv := newPolygonTestServer(t)
	f := NewPolygonFetcher("test-key", WithBaseURL(srv.URL), WithRateLimit(0))
	ctx := context.Background()
	day := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	t.Run("ticker details", func(t *testing.T) {
		d, err := f.TickerDetails(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc.", d.Name)
		assert.Equal(t, 15.5e9, d.WeightedSharesOutstanding)
	})

	t.Run("ticker not found", func(t *testing.T) {
		_, err := f.TickerDetails(ctx, "NONE")
		assert.True(t, IsNotFound(err))
	})

	t.Run("server error", func(t *testing.T) {
		_, err := f.TickerDetails(ctx, "FAIL")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.False(t, IsNotFound(err))
	})

	t.Run("open close", func(t *testing.T) {
		b, err := f.DailyOpenClose(ctx, "AAPL", day)
		require.NoError(t, err)
		assert.Equal(t, 150.0, b.Open)
		assert.Equal(t, 155.0, b.High)
		assert.Equal(t, 152.0, b.Close)
	})

	t.Run("open close status not ok", func(t *testing.T) {
		_, err := f.DailyOpenClose(ctx, "AAPL", day.AddDate(0, 0, 1))
		assert.True(t, IsNotFound(err))
	})

	t.Run("minute bars", func(t *testing.T) {
		bars, err := f.MinuteBars(ctx, "AAPL", day)
		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC), bars[0].Time)
		assert.Equal(t, 1200.0, bars[0].Volume)
	})

	t.Run("minute bars empty", func(t *testing.T) {
		bars, err := f.MinuteBars(ctx, "AAPL", day.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.NotNil(t, bars)
		assert.Empty(t, bars)
	})
}

func TestPolygonFetcher_ContextCanceled(t *testing.T) {
	srv := newPolygonTestServer(t)
	f := NewPolygonFetcher("test-key", WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.TickerDetails(ctx, "AAPL")
	assert.Error(t, err)
	assert.False(t, IsNotFound(err))
}
