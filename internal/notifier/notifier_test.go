package notifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"GapScout/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	failures int32
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&f.failures, -1) >= 0 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "CHAT", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		f.mu.Lock()
		f.sent = append(f.sent, payload["text"])
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"text":" /last "}},
			{"update_id":8,"message":{"text":"/unknown"}},
			{"update_id":9}
		]}`))
	})
	return mux
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "CHAT", "", zap.NewNop())
	n.APIURL = srv.URL
	n.Backoff = time.Millisecond
	return n
}

func TestSendWithRetry(t *testing.T) {
	f := &fakeTelegram{failures: 2}
	n := newTestNotifier(t, f)
	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 3))
	assert.Equal(t, []string{"hello"}, f.sent)
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	f := &fakeTelegram{failures: 10}
	n := newTestNotifier(t, f)
	err := n.SendWithRetry(context.Background(), "hello", 1)
	assert.ErrorContains(t, err, "all 2 retries exhausted")
}

func TestPollOnce(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)
	var got []string
	next, err := n.pollOnce(context.Background(), n.Client, 7, 0, func(cmd string) string {
		got = append(got, cmd)
		if cmd == "/last" {
			return "last report"
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"/last", "/unknown"}, got)
	assert.Equal(t, []string{"last report"}, f.sent)
}

func TestFormatDateReport(t *testing.T) {
	day := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	res := &model.AnalysisResult{
		Date: day,
		CombinedResults: []model.CombinedRecord{{
			Date:                day,
			MarketMetrics:       model.MarketMetrics{Ticker: "AT&T", CompanyName: "<Odd> Co", GapUpPercent: 3.45, OpenPrice: 150},
			TrendsChangePercent: math.Inf(1),
		}},
	}
	msg := FormatDateReport(res)
	assert.Contains(t, msg, "2024-01-04")
	assert.Contains(t, msg, "AT&amp;T")
	assert.Contains(t, msg, "&lt;Odd&gt; Co")
	assert.Contains(t, msg, "new interest")
	assert.Contains(t, msg, "gap +3.45%")

	empty := FormatDateReport(&model.AnalysisResult{Date: day, TrendResults: make([]model.TrendMetrics, 2)})
	assert.True(t, strings.Contains(empty, "No combined signals (2 trending, 0 gapping)"))
}

func TestReporter(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)
	r := NewReporter(context.Background(), n, 0)
	day := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordDate(&model.AnalysisResult{Date: day}))
	require.NoError(t, r.RecordBacktest(day, day.AddDate(0, 0, 5), nil, model.BacktestSummary{Records: 2, Days: 2, SuccessRate: 50}))
	require.Len(t, f.sent, 2)
	assert.Contains(t, f.sent[1], "Success rate: 50.0%")
}
