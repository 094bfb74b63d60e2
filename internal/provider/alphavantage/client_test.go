package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/provider"
	xhttp "StockPulse/pkg/http"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), Config{
		BaseURL: srv.URL,
		APIKey:  key,
	})
}

func TestFetchDailyBarsUnconfigured(t *testing.T) {
	for _, key := range []string{"", "demo", "DEMO"} {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		}, key)

		_, err := c.FetchDailyBars(context.Background(), "AAPL")
		if provider.KindOf(err) != provider.Unconfigured {
			t.Fatalf("key %q: kind = %v", key, provider.KindOf(err))
		}
		if called {
			t.Fatalf("unconfigured client must not hit the network")
		}
	}
}

func TestFetchDailyBarsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "TIME_SERIES_DAILY" || q.Get("symbol") != "IBM" {
			t.Errorf("unexpected query: %v", q)
		}
		_, _ = w.Write([]byte(`{
			"Time Series (Daily)": {
				"2025-03-11": {"1. open":"249.2","2. high":"252.0","3. low":"248.1","4. close":"251.5","5. volume":"3471200"},
				"2025-03-10": {"1. open":"247.0","2. high":"250.3","3. low":"246.5","4. close":"249.1","5. volume":"4102800"}
			}
		}`))
	}, "real-key")

	bars, err := c.FetchDailyBars(context.Background(), "IBM")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len = %d", len(bars))
	}
	// Ascending regardless of map order.
	if !bars[0].Date.Before(bars[1].Date) {
		t.Fatalf("bars not ascending: %v, %v", bars[0].Date, bars[1].Date)
	}
	if bars[0].Close != 249.1 || bars[0].Volume != 4102800 {
		t.Fatalf("bar = %+v", bars[0])
	}
	if bars[0].Symbol != "IBM" {
		t.Fatalf("symbol = %q", bars[0].Symbol)
	}
	if bars[0].Date.Hour() != 0 || bars[0].Date.Location() != time.UTC {
		t.Fatalf("date not UTC midnight: %v", bars[0].Date)
	}
}

func TestFetchDailyBarsThrottleNote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}, "real-key")

	_, err := c.FetchDailyBars(context.Background(), "AAPL")
	if got := provider.KindOf(err); got != provider.RateLimited {
		t.Fatalf("kind = %v, want RateLimited", got)
	}
}

func TestFetchDailyBarsErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API call."}`))
	}, "real-key")

	_, err := c.FetchDailyBars(context.Background(), "NOTASYMBOL")
	if got := provider.KindOf(err); got != provider.NoData {
		t.Fatalf("kind = %v, want NoData", got)
	}
}

func TestFetchDailyBarsSkipsMalformedRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"Time Series (Daily)": {
				"2025-03-11": {"1. open":"10","2. high":"11","3. low":"9","4. close":"10.5","5. volume":"1000"},
				"not-a-date": {"1. open":"x","2. high":"y","3. low":"z","4. close":"w","5. volume":"v"}
			}
		}`))
	}, "real-key")

	bars, err := c.FetchDailyBars(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("len = %d, want 1 (malformed row dropped)", len(bars))
	}
}
