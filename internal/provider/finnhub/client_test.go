package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/provider"
	xhttp "StockPulse/pkg/http"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), Config{
		BaseURL: srv.URL,
		Token:   token,
	})
	return c, srv
}

func TestFetchQuoteUnconfiguredSkipsNetwork(t *testing.T) {
	for _, token := range []string{"", "your_finnhub_api_key"} {
		called := false
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		}, token)

		_, err := c.FetchQuote(context.Background(), "AAPL")
		if provider.KindOf(err) != provider.Unconfigured {
			t.Fatalf("token %q: kind = %v", token, provider.KindOf(err))
		}
		if !provider.Expected(err) {
			t.Fatalf("unconfigured should be an expected failure")
		}
		if called {
			t.Fatalf("unconfigured client must not hit the network")
		}
	}
}

func TestFetchQuoteSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q", got)
		}
		if got := r.URL.Query().Get("token"); got != "real-token" {
			t.Errorf("token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":187.5,"d":1.25,"dp":0.67,"h":189.1,"l":185.2,"o":186.0,"pc":186.25,"t":1741791600}`))
	}, "real-token")

	q, err := c.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q.Price != 187.5 || q.Change != 1.25 || q.PrevClose != 186.25 {
		t.Fatalf("quote = %+v", q)
	}
	if q.Synthetic {
		t.Fatalf("real quote marked synthetic")
	}
}

func TestFetchQuoteClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   provider.FailureKind
	}{
		{http.StatusUnauthorized, provider.Unauthorized},
		{http.StatusForbidden, provider.Unauthorized},
		{http.StatusTooManyRequests, provider.RateLimited},
		{http.StatusNotFound, provider.NoData},
		{http.StatusBadGateway, provider.Network},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}, "real-token")

		_, err := c.FetchQuote(context.Background(), "AAPL")
		if got := provider.KindOf(err); got != tc.kind {
			t.Fatalf("status %d: kind = %v, want %v", tc.status, got, tc.kind)
		}
	}
}

func TestFetchQuoteEmptyBodyIsNoData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}, "real-token")

	_, err := c.FetchQuote(context.Background(), "ZZZZZZ")
	if got := provider.KindOf(err); got != provider.NoData {
		t.Fatalf("kind = %v, want NoData", got)
	}
}

func TestFetchProfileSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Apple Inc","ticker":"AAPL","finnhubIndustry":"Technology","marketCapitalization":2900000}`))
	}, "real-token")

	p, err := c.FetchProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Name != "Apple Inc" {
		t.Fatalf("name = %q", p.Name)
	}
	if p.Sector == nil || *p.Sector != "Technology" {
		t.Fatalf("sector = %v", p.Sector)
	}
	// Finnhub reports millions; 2.9e6 million = 2.9e12.
	if p.MarketCap == nil || *p.MarketCap != 2.9e12 {
		t.Fatalf("market cap = %v", p.MarketCap)
	}
}

func TestFetchProfileEmptyObjectIsNoData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "real-token")

	_, err := c.FetchProfile(context.Background(), "ZZZZZZ")
	if got := provider.KindOf(err); got != provider.NoData {
		t.Fatalf("kind = %v, want NoData", got)
	}
}
