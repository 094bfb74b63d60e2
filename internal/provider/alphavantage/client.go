// Package alphavantage implements the daily history source against the
// Alpha Vantage TIME_SERIES_DAILY API.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/provider"
	xhttp "StockPulse/pkg/http"
)

const (
	providerName = "alphavantage"
	defaultURL   = "https://www.alphavantage.co/query"

	// The public demo key only works for a handful of hardcoded symbols,
	// so it counts as not configured.
	placeholderKey = "demo"
)

// Config holds the Alpha Vantage client configuration.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client fetches daily OHLCV bars from Alpha Vantage.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
}

// NewClient creates an Alpha Vantage client.
func NewClient(httpClient *xhttp.Client, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

func (c *Client) configured() bool {
	return c.apiKey != "" && !strings.EqualFold(c.apiKey, placeholderKey)
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	ErrorMessage string              `json:"Error Message"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
}

// FetchDailyBars returns the daily bar series for symbol, ascending by
// date. Bar dates are UTC midnights.
func (c *Client) FetchDailyBars(ctx context.Context, symbol string) ([]models.HistoricalBar, error) {
	if !c.configured() {
		return nil, provider.NewError(providerName, provider.Unconfigured, nil)
	}

	var resp dailyResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string]string{
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"outputsize": "full",
			"apikey":     c.apiKey,
		},
	}, &resp)
	if err != nil {
		return nil, c.classify(err)
	}

	// Alpha Vantage reports both throttling and bad requests as 200s with
	// a prose field instead of the series.
	if resp.Note != "" || resp.Information != "" {
		return nil, provider.NewError(providerName, provider.RateLimited,
			errors.New(firstNonEmpty(resp.Note, resp.Information)))
	}
	if resp.ErrorMessage != "" {
		return nil, provider.NewError(providerName, provider.NoData, errors.New(resp.ErrorMessage))
	}
	if len(resp.Series) == 0 {
		return nil, provider.NewError(providerName, provider.NoData,
			fmt.Errorf("no daily series for %s", symbol))
	}

	bars := make([]models.HistoricalBar, 0, len(resp.Series))
	for date, raw := range resp.Series {
		bar, err := parseBar(symbol, date, raw)
		if err != nil {
			// One malformed row never discards the series.
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, provider.NewError(providerName, provider.NoData,
			fmt.Errorf("unparseable daily series for %s", symbol))
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseBar(symbol, date string, raw dailyBar) (models.HistoricalBar, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return models.HistoricalBar{}, fmt.Errorf("bad date %q: %w", date, err)
	}
	fields := [4]float64{}
	for i, s := range [4]string{raw.Open, raw.High, raw.Low, raw.Close} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.HistoricalBar{}, fmt.Errorf("bad price %q: %w", s, err)
		}
		fields[i] = v
	}
	volume, err := strconv.ParseInt(raw.Volume, 10, 64)
	if err != nil {
		return models.HistoricalBar{}, fmt.Errorf("bad volume %q: %w", raw.Volume, err)
	}
	return models.HistoricalBar{
		Symbol: symbol,
		Date:   day,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: volume,
	}, nil
}

func (c *Client) classify(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return provider.NewError(providerName, provider.Unauthorized, err)
		case http.StatusTooManyRequests:
			return provider.NewError(providerName, provider.RateLimited, err)
		}
		return provider.NewError(providerName, provider.Network, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return provider.NewError(providerName, provider.Timeout, err)
	}
	return provider.NewError(providerName, provider.Network, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
