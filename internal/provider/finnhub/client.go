// Package finnhub implements the quote and profile sources against the
// Finnhub REST API.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/provider"
	xhttp "StockPulse/pkg/http"
)

const (
	providerName = "finnhub"
	defaultURL   = "https://finnhub.io/api/v1"

	// placeholderToken is what a freshly copied env file ships with; it
	// means the operator never configured the provider.
	placeholderToken = "your_finnhub_api_key"
)

// Config holds the Finnhub client configuration.
type Config struct {
	BaseURL string
	Token   string
}

// Client fetches quotes and company profiles from Finnhub.
type Client struct {
	http    *xhttp.Client
	baseURL string
	token   string
}

// NewClient creates a Finnhub client.
func NewClient(httpClient *xhttp.Client, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

// configured reports whether a real credential is present. The check is
// local: an unconfigured provider never causes a network call.
func (c *Client) configured() bool {
	return c.token != "" && c.token != placeholderToken
}

type quoteResponse struct {
	Current   float64 `json:"c"`
	Change    float64 `json:"d"`
	ChangePct float64 `json:"dp"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Open      float64 `json:"o"`
	PrevClose float64 `json:"pc"`
	Timestamp int64   `json:"t"`
}

type profileResponse struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Industry             string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"`
}

// FetchQuote returns the latest quote for symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if !c.configured() {
		return nil, provider.NewError(providerName, provider.Unconfigured, nil)
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string]string{
			"symbol": symbol,
			"token":  c.token,
		},
	}, &resp)
	if err != nil {
		return nil, c.classify("quote", err)
	}

	// Finnhub answers 200 with an all-zero body for unknown symbols.
	if resp.Current == 0 && resp.Timestamp == 0 {
		return nil, provider.NewError(providerName, provider.NoData,
			fmt.Errorf("no quote for %s", symbol))
	}

	observed := time.Unix(resp.Timestamp, 0).UTC()
	return &models.Quote{
		Symbol:        symbol,
		Price:         resp.Current,
		Change:        resp.Change,
		ChangePercent: resp.ChangePct,
		DayHigh:       resp.High,
		DayLow:        resp.Low,
		DayOpen:       resp.Open,
		PrevClose:     resp.PrevClose,
		ObservedAt:    observed,
	}, nil
}

// FetchProfile returns the company profile for symbol.
func (c *Client) FetchProfile(ctx context.Context, symbol string) (*models.Profile, error) {
	if !c.configured() {
		return nil, provider.NewError(providerName, provider.Unconfigured, nil)
	}

	var resp profileResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/profile2",
		QueryParams: map[string]string{
			"symbol": symbol,
			"token":  c.token,
		},
	}, &resp)
	if err != nil {
		return nil, c.classify("profile", err)
	}

	// An empty object means the symbol is unknown to Finnhub.
	if resp.Name == "" && resp.Ticker == "" {
		return nil, provider.NewError(providerName, provider.NoData,
			fmt.Errorf("no profile for %s", symbol))
	}

	p := &models.Profile{
		Symbol:   symbol,
		Name:     resp.Name,
		Industry: resp.Industry,
	}
	if resp.Industry != "" {
		sector := resp.Industry
		p.Sector = &sector
	}
	if resp.MarketCapitalization > 0 {
		// Finnhub reports market cap in millions.
		cap := resp.MarketCapitalization * 1e6
		p.MarketCap = &cap
	}
	return p, nil
}

// classify maps transport failures onto the provider failure taxonomy.
func (c *Client) classify(op string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
			return provider.NewError(providerName, provider.Unauthorized, err)
		case se.Code == http.StatusTooManyRequests:
			return provider.NewError(providerName, provider.RateLimited, err)
		case se.Code == http.StatusNotFound:
			return provider.NewError(providerName, provider.NoData, err)
		}
		return provider.NewError(providerName, provider.Network, fmt.Errorf("%s: %w", op, err))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return provider.NewError(providerName, provider.Timeout, err)
	}
	return provider.NewError(providerName, provider.Network, fmt.Errorf("%s: %w", op, err))
}
