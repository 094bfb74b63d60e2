// Package prediction is the HTTP client for the external forecast service.
// The engine passes forecasts through untouched; it never computes them.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	xhttp "StockPulse/pkg/http"
)

// ErrDisabled is returned when no forecast service URL is configured.
var ErrDisabled = errors.New("prediction service not configured")

// Config holds the forecast service endpoint.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Request is the forecast request payload.
type Request struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

// Point is one forecast step.
type Point struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Result is the forecast service response, passed through untouched.
type Result struct {
	Symbol      string  `json:"symbol"`
	Predictions []Point `json:"predictions"`
	Model       string  `json:"model,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Client posts forecast requests to the external service.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// NewClient creates a forecast client. A nil client with an empty URL is
// valid; Predict then returns ErrDisabled.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Enabled reports whether a forecast service is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

// Predict requests a days-long forecast for symbol.
func (c *Client) Predict(ctx context.Context, symbol string, days int) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	var result Result
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/predict",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: &Request{Symbol: symbol, Days: days},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	if result.Symbol == "" {
		result.Symbol = symbol
	}
	return &result, nil
}
