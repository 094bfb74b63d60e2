package provider

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/domain/models"
)

// FailureKind classifies why an upstream fetch produced no usable data.
type FailureKind string

const (
	// Unconfigured means the credential is absent or the well-known
	// placeholder. Detected locally, without a network call, and logged
	// informationally: an expected condition, not an incident.
	Unconfigured FailureKind = "unconfigured"
	Unauthorized FailureKind = "unauthorized"
	RateLimited  FailureKind = "rate_limited"
	NoData       FailureKind = "no_data"
	Network      FailureKind = "network"
	Timeout      FailureKind = "timeout"
)

// Error is the classified failure returned by every provider client.
type Error struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified provider error.
func NewError(provider string, kind FailureKind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// KindOf extracts the FailureKind from err, defaulting to Network.
func KindOf(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Network
}

// Expected reports whether the failure is a non-alarming condition that
// should be logged at info rather than warn.
func Expected(err error) bool {
	return KindOf(err) == Unconfigured
}

// QuoteSource fetches the current quote for one symbol.
type QuoteSource interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// ProfileSource fetches the company profile for one symbol.
type ProfileSource interface {
	Name() string
	FetchProfile(ctx context.Context, symbol string) (*models.Profile, error)
}

// HistorySource fetches daily bars for one symbol, ascending by date.
type HistorySource interface {
	Name() string
	FetchDailyBars(ctx context.Context, symbol string) ([]models.HistoricalBar, error)
}
