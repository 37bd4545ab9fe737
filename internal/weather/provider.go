package weather

import (
	"context"
	"errors"
)

var (
	// ErrUnexpectedStatus is returned when the provider answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrMalformedResponse is returned when a provider payload lacks required fields.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrCircuitOpen is returned while the provider circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrNoData reports that a city has no observations for the requested period.
	// It is informational rather than a failure.
	ErrNoData = errors.New("no data for period")
)

// Provider abstracts the weather data source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Observation, error)
}

// Store is the contract the poller needs from the history store.
type Store interface {
	Cities() []string
	Append(obs Observation) error
	History(city string) ([]Observation, error)
}
