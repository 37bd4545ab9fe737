package weather

import (
	"context"
	"fmt"
	"log"
)

// Service polls the provider for every tracked city and records the results.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// FetchAndStore fetches the current weather for a single city and appends it to
// that city's history. Nothing is stored when the fetch fails.
func (s *Service) FetchAndStore(ctx context.Context, city string) error {
	if s.provider == nil {
		return fmt.Errorf("no weather provider configured")
	}

	obs, err := s.provider.Fetch(ctx, city)
	if err != nil {
		return fmt.Errorf("%s fetch for %s: %w", s.provider.Name(), city, err)
	}

	if err := s.store.Append(obs); err != nil {
		return err
	}

	log.Printf("poller: stored %s at %s: %.2f°C, humidity %d%%, %s",
		city, obs.ObservedAt.Format("15:04:05"), obs.TemperatureC, obs.HumidityPct, obs.Condition)
	return nil
}

// PollAll runs one tick of the poller: each city is fetched once, in order.
// Failures are logged and skip only the affected city. It returns the number
// of observations stored.
func (s *Service) PollAll(ctx context.Context) int {
	stored := 0
	for _, city := range s.store.Cities() {
		if ctx.Err() != nil {
			log.Printf("poller: tick interrupted: %v", ctx.Err())
			break
		}
		if err := s.FetchAndStore(ctx, city); err != nil {
			log.Printf("poller: skipping %s this tick: %v", city, err)
			continue
		}
		stored++
	}
	return stored
}

// Latest returns the most recent observation for a city.
func (s *Service) Latest(city string) (Observation, error) {
	history, err := s.store.History(city)
	if err != nil {
		return Observation{}, err
	}
	if len(history) == 0 {
		return Observation{}, fmt.Errorf("%s: %w", city, ErrNoData)
	}
	return history[len(history)-1], nil
}

// History delegates to the underlying store.
func (s *Service) History(city string) ([]Observation, error) {
	return s.store.History(city)
}

// Cities delegates to the underlying store.
func (s *Service) Cities() []string {
	return s.store.Cities()
}
