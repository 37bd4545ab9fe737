package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/weather-monitor/internal/weather"
)

var (
	// ErrUnknownCity is returned for cities that were not configured at startup.
	ErrUnknownCity = errors.New("unknown city")
)

// MemoryStore holds one append-only observation history per configured city.
// The set of cities is fixed when the store is created.
type MemoryStore struct {
	mu sync.RWMutex

	// key: city name, value: insertion-ordered history
	data   map[string][]weather.Observation
	cities []string
}

// NewMemoryStore creates a store with an empty history for every city.
// Duplicate and blank names are ignored.
func NewMemoryStore(cities []string) *MemoryStore {
	s := &MemoryStore{
		data: make(map[string][]weather.Observation, len(cities)),
	}
	for _, city := range cities {
		if city == "" {
			continue
		}
		if _, ok := s.data[city]; ok {
			continue
		}
		s.data[city] = []weather.Observation{}
		s.cities = append(s.cities, city)
	}
	return s
}

// Cities returns the configured cities in configuration order.
func (s *MemoryStore) Cities() []string {
	out := make([]string, len(s.cities))
	copy(out, s.cities)
	return out
}

// Append adds an observation to the end of its city's history.
func (s *MemoryStore) Append(obs weather.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[obs.City]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCity, obs.City)
	}
	s.data[obs.City] = append(history, obs)
	return nil
}

// History returns a copy of a city's observations in insertion order.
// A configured city with no observations yields an empty slice and no error.
func (s *MemoryStore) History(city string) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[city]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	out := make([]weather.Observation, len(history))
	copy(out, history)
	return out, nil
}
