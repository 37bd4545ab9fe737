package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-monitor/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap current weather endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

var validate = validator.New()

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider builds a provider against baseURL; an empty baseURL
// selects DefaultOpenWeatherURL.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string, breaker BreakerConfig) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if breaker.OpenTimeout <= 0 {
		breaker.OpenTimeout = 2 * time.Minute
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openweather", breaker),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// owmPayload is the subset of the current weather response we rely on.
// Pointer fields distinguish a missing value from a zero value.
type owmPayload struct {
	Dt   *int64 `json:"dt" validate:"required"`
	Main *struct {
		Temp      *float64 `json:"temp" validate:"required"`
		FeelsLike *float64 `json:"feels_like" validate:"required"`
		Humidity  *int     `json:"humidity" validate:"required"`
	} `json:"main" validate:"required"`
	Wind *struct {
		Speed *float64 `json:"speed" validate:"required"`
	} `json:"wind" validate:"required"`
	Weather []struct {
		Main *string `json:"main" validate:"required"`
	} `json:"weather" validate:"required,min=1,dive"`
}

// Fetch issues one GET for the city. Temperatures arrive in Kelvin because no
// units parameter is sent.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.Observation{}, err
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload owmPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: decode payload: %v", weather.ErrMalformedResponse, err)
	}

	return payload.toObservation(city)
}

func (p owmPayload) toObservation(city string) (weather.Observation, error) {
	if err := validate.Struct(p); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	return weather.Observation{
		City:         city,
		TemperatureC: weather.KelvinToCelsius(*p.Main.Temp),
		FeelsLikeC:   weather.KelvinToCelsius(*p.Main.FeelsLike),
		HumidityPct:  *p.Main.Humidity,
		WindSpeed:    *p.Wind.Speed,
		Condition:    *p.Weather[0].Main,
		ObservedAt:   time.Unix(*p.Dt, 0).UTC(),
	}, nil
}
