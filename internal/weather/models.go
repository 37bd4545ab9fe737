package weather

import (
	"time"
)

// Observation is a single normalized reading for one city.
// Temperatures are always stored in Celsius.
type Observation struct {
	City         string    `json:"city"`
	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	HumidityPct  int       `json:"humidityPercent"`
	WindSpeed    float64   `json:"windSpeed"`
	Condition    string    `json:"condition"` // provider's weather[0].main, e.g. "Rain"
	ObservedAt   time.Time `json:"observedAt"` // always UTC
}

// Date returns the UTC calendar date of the observation as YYYY-MM-DD.
func (o Observation) Date() string {
	return o.ObservedAt.UTC().Format(DateLayout)
}

// DateLayout is the layout used for calendar dates in file names and queries.
const DateLayout = "2006-01-02"

// Thresholds configures the alerter.
type Thresholds struct {
	TemperatureC float64
	HumidityPct  float64

	// Window is the number of most recent observations inspected per city.
	Window int

	// Conditions that raise an alert when any observation in the window matches.
	Conditions []string
}

// KelvinToCelsius converts a provider temperature to Celsius.
func KelvinToCelsius(k float64) float64 {
	return k - 273.15
}
