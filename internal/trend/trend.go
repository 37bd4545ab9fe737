package trend

import (
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-monitor/internal/weather"
)

// ErrInvalidWindow is returned for lookback windows shorter than one day.
var ErrInvalidWindow = errors.New("lookback window must be at least one day")

// Point is one sample on the chart.
type Point struct {
	Time         time.Time
	TemperatureC float64
}

// Chart is everything a renderer needs to draw a city's trend.
type Chart struct {
	City   string
	Days   int
	Points []Point
}

// Title is the chart heading.
func (c Chart) Title() string {
	return fmt.Sprintf("Weather Trends for %s (Last %d Days)", c.City, c.Days)
}

// Renderer draws a chart on some display surface.
type Renderer interface {
	Render(chart Chart) error
}

// HistorySource is the read-only view of the store the viewer needs.
type HistorySource interface {
	History(city string) ([]weather.Observation, error)
}

// Viewer renders a city's recent temperature history on demand.
type Viewer struct {
	source   HistorySource
	renderer Renderer
	now      func() time.Time
}

// NewViewer creates a Viewer drawing through renderer.
func NewViewer(source HistorySource, renderer Renderer) *Viewer {
	return &Viewer{
		source:   source,
		renderer: renderer,
		now:      time.Now,
	}
}

// Build selects the observations of the last days days for city. It returns
// weather.ErrNoData when the city has no history or nothing falls in the window.
func (v *Viewer) Build(city string, days int) (Chart, error) {
	if days < 1 {
		return Chart{}, ErrInvalidWindow
	}

	history, err := v.source.History(city)
	if err != nil {
		return Chart{}, err
	}
	if len(history) == 0 {
		return Chart{}, fmt.Errorf("no weather data available for %s: %w", city, weather.ErrNoData)
	}

	// Calendar arithmetic keeps very large windows from overflowing a Duration.
	cutoff := v.now().UTC().AddDate(0, 0, -days)
	chart := Chart{City: city, Days: days}
	for _, obs := range history {
		if !obs.ObservedAt.Before(cutoff) {
			chart.Points = append(chart.Points, Point{Time: obs.ObservedAt, TemperatureC: obs.TemperatureC})
		}
	}
	if len(chart.Points) == 0 {
		return Chart{}, fmt.Errorf("no data available for %s in the last %d days: %w", city, days, weather.ErrNoData)
	}
	return chart, nil
}

// Show builds the chart and hands it to the renderer. Nothing is rendered
// when there is no data.
func (v *Viewer) Show(city string, days int) (Chart, error) {
	chart, err := v.Build(city, days)
	if err != nil {
		return Chart{}, err
	}
	if err := v.renderer.Render(chart); err != nil {
		return Chart{}, fmt.Errorf("render trend for %s: %w", city, err)
	}
	return chart, nil
}
