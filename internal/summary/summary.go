package summary

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/i474232898/weather-monitor/internal/weather"
)

// Summary is the statistical reduction of one city's observations for one day.
type Summary struct {
	City              string  `json:"city"`
	Date              string  `json:"date"`
	Count             int     `json:"count"`
	MeanTempC         float64 `json:"meanTemperatureC"`
	MaxTempC          float64 `json:"maxTemperatureC"`
	MinTempC          float64 `json:"minTemperatureC"`
	DominantCondition string  `json:"dominantCondition"`
}

// Sink records a daily summary together with the rows it was computed from.
type Sink interface {
	Write(s Summary, rows []weather.Observation) error
}

// HistorySource is the read-only view of the store the summarizer needs.
type HistorySource interface {
	Cities() []string
	History(city string) ([]weather.Observation, error)
}

// Result is the outcome of summarizing one city. Err is weather.ErrNoData when
// the city had no observations for the day.
type Result struct {
	City    string
	Summary Summary
	Err     error
}

// Summarizer reduces each city's history to a same-day summary.
type Summarizer struct {
	source HistorySource
	sink   Sink
	now    func() time.Time
}

// NewSummarizer creates a Summarizer writing to sink.
func NewSummarizer(source HistorySource, sink Sink) *Summarizer {
	return &Summarizer{
		source: source,
		sink:   sink,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run summarizes the current UTC day for every city and writes each non-empty
// summary to the sink. Cities without data are reported and skipped.
func (s *Summarizer) Run() []Result {
	day := s.now().UTC().Format(weather.DateLayout)

	results := make([]Result, 0, len(s.source.Cities()))
	for _, city := range s.source.Cities() {
		res := Result{City: city}

		sum, rows, err := s.summarize(city, day)
		switch {
		case errors.Is(err, weather.ErrNoData):
			log.Printf("summary: no data available for %s on %s", city, day)
			res.Err = err
		case err != nil:
			log.Printf("summary: %s on %s: %v", city, day, err)
			res.Err = err
		default:
			res.Summary = sum
			if err := s.sink.Write(sum, rows); err != nil {
				log.Printf("summary: writing %s on %s: %v", city, day, err)
				res.Err = err
			} else {
				log.Printf("summary: %s on %s: avg %.2f°C, max %.2f°C, min %.2f°C, dominant %s",
					city, day, sum.MeanTempC, sum.MaxTempC, sum.MinTempC, sum.DominantCondition)
			}
		}
		results = append(results, res)
	}
	return results
}

// SummarizeCity computes the summary for one city and day without writing it.
func (s *Summarizer) SummarizeCity(city, day string) (Summary, error) {
	sum, _, err := s.summarize(city, day)
	return sum, err
}

// Today returns the current UTC date in weather.DateLayout.
func (s *Summarizer) Today() string {
	return s.now().UTC().Format(weather.DateLayout)
}

func (s *Summarizer) summarize(city, day string) (Summary, []weather.Observation, error) {
	history, err := s.source.History(city)
	if err != nil {
		return Summary{}, nil, err
	}
	return Summarize(city, day, history)
}

// Summarize filters history to observations dated day (UTC, YYYY-MM-DD) and
// computes the statistics. The filtered rows are returned in history order.
func Summarize(city, day string, history []weather.Observation) (Summary, []weather.Observation, error) {
	var rows []weather.Observation
	for _, obs := range history {
		if obs.Date() == day {
			rows = append(rows, obs)
		}
	}
	if len(rows) == 0 {
		return Summary{}, nil, fmt.Errorf("%s on %s: %w", city, day, weather.ErrNoData)
	}

	sum := 0.0
	maxT := math.Inf(-1)
	minT := math.Inf(1)
	conditions := make([]string, 0, len(rows))
	for _, obs := range rows {
		sum += obs.TemperatureC
		maxT = math.Max(maxT, obs.TemperatureC)
		minT = math.Min(minT, obs.TemperatureC)
		conditions = append(conditions, obs.Condition)
	}

	return Summary{
		City:              city,
		Date:              day,
		Count:             len(rows),
		MeanTempC:         sum / float64(len(rows)),
		MaxTempC:          maxT,
		MinTempC:          minT,
		DominantCondition: mostFrequent(conditions),
	}, rows, nil
}

// mostFrequent returns the most common value; ties go to the value seen first.
func mostFrequent(values []string) string {
	freq := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if freq[v] == 0 {
			order = append(order, v)
		}
		freq[v]++
	}

	var result string
	maxFreq := 0
	for _, v := range order {
		if freq[v] > maxFreq {
			maxFreq = freq[v]
			result = v
		}
	}
	return result
}
