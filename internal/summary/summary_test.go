package summary

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-monitor/internal/store"
	"github.com/i474232898/weather-monitor/internal/weather"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 10, day, hour, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T, cities []string, obs ...weather.Observation) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore(cities)
	for _, o := range obs {
		if err := mem.Append(o); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return mem
}

func TestSummarizeOnlyIncludesSameDayRows(t *testing.T) {
	history := []weather.Observation{
		{City: "Delhi", TemperatureC: 50, Condition: "Clear", ObservedAt: at(18, 23)},
		{City: "Delhi", TemperatureC: 20, Condition: "Rain", ObservedAt: at(19, 1)},
		{City: "Delhi", TemperatureC: 30, Condition: "Clear", ObservedAt: at(19, 2)},
		{City: "Delhi", TemperatureC: 25, Condition: "Rain", ObservedAt: at(19, 3)},
	}

	sum, rows, err := Summarize("Delhi", "2024-10-19", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 || sum.Count != 3 {
		t.Fatalf("expected 3 same-day rows, got %d", len(rows))
	}
	if math.Abs(sum.MeanTempC-25) > 1e-9 || sum.MaxTempC != 30 || sum.MinTempC != 20 {
		t.Fatalf("unexpected stats: %+v", sum)
	}
	if sum.DominantCondition != "Rain" {
		t.Fatalf("expected Rain, got %s", sum.DominantCondition)
	}
}

func TestDominantConditionTieGoesToFirstSeen(t *testing.T) {
	history := []weather.Observation{
		{Condition: "Clouds", ObservedAt: at(19, 1)},
		{Condition: "Rain", ObservedAt: at(19, 2)},
		{Condition: "Rain", ObservedAt: at(19, 3)},
		{Condition: "Clouds", ObservedAt: at(19, 4)},
	}

	for i := 0; i < 20; i++ {
		sum, _, err := Summarize("Delhi", "2024-10-19", history)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sum.DominantCondition != "Clouds" {
			t.Fatalf("expected first-seen Clouds on tie, got %s", sum.DominantCondition)
		}
	}
}

func TestSummarizeNoData(t *testing.T) {
	_, _, err := Summarize("Delhi", "2024-10-19", []weather.Observation{
		{ObservedAt: at(18, 12)},
	})
	if !errors.Is(err, weather.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRunWritesSameDayRowsAndSkipsEmptyCities(t *testing.T) {
	dir := t.TempDir()
	mem := newStore(t, []string{"Delhi", "Mumbai"},
		weather.Observation{City: "Delhi", TemperatureC: 31.5, FeelsLikeC: 33.25, HumidityPct: 40, WindSpeed: 2.1, Condition: "Haze", ObservedAt: at(18, 22)},
		weather.Observation{City: "Delhi", TemperatureC: 29.85, FeelsLikeC: 30, HumidityPct: 45, WindSpeed: 1.5, Condition: "Clear", ObservedAt: at(19, 6)},
	)

	s := NewSummarizer(mem, NewCSVSink(dir))
	s.now = func() time.Time { return at(19, 23) }

	results := s.Run()
	if len(results) != 2 {
		t.Fatalf("expected a result per city, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Summary.Count != 1 {
		t.Fatalf("unexpected Delhi result: %+v", results[0])
	}
	if !errors.Is(results[1].Err, weather.ErrNoData) {
		t.Fatalf("expected no data for Mumbai, got %v", results[1].Err)
	}

	data, err := os.ReadFile(NewCSVSink(dir).Path("Delhi", "2024-10-19"))
	if err != nil {
		t.Fatalf("reading summary file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", data)
	}
	if lines[0] != "city,temp,feels_like,humidity,wind_speed,weather,timestamp,date" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	want := "Delhi,29.85,30,45,1.5,Clear," + "1729317600" + ",2024-10-19"
	if lines[1] != want {
		t.Fatalf("unexpected row:\n got %q\nwant %q", lines[1], want)
	}

	if _, err := os.Stat(NewCSVSink(dir).Path("Mumbai", "2024-10-19")); !os.IsNotExist(err) {
		t.Fatalf("expected no file for a city without data, got %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	mem := newStore(t, []string{"Chennai"},
		weather.Observation{City: "Chennai", TemperatureC: 1.0 / 3.0, FeelsLikeC: 2, HumidityPct: 70, WindSpeed: 3.3, Condition: "Rain", ObservedAt: at(19, 1)},
		weather.Observation{City: "Chennai", TemperatureC: 27.12, FeelsLikeC: 29, HumidityPct: 75, WindSpeed: 4, Condition: "Rain", ObservedAt: at(19, 2)},
	)
	sink := NewCSVSink(dir)
	s := NewSummarizer(mem, sink)
	s.now = func() time.Time { return at(19, 23) }

	s.Run()
	first, err := os.ReadFile(sink.Path("Chennai", "2024-10-19"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s.Run()
	second, err := os.ReadFile(sink.Path("Chennai", "2024-10-19"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected byte-identical output:\n%s\n---\n%s", first, second)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("Delhi", "2024-10-19"); got != "Delhi_2024-10-19_weather_summary.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := FileName("a/b", "2024-10-19"); strings.Contains(got, "/") {
		t.Fatalf("path separators must be replaced, got %q", got)
	}
}
