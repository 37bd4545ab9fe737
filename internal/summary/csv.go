package summary

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/i474232898/weather-monitor/internal/weather"
)

var csvHeader = []string{"city", "temp", "feels_like", "humidity", "wind_speed", "weather", "timestamp", "date"}

// CSVSink writes one file per city per day into Dir.
type CSVSink struct {
	Dir string
}

// NewCSVSink creates a sink rooted at dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

// Path returns the file a summary for city and day is written to.
func (c *CSVSink) Path(city, day string) string {
	return filepath.Join(c.Dir, FileName(city, day))
}

// FileName is <city>_<YYYY-MM-DD>_weather_summary.csv with path separators replaced.
func FileName(city, day string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(city)
	return fmt.Sprintf("%s_%s_weather_summary.csv", safe, day)
}

// Write replaces the day's file with the filtered rows.
func (c *CSVSink) Write(s Summary, rows []weather.Observation) error {
	data, err := EncodeRows(rows)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	path := c.Path(s.City, s.Date)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// EncodeRows renders rows as CSV with a header. Floats use the shortest
// representation that round-trips, so identical rows encode identically.
func EncodeRows(rows []weather.Observation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, obs := range rows {
		record := []string{
			obs.City,
			formatFloat(obs.TemperatureC),
			formatFloat(obs.FeelsLikeC),
			strconv.Itoa(obs.HumidityPct),
			formatFloat(obs.WindSpeed),
			obs.Condition,
			strconv.FormatInt(obs.ObservedAt.Unix(), 10),
			obs.Date(),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
