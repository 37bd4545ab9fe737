package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OPENWEATHER_API_KEY", "WEATHER_CITIES", "POLL_INTERVAL_MINUTES", "TEMP_THRESHOLD_C",
		"HUMIDITY_THRESHOLD_PCT", "ALERT_WINDOW", "ALERT_CONDITIONS", "SUMMARY_CRON",
		"HTTP_TIMEOUT", "PORT", "KAFKA_BROKERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"Delhi", "Mumbai", "Chennai", "Bangalore", "Kolkata", "Hyderabad"}; !reflect.DeepEqual(cfg.Cities, want) {
		t.Fatalf("unexpected cities: %v", cfg.Cities)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("expected 1m poll interval, got %s", cfg.PollInterval)
	}

	th := cfg.Thresholds()
	if th.TemperatureC != 35 || th.HumidityPct != 80 || th.Window != 2 {
		t.Fatalf("unexpected thresholds: %+v", th)
	}
	if !reflect.DeepEqual(th.Conditions, []string{"Rain", "Storm"}) {
		t.Fatalf("unexpected alert conditions: %v", th.Conditions)
	}
	if cfg.SummaryCron != "59 23 * * *" || cfg.Port != "8080" || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("WEATHER_CITIES", "Paris, Berlin")
	t.Setenv("POLL_INTERVAL_MINUTES", "5")
	t.Setenv("TEMP_THRESHOLD_C", "30.5")
	t.Setenv("ALERT_WINDOW", "3")
	t.Setenv("ALERT_CONDITIONS", "Snow")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "secret" || cfg.PollInterval != 5*time.Minute || cfg.TempThresholdC != 30.5 || cfg.AlertWindow != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Cities, []string{"Paris", "Berlin"}) {
		t.Fatalf("unexpected cities: %v", cfg.Cities)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"non-numeric interval": {"POLL_INTERVAL_MINUTES", "soon"},
		"zero interval":        {"POLL_INTERVAL_MINUTES", "0"},
		"zero window":          {"ALERT_WINDOW", "0"},
		"humidity over 100":    {"HUMIDITY_THRESHOLD_PCT", "120"},
		"bad timeout":          {"HTTP_TIMEOUT", "ten"},
		"no cities":            {"WEATHER_CITIES", " , "},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), "invalid") {
				t.Fatalf("expected invalid configuration error, got %v", err)
			}
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.RequireAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	cfg.APIKey = "secret"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
