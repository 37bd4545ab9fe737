package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-monitor/internal/config"
)

const hotPayload = `{
	"dt": 1729339200,
	"main": {"temp": 310.15, "feels_like": 312.15, "humidity": 40},
	"wind": {"speed": 3.1},
	"weather": [{"main": "Clear"}],
	"name": "Delhi"
}`

func newTestMonitor(t *testing.T) (*monitor, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hotPayload))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.AppConfig{
		APIKey:               "test-key",
		BaseURL:              srv.URL,
		Cities:               []string{"Delhi"},
		PollInterval:         time.Minute,
		TempThresholdC:       35,
		HumidityThresholdPct: 80,
		AlertWindow:          2,
		AlertConditions:      []string{"Rain", "Storm"},
		SummaryCron:          "59 23 * * *",
		SummaryDir:           t.TempDir(),
		ChartDir:             t.TempDir(),
		HTTPTimeout:          5 * time.Second,
		Port:                 "0",
	}

	var out bytes.Buffer
	m := newMonitor(cfg, &out)
	t.Cleanup(m.Close)
	return m, &out
}

func TestTickPollsBeforeAlerting(t *testing.T) {
	m, out := newTestMonitor(t)
	ctx := context.Background()

	m.tick(ctx, time.Now())
	if history, _ := m.service.History("Delhi"); len(history) != 1 {
		t.Fatalf("expected one observation after first tick, got %d", len(history))
	}
	if out.Len() != 0 {
		t.Fatalf("expected no alert after first tick, got %q", out.String())
	}

	m.tick(ctx, time.Now())
	if got := strings.Count(out.String(), "Sending alert..."); got != 1 {
		t.Fatalf("expected exactly one alert after second tick, got %d: %q", got, out.String())
	}
	if !strings.Contains(out.String(), "Delhi temperature has exceeded 35°C for the last 2 updates") {
		t.Fatalf("expected temperature alert, got %q", out.String())
	}
}

func TestScheduleRejectsBadSummaryCron(t *testing.T) {
	m, _ := newTestMonitor(t)

	if _, err := m.schedule(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.cfg.SummaryCron = "every night"
	if _, err := m.schedule(); err == nil {
		t.Fatalf("expected error for invalid summary cron")
	}
}

func TestWithMonitorRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	called := false
	err := withMonitor(func(context.Context, *monitor) error {
		called = true
		return nil
	})
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if called {
		t.Fatalf("expected command not to run without an api key")
	}
}

func TestTrendCommandRejectsBadDays(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"trend", "Delhi", "--days", "soon"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for non-numeric days")
	}
}
