package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/i474232898/weather-monitor/internal/alert"
	"github.com/i474232898/weather-monitor/internal/config"
	"github.com/i474232898/weather-monitor/internal/scheduler"
	"github.com/i474232898/weather-monitor/internal/store"
	"github.com/i474232898/weather-monitor/internal/summary"
	"github.com/i474232898/weather-monitor/internal/trend"
	"github.com/i474232898/weather-monitor/internal/weather"
	"github.com/i474232898/weather-monitor/internal/weather/providers"
)

// monitor owns the shared history store and every component reading it.
type monitor struct {
	cfg        *config.AppConfig
	store      *store.MemoryStore
	service    *weather.Service
	alerter    *alert.Alerter
	summarizer *summary.Summarizer
	renderer   *trend.PNGRenderer
	viewer     *trend.Viewer
	closers    []io.Closer
}

// newMonitor wires every component over one store. Stub alert notifications
// are printed to alertOut, or to stdout when it is nil.
func newMonitor(cfg *config.AppConfig, alertOut io.Writer) *monitor {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// One empty history per configured city, alive for the whole process.
	memStore := store.NewMemoryStore(cfg.Cities)

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.APIKey, cfg.BaseURL, providers.BreakerConfig{})

	m := &monitor{
		cfg:     cfg,
		store:   memStore,
		service: weather.NewService(memStore, provider),
	}

	notifiers := alert.MultiNotifier{alert.NewLogNotifier(alertOut)}
	if len(cfg.KafkaBrokers) > 0 {
		kn := alert.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic)
		notifiers = append(notifiers, kn)
		m.closers = append(m.closers, kn)
		log.Printf("INFO: publishing alerts to kafka topic %s", cfg.KafkaAlertTopic)
	}
	m.alerter = alert.NewAlerter(memStore, cfg.Thresholds(), notifiers)

	m.summarizer = summary.NewSummarizer(memStore, summary.NewCSVSink(cfg.SummaryDir))
	m.renderer = trend.NewPNGRenderer(cfg.ChartDir)
	m.viewer = trend.NewViewer(memStore, m.renderer)
	return m
}

// tick polls every city and then checks alerts against the fresh data.
func (m *monitor) tick(ctx context.Context, _ time.Time) {
	stored := m.service.PollAll(ctx)
	log.Printf("poller: stored %d of %d cities", stored, len(m.cfg.Cities))
	m.alerter.Check(ctx)
}

func (m *monitor) dailySummary(_ context.Context, _ time.Time) {
	m.summarizer.Run()
}

// schedule registers the tick and the daily summary on a new scheduler.
func (m *monitor) schedule() (*scheduler.Scheduler, error) {
	sched := scheduler.New(time.UTC)
	if err := sched.Every("weather tick", m.cfg.PollInterval, m.tick); err != nil {
		return nil, err
	}
	if err := sched.Cron("daily summary", m.cfg.SummaryCron, m.dailySummary); err != nil {
		return nil, err
	}
	return sched, nil
}

func (m *monitor) Close() {
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
}
