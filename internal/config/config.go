package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-monitor/internal/common"
	"github.com/i474232898/weather-monitor/internal/weather"
)

const (
	defaultCities            = "Delhi,Mumbai,Chennai,Bangalore,Kolkata,Hyderabad"
	defaultPollMinutes       = 1
	defaultTempThresholdC    = 35.0
	defaultHumidityThreshold = 80.0
	defaultAlertWindow       = 2
	defaultAlertConditions   = "Rain,Storm"
	defaultSummaryCron       = "59 23 * * *"
	defaultHTTPTimeout       = 10 * time.Second
	defaultKafkaTopic        = "weather-alerts"
)

type AppConfig struct {
	APIKey  string
	BaseURL string

	Cities []string `validate:"required,min=1,dive,required"`

	// PollInterval controls how often every city is fetched.
	PollInterval time.Duration `validate:"gte=1s"`

	TempThresholdC       float64
	HumidityThresholdPct float64 `validate:"gte=0,lte=100"`
	AlertWindow          int     `validate:"gte=1"`
	AlertConditions      []string

	// SummaryCron is a five-field cron expression evaluated in UTC.
	SummaryCron string `validate:"required"`
	SummaryDir  string `validate:"required"`
	ChartDir    string `validate:"required"`

	HTTPTimeout time.Duration `validate:"gt=0s"`
	Port        string        `validate:"required,numeric"`

	// Optional Kafka transport for alerts; disabled when empty.
	KafkaBrokers    []string
	KafkaAlertTopic string
}

var validate = validator.New()

// ErrMissingAPIKey is returned when no provider credentials are configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set")

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENWEATHER_BASE_URL"))
	cfg.Cities = common.SplitList(getenvDefault("WEATHER_CITIES", defaultCities))

	minutes, err := getenvInt("POLL_INTERVAL_MINUTES", defaultPollMinutes)
	if err != nil {
		return nil, err
	}
	cfg.PollInterval = time.Duration(minutes) * time.Minute

	if cfg.TempThresholdC, err = getenvFloat("TEMP_THRESHOLD_C", defaultTempThresholdC); err != nil {
		return nil, err
	}
	if cfg.HumidityThresholdPct, err = getenvFloat("HUMIDITY_THRESHOLD_PCT", defaultHumidityThreshold); err != nil {
		return nil, err
	}
	if cfg.AlertWindow, err = getenvInt("ALERT_WINDOW", defaultAlertWindow); err != nil {
		return nil, err
	}
	cfg.AlertConditions = common.SplitList(getenvDefault("ALERT_CONDITIONS", defaultAlertConditions))

	cfg.SummaryCron = getenvDefault("SUMMARY_CRON", defaultSummaryCron)
	cfg.SummaryDir = getenvDefault("SUMMARY_DIR", ".")
	cfg.ChartDir = getenvDefault("CHART_DIR", ".")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", defaultHTTPTimeout.String())
	cfg.HTTPTimeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.KafkaBrokers = common.SplitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaAlertTopic = getenvDefault("KAFKA_ALERT_TOPIC", defaultKafkaTopic)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RequireAPIKey fails when the provider key is empty. Every command that
// polls the provider calls it before starting.
func (c *AppConfig) RequireAPIKey() error {
	if err := validate.Var(c.APIKey, "required"); err != nil {
		return ErrMissingAPIKey
	}
	return nil
}

// Thresholds returns the alerter configuration.
func (c *AppConfig) Thresholds() weather.Thresholds {
	return weather.Thresholds{
		TemperatureC: c.TempThresholdC,
		HumidityPct:  c.HumidityThresholdPct,
		Window:       c.AlertWindow,
		Conditions:   c.AlertConditions,
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
