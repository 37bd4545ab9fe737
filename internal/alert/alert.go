package alert

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-monitor/internal/common"
	"github.com/i474232898/weather-monitor/internal/weather"
)

// Kind identifies which threshold an alert breached.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindHumidity    Kind = "humidity"
	KindCondition   Kind = "condition"
)

// Alert is a single threshold breach for one city.
type Alert struct {
	ID       string    `json:"id"`
	City     string    `json:"city"`
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raisedAt"`
}

// HistorySource is the read-only view of the store the alerter needs.
type HistorySource interface {
	Cities() []string
	History(city string) ([]weather.Observation, error)
}

// Alerter checks the most recent observations of every city against static thresholds.
type Alerter struct {
	source     HistorySource
	thresholds weather.Thresholds
	notifier   Notifier
	now        func() time.Time
}

// NewAlerter creates an Alerter that dispatches through notifier.
func NewAlerter(source HistorySource, thresholds weather.Thresholds, notifier Notifier) *Alerter {
	return &Alerter{
		source:     source,
		thresholds: thresholds,
		notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Check evaluates every city and dispatches one notification per raised alert.
// Notification failures are logged and do not stop the remaining dispatches.
func (a *Alerter) Check(ctx context.Context) []Alert {
	var raised []Alert
	for _, city := range a.source.Cities() {
		history, err := a.source.History(city)
		if err != nil {
			log.Printf("alerter: reading history for %s: %v", city, err)
			continue
		}

		for _, al := range Evaluate(city, history, a.thresholds, a.now()) {
			log.Printf("alerter: %s", al.Message)
			if err := a.notifier.Notify(ctx, al); err != nil {
				log.Printf("alerter: notify %s alert for %s failed: %v", al.Kind, city, err)
			}
			raised = append(raised, al)
		}
	}
	return raised
}

// Evaluate inspects the last Window observations of a history. Cities with
// fewer observations than the window never raise alerts. Temperature and
// humidity alerts require every observation in the window to exceed the
// threshold; a condition alert requires any of them to match.
func Evaluate(city string, history []weather.Observation, t weather.Thresholds, now time.Time) []Alert {
	n := t.Window
	if n <= 0 || len(history) < n {
		return nil
	}
	recent := history[len(history)-n:]

	var alerts []Alert
	newAlert := func(kind Kind, msg string) {
		alerts = append(alerts, Alert{
			ID:       uuid.NewString(),
			City:     city,
			Kind:     kind,
			Message:  msg,
			RaisedAt: now,
		})
	}

	hot, humid := true, true
	var matched *weather.Observation
	for i := range recent {
		obs := &recent[i]
		if obs.TemperatureC <= t.TemperatureC {
			hot = false
		}
		if float64(obs.HumidityPct) <= t.HumidityPct {
			humid = false
		}
		if common.HasAny(obs.Condition, t.Conditions...) {
			matched = obs
		}
	}

	if hot {
		newAlert(KindTemperature, fmt.Sprintf("ALERT: %s temperature has exceeded %g°C for the last %d updates!", city, t.TemperatureC, n))
	}
	if humid {
		newAlert(KindHumidity, fmt.Sprintf("ALERT: %s humidity has exceeded %g%% for the last %d updates!", city, t.HumidityPct, n))
	}
	if matched != nil {
		newAlert(KindCondition, fmt.Sprintf("ALERT: %s has experienced %s in recent updates!", city, matched.Condition))
	}
	return alerts
}
