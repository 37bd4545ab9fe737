package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-monitor/internal/api/http"
	"github.com/i474232898/weather-monitor/internal/config"
	"github.com/i474232898/weather-monitor/internal/weather"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "weather-monitor",
		Short:         "Polls current weather for a set of cities, summarizes it and raises alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the polling loop and the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(runServer)
		},
	}

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll every city once and check alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(func(ctx context.Context, m *monitor) error {
				m.tick(ctx, time.Now())
				for _, city := range m.service.Cities() {
					if obs, err := m.service.Latest(city); err == nil {
						fmt.Printf("%-12s %6.2f°C  feels %6.2f°C  humidity %3d%%  wind %5.2f  %s\n",
							city, obs.TemperatureC, obs.FeelsLikeC, obs.HumidityPct, obs.WindSpeed, obs.Condition)
					}
				}
				return nil
			})
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Poll every city once and write today's summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(func(ctx context.Context, m *monitor) error {
				m.service.PollAll(ctx)
				for _, res := range m.summarizer.Run() {
					if res.Err != nil {
						fmt.Printf("%s: %v\n", res.City, res.Err)
						continue
					}
					s := res.Summary
					fmt.Printf("Daily Summary for %s on %s: avg %.2f°C, max %.2f°C, min %.2f°C, dominant %s\n",
						s.City, s.Date, s.MeanTempC, s.MaxTempC, s.MinTempC, s.DominantCondition)
				}
				return nil
			})
		},
	}

	trendCmd := &cobra.Command{
		Use:   "trend [city]",
		Short: "Poll a city once and render its temperature trend as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := cmd.Flags().GetInt("days")
			if err != nil {
				return err
			}
			city := args[0]

			return withMonitor(func(ctx context.Context, m *monitor) error {
				if err := m.service.FetchAndStore(ctx, city); err != nil {
					log.Printf("poller: %v", err)
				}
				if _, err := m.viewer.Show(city, days); err != nil {
					if errors.Is(err, weather.ErrNoData) {
						fmt.Println(err)
						return nil
					}
					return err
				}
				fmt.Printf("trend chart written to %s\n", m.renderer.LastPath)
				return nil
			})
		},
	}
	trendCmd.Flags().IntP("days", "d", 1, "Lookback window in days")

	rootCmd.AddCommand(runCmd, pollCmd, summaryCmd, trendCmd)
	return rootCmd
}

// withMonitor loads configuration, builds the components and runs fn until it
// returns or a termination signal arrives.
func withMonitor(fn func(ctx context.Context, m *monitor) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := newMonitor(cfg, nil)
	defer m.Close()

	return fn(ctx, m)
}

func runServer(ctx context.Context, m *monitor) error {
	log.Println("Starting weather monitor...")

	sched, err := m.schedule()
	if err != nil {
		return err
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-monitor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-monitor",
			"cities":  len(m.cfg.Cities),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:    m.service,
		Summarizer: m.summarizer,
		Viewer:     m.viewer,
	})

	go func() {
		if err := app.Listen(":" + m.cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Initial fetch so data is available before the first interval elapses.
	m.tick(ctx, time.Now())

	runErr := sched.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return runErr
}
