package httpapi

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-monitor/internal/store"
	"github.com/i474232898/weather-monitor/internal/summary"
	"github.com/i474232898/weather-monitor/internal/trend"
	"github.com/i474232898/weather-monitor/internal/weather"
)

var validate = validator.New()

// Deps are the read-only components the API serves.
type Deps struct {
	Service    *weather.Service
	Summarizer *summary.Summarizer
	Viewer     *trend.Viewer
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": d.Service.Cities()})
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		obs, err := d.Service.Latest(q.City)
		if err != nil {
			return mapError(err, "failed to read weather data")
		}
		return c.JSON(obs)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		history, err := d.Service.History(q.City)
		if err != nil {
			return mapError(err, "failed to read weather history")
		}
		return c.JSON(fiber.Map{
			"city":         q.City,
			"count":        len(history),
			"observations": history,
		})
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		q := summaryQuery{City: c.Query("city"), Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if q.Date == "" {
			q.Date = d.Summarizer.Today()
		}

		sum, err := d.Summarizer.SummarizeCity(q.City, q.Date)
		if err != nil {
			return mapError(err, "failed to summarize weather data")
		}
		return c.JSON(sum)
	})

	v1.Get("/trend", func(c *fiber.Ctx) error {
		var q trendQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		chart, err := d.Viewer.Build(q.City, q.Days)
		if err != nil {
			return mapError(err, "failed to build trend")
		}

		var buf bytes.Buffer
		if err := trend.WritePNG(&buf, chart); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render trend")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})
}

func mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, "city is not tracked")
	case errors.Is(err, weather.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, trend.ErrInvalidWindow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// cityQuery identifies a tracked city.
type cityQuery struct {
	City string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// summaryQuery holds query parameters for the summary endpoint.
type summaryQuery struct {
	City string `validate:"required"`
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// trendQuery holds query parameters for the trend endpoint.
type trendQuery struct {
	City string `validate:"required"`
	Days int    `validate:"gte=1,lte=30"`
}

func (t *trendQuery) bind(c *fiber.Ctx) error {
	t.City = c.Query("city")
	t.Days = 1
	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("days must be an integer")
		}
		t.Days = days
	}
	return validate.Struct(t)
}
