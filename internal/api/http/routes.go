package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// Resolver is the slice of prayer.Service the handlers use.
type Resolver interface {
	Resolve(ctx context.Context, cityCode, selector string) (prayer.Resolution, error)
	Today(ctx context.Context, cityCode, selector string, now time.Time) (prayer.DayView, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return prayer.KnownProvider(fl.Field().String())
	})
	return v
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Resolver) {
	// Path used by the existing web client.
	app.Get("/api/prayer-times", prayerTimesHandler(service))

	v1 := app.Group("/api/v1")
	v1.Get("/prayer-times", prayerTimesHandler(service))

	v1.Get("/prayer-times/today", func(c *fiber.Ctx) error {
		q, err := parsePrayerTimesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.Today(c.UserContext(), q.CityCode, q.Provider, time.Now())
		if err != nil {
			return resolveError(err)
		}
		return c.JSON(view)
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(prayer.Cities())
	})

	v1.Get("/providers", func(c *fiber.Ctx) error {
		return c.JSON(prayer.Catalog)
	})
}

func prayerTimesHandler(service Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parsePrayerTimesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Resolve(c.UserContext(), q.CityCode, q.Provider)
		if err != nil {
			return resolveError(err)
		}

		c.Set("X-Prayer-Provider", res.Provider)
		if res.Cached {
			c.Set("X-Cache", "HIT")
		} else {
			c.Set("X-Cache", "MISS")
		}
		return c.JSON(res.Days)
	}
}

// resolveError maps service failures onto a 500 carrying the aggregated
// reasons, or the provider's own reason when a resolved day is unusable.
func resolveError(err error) error {
	var agg *prayer.AggregationError
	if errors.As(err, &agg) {
		return fiber.NewError(fiber.StatusInternalServerError, agg.Error())
	}
	var perr *prayer.ProviderError
	if errors.As(err, &perr) {
		return fiber.NewError(fiber.StatusInternalServerError, perr.Provider+": "+perr.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch prayer times")
}

// prayerTimesQuery holds query parameters identifying a city and provider.
type prayerTimesQuery struct {
	CityCode string `validate:"required,max=16"`
	Provider string `validate:"required,provider"`
}

func parsePrayerTimesQuery(c *fiber.Ctx) (prayerTimesQuery, error) {
	// Values are cached past the request, so detach them from fiber's buffers.
	q := prayerTimesQuery{
		CityCode: utils.CopyString(strings.TrimSpace(c.Query("cityCode"))),
		Provider: utils.CopyString(c.Query("provider", prayer.AutoProvider)),
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return q, describe(verrs[0], q)
		}
		return q, err
	}
	return q, nil
}

func describe(fe validator.FieldError, q prayerTimesQuery) error {
	switch fe.Field() {
	case "CityCode":
		if fe.Tag() == "required" {
			return errors.New("cityCode is required")
		}
		return errors.New("cityCode is invalid")
	case "Provider":
		return fmt.Errorf("unknown provider %q", q.Provider)
	}
	return errors.New(fe.Error())
}
