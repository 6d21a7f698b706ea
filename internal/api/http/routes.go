package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-blender/internal/common"
	"github.com/i474232898/weather-blender/internal/store"
	"github.com/i474232898/weather-blender/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1/weather")

	v1.Get("/current", func(c *fiber.Ctx) error {
		frame, err := service.Current()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather frame recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather frame")
		}

		return c.JSON(frame)
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		frames, err := service.History(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather frames for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather history")
		}

		return c.JSON(fiber.Map{
			"from":   req.From,
			"to":     req.To,
			"frames": frames,
		})
	})

	v1.Get("/categories", func(c *fiber.Ctx) error {
		baseline, cats := service.Categories()
		return c.JSON(fiber.Map{
			"clear":      baseline,
			"categories": cats,
		})
	})

	v1.Get("/transitions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"transitions": service.Transitions(),
		})
	})

	v1.Put("/state/:category", func(c *fiber.Ctx) error {
		var req weatherStateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		duration, err := parseBlendDuration(req.Duration)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cat := weather.Category(c.Params("category"))
		info, err := service.SetWeather(cat, *req.Weight, duration)
		if err != nil {
			if errors.Is(err, weather.ErrUnknownCategory) {
				return fiber.NewError(fiber.StatusNotFound, unknownCategoryMessage(string(cat), service.CategoryNames()))
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to set weather state")
		}

		return c.Status(fiber.StatusAccepted).JSON(info)
	})

	v1.Put("/daytime", func(c *fiber.Ctx) error {
		var req dayTimeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		duration, err := parseBlendDuration(req.Duration)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		info := service.SetDayTime(*req.Phase, duration)
		return c.Status(fiber.StatusAccepted).JSON(info)
	})
}

func unknownCategoryMessage(name string, known []string) string {
	if match, ok := common.ClosestMatch(name, known...); ok {
		return fmt.Sprintf("unknown weather category %q; did you mean %q?", name, match)
	}
	return fmt.Sprintf("unknown weather category %q", name)
}

// parseBlendDuration reads an optional Go duration string ("10s", "0s" for
// instant). It returns nil when the default blend duration should be used.
func parseBlendDuration(s *string) (*time.Duration, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return nil, errors.New("invalid duration; use a Go duration such as 10s or 1m30s")
	}
	if d < 0 {
		return nil, errors.New("duration must not be negative")
	}
	return &d, nil
}

type weatherStateRequest struct {
	Weight   *float64 `json:"weight" validate:"required"`
	Duration *string  `json:"duration"`
}

type dayTimeRequest struct {
	Phase    *float64 `json:"phase" validate:"required"`
	Duration *string  `json:"duration"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
