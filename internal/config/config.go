package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-blender/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	// Blender is the weather blender setup, durations in seconds.
	Blender weather.Config

	// RandomSeed seeds the blender's random source (0 = time based).
	RandomSeed int64

	// TickInterval controls how often the blender is advanced.
	TickInterval time.Duration `validate:"gt=0"`
	// TimeScale multiplies wall-clock time before it reaches the blender.
	TimeScale float64 `validate:"gt=0"`

	// PublishInterval controls how often the latest frame is pushed to sinks (0 = never).
	PublishInterval time.Duration `validate:"gte=0"`
	SinkURL         string        `validate:"omitempty,url"`
	LogFrames       bool
	HTTPTimeout     time.Duration `validate:"gt=0"`

	// In-memory frame history retention.
	StoreMaxHistory int           // max number of frames (0 = unlimited)
	StoreMaxAge     time.Duration // max age of frames (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{Blender: weather.DefaultConfig()}

	if path := os.Getenv("WEATHER_PROFILE"); path != "" {
		profile, err := LoadProfile(path)
		if err != nil {
			return nil, err
		}
		profile.apply(&cfg.Blender)
		log.Printf("INFO: loaded weather profile %s with %d categories", path, len(cfg.Blender.Categories))
	}

	if err := loadBlender(&cfg.Blender); err != nil {
		return nil, err
	}

	var err error
	if cfg.TickInterval, err = getenvDuration("TICK_INTERVAL", "100ms"); err != nil {
		return nil, err
	}
	if cfg.TimeScale, err = getenvFloat("TIME_SCALE", 1); err != nil {
		return nil, err
	}
	if cfg.PublishInterval, err = getenvDuration("PUBLISH_INTERVAL", "1s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.LogFrames, err = getenvBool("LOG_FRAMES", false); err != nil {
		return nil, err
	}
	cfg.SinkURL = os.Getenv("SINK_URL")
	cfg.RandomSeed = int64(getenvInt("RANDOM_SEED", 0))

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 600) // one minute at 100ms ticks
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "10m"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadBlender overlays the environment onto the blender configuration.
func loadBlender(bc *weather.Config) error {
	dayLength, err := getenvDuration("DAY_LENGTH", secondsString(bc.DayLength))
	if err != nil {
		return err
	}
	bc.DayLength = dayLength.Seconds()

	minDur, err := getenvDuration("WEATHER_DURATION_MIN", secondsString(bc.WeatherDurationMin))
	if err != nil {
		return err
	}
	maxDur, err := getenvDuration("WEATHER_DURATION_MAX", secondsString(bc.WeatherDurationMax))
	if err != nil {
		return err
	}
	bc.WeatherDurationMin, bc.WeatherDurationMax = minDur.Seconds(), maxDur.Seconds()

	blend, err := getenvDuration("DEFAULT_BLEND_DURATION", secondsString(bc.DefaultBlendDuration))
	if err != nil {
		return err
	}
	bc.DefaultBlendDuration = blend.Seconds()

	if bc.UseDynamicWeather, err = getenvBool("USE_DYNAMIC_WEATHER", bc.UseDynamicWeather); err != nil {
		return err
	}
	if bc.AdvanceDay, err = getenvBool("ADVANCE_DAY", bc.AdvanceDay); err != nil {
		return err
	}
	if bc.RandomizeOnStart, err = getenvBool("RANDOMIZE_ON_START", bc.RandomizeOnStart); err != nil {
		return err
	}
	if bc.MoonIntensityWeight, err = getenvFloat("MOON_INTENSITY_WEIGHT", bc.MoonIntensityWeight); err != nil {
		return err
	}
	if bc.InitialDayPhase, err = getenvFloat("INITIAL_DAY_PHASE", bc.InitialDayPhase); err != nil {
		return err
	}
	if bc.SelectionProbability, err = getenvFloat("WEATHER_SELECTION_P", bc.SelectionProbability); err != nil {
		return err
	}
	if bc.Selection, err = weather.ParseSelectionMode(getenvDefault("WEATHER_SELECTION", string(bc.Selection))); err != nil {
		return err
	}
	return nil
}

func secondsString(s float64) string {
	return time.Duration(s * float64(time.Second)).String()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
