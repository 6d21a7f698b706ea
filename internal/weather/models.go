package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Category identifies one blendable weather state.
type Category string

const (
	// CategoryClear is the baseline state. Its weight is derived, never set.
	CategoryClear Category = "clear"
	CategoryRain  Category = "rain"
	CategorySnow  Category = "snow"
)

// Normalize returns the canonical (lower-case, trimmed) form of a category tag.
func (c Category) Normalize() Category {
	return Category(strings.ToLower(strings.TrimSpace(string(c))))
}

// Color is a linear RGB colour with components in [0,1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// ParseColor accepts "#rrggbb" (or "#rgb") hex notation.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B}, nil
}

// Hex returns the clamped "#rrggbb" representation.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// UnmarshalYAML accepts either a hex string or an {r,g,b} mapping.
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var hex string
	if err := unmarshal(&hex); err == nil {
		parsed, err := ParseColor(hex)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	type plain Color
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Color(p)
	return nil
}

// StateSettings is the visual state a weather category contributes to the blend.
type StateSettings struct {
	SunIntensity      float64 `json:"sunIntensity" yaml:"sun_intensity" validate:"gte=0,lte=20"`
	SkylightIntensity float64 `json:"skylightIntensity" yaml:"skylight_intensity" validate:"gte=0,lte=20"`
	FogDensity        float64 `json:"fogDensity" yaml:"fog_density" validate:"gte=0,lte=0.1"`
	FogColor          Color   `json:"fogColor" yaml:"fog_color"`
}

// CategorySettings binds a category to its visual settings and the
// particle budget the host emitter uses for it.
type CategorySettings struct {
	Category     Category      `json:"category" yaml:"name" validate:"required"`
	Settings     StateSettings `json:"settings" yaml:"settings"`
	MaxParticles float64       `json:"maxParticles" yaml:"max_particles" validate:"gte=0"`
}

// Weights maps categories to their weight. Normalized vectors include CategoryClear.
type Weights map[Category]float64

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// TransitionTarget says what an in-flight transition is moving.
type TransitionTarget string

const (
	TargetWeight   TransitionTarget = "weight"
	TargetDayPhase TransitionTarget = "dayPhase"
)

// TransitionInfo is a read-only view of an in-flight transition.
type TransitionInfo struct {
	ID       string           `json:"id"`
	Target   TransitionTarget `json:"target"`
	Category Category         `json:"category,omitempty"`
	From     float64          `json:"from"`
	To       float64          `json:"to"`
	Elapsed  float64          `json:"elapsedSeconds"`
	Duration float64          `json:"durationSeconds"`
	Progress float64          `json:"progress"`
	// Instant is set when the value was applied without blending.
	Instant bool `json:"instant,omitempty"`
}

// Frame is what the host renderer consumes each tick.
type Frame struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"` // always UTC

	DayPhase          float64       `json:"dayPhase"`
	Weights           Weights       `json:"weights"`
	NormalizedWeights Weights       `json:"normalizedWeights"`
	State             StateSettings `json:"state"`
	FogColorHex       string        `json:"fogColorHex"`

	// Derived host values.
	SunRotation      float64              `json:"sunRotationDeg"`
	MoonIntensity    float64              `json:"moonIntensity"`
	Exposure         float64              `json:"exposure"`
	AmbientIntensity float64              `json:"ambientIntensity"`
	EmissionRates    map[Category]float64 `json:"emissionRates,omitempty"`
}
