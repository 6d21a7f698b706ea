package weather

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidConfig is returned by NewBlender for unusable configuration.
	ErrInvalidConfig = errors.New("invalid weather configuration")
	// ErrUnknownCategory is returned when a category was never configured.
	ErrUnknownCategory = errors.New("unknown weather category")
)

// Config is the one-time setup of a Blender. Durations are in seconds.
type Config struct {
	Clear      StateSettings
	Categories []CategorySettings

	InitialWeights  Weights
	InitialDayPhase float64

	// DayLength is the number of seconds in one full day-night cycle.
	DayLength  float64
	AdvanceDay bool

	UseDynamicWeather    bool
	WeatherDurationMin   float64
	WeatherDurationMax   float64
	DefaultBlendDuration float64
	Selection            SelectionMode
	SelectionProbability float64

	RandomizeOnStart bool

	// MoonIntensityWeight scales the sun intensity for the moon light.
	MoonIntensityWeight float64
}

// DefaultConfig mirrors the stock sunny/rain/snow scene.
func DefaultConfig() Config {
	return Config{
		Clear: StateSettings{
			SunIntensity:      1.2,
			SkylightIntensity: 1,
			FogDensity:        0.003,
			FogColor:          Color{R: 0.7, G: 0.7, B: 0.7},
		},
		Categories: []CategorySettings{
			{
				Category: CategoryRain,
				Settings: StateSettings{
					SunIntensity:      0.03,
					SkylightIntensity: 0.05,
					FogDensity:        0.03,
					FogColor:          Color{R: 0.45, G: 0.45, B: 0.5},
				},
				MaxParticles: 20000,
			},
			{
				Category: CategorySnow,
				Settings: StateSettings{
					SunIntensity:      0.02,
					SkylightIntensity: 0.1,
					FogDensity:        0.03,
					FogColor:          Color{R: 0.5, G: 0.5, B: 0.5},
				},
				MaxParticles: 5000,
			},
		},
		InitialDayPhase:      0.35,
		DayLength:            1200,
		AdvanceDay:           true,
		UseDynamicWeather:    false,
		WeatherDurationMin:   60,
		WeatherDurationMax:   300,
		DefaultBlendDuration: 10,
		Selection:            SelectionIndependent,
		SelectionProbability: 0.5,
		MoonIntensityWeight:  0.4,
	}
}

// Blender holds the weather weights and day phase, advances transitions on
// Tick and produces the blended visual state.
//
// A Blender is not safe for concurrent use; it must be owned by a single
// goroutine (or guarded by its owner, as Service does).
type Blender struct {
	cfg      Config
	order    []Category
	settings map[Category]CategorySettings

	weights  Weights
	dayPhase float64

	transitions   map[Category]*transition
	dayTransition *transition

	rng       RandomSource
	countdown float64
}

// NewBlender validates cfg and returns a ready Blender. The blended state is
// available immediately, without a first Tick.
func NewBlender(cfg Config, rng RandomSource) (*Blender, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if rng == nil && (cfg.UseDynamicWeather || cfg.RandomizeOnStart) {
		return nil, fmt.Errorf("%w: random source required for dynamic or randomized weather", ErrInvalidConfig)
	}

	b := &Blender{
		cfg:         cfg,
		settings:    make(map[Category]CategorySettings, len(cfg.Categories)),
		weights:     make(Weights, len(cfg.Categories)),
		transitions: make(map[Category]*transition),
		rng:         rng,
	}
	for _, cs := range cfg.Categories {
		cat := cs.Category.Normalize()
		cs.Category = cat
		b.order = append(b.order, cat)
		b.settings[cat] = cs
		b.weights[cat] = 0
	}
	for cat, w := range cfg.InitialWeights {
		b.weights[cat.Normalize()] = clamp01(w)
	}
	b.dayPhase = WrapPhase(cfg.InitialDayPhase)

	if cfg.RandomizeOnStart {
		for cat, w := range selectTargets(cfg.Selection, cfg.SelectionProbability, b.order, rng) {
			b.weights[cat] = w
		}
		b.dayPhase = WrapPhase(rng.Float64())
	}
	if cfg.UseDynamicWeather {
		b.countdown = uniformRange(cfg.WeatherDurationMin, cfg.WeatherDurationMax, rng)
	}
	return b, nil
}

func validateConfig(cfg Config) error {
	if len(cfg.Categories) == 0 {
		return fmt.Errorf("%w: no weather categories configured", ErrInvalidConfig)
	}
	seen := make(map[Category]bool, len(cfg.Categories))
	for _, cs := range cfg.Categories {
		cat := cs.Category.Normalize()
		switch {
		case cat == "":
			return fmt.Errorf("%w: empty category name", ErrInvalidConfig)
		case cat == CategoryClear:
			return fmt.Errorf("%w: %q is reserved for the baseline state", ErrInvalidConfig, CategoryClear)
		case seen[cat]:
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, cat)
		}
		seen[cat] = true
	}
	for cat := range cfg.InitialWeights {
		if !seen[cat.Normalize()] {
			return fmt.Errorf("%w: initial weight for %q", ErrUnknownCategory, cat)
		}
	}
	if !(cfg.DayLength > 0) {
		return fmt.Errorf("%w: day length must be positive, got %v", ErrInvalidConfig, cfg.DayLength)
	}
	if cfg.WeatherDurationMin < 0 || cfg.WeatherDurationMax < cfg.WeatherDurationMin {
		return fmt.Errorf("%w: weather duration range [%v, %v]", ErrInvalidConfig, cfg.WeatherDurationMin, cfg.WeatherDurationMax)
	}
	if cfg.UseDynamicWeather && cfg.WeatherDurationMax <= 0 {
		return fmt.Errorf("%w: dynamic weather needs a positive weather duration", ErrInvalidConfig)
	}
	if cfg.DefaultBlendDuration < 0 {
		return fmt.Errorf("%w: negative default blend duration", ErrInvalidConfig)
	}
	if cfg.SelectionProbability < 0 || cfg.SelectionProbability > 1 {
		return fmt.Errorf("%w: selection probability %v outside [0,1]", ErrInvalidConfig, cfg.SelectionProbability)
	}
	if _, err := ParseSelectionMode(string(cfg.Selection)); err != nil {
		return err
	}
	return nil
}

// SetWeatherState starts (or replaces) a transition of cat's weight towards
// target over duration seconds. Out-of-range values are clamped; a zero
// duration applies the weight instantly.
func (b *Blender) SetWeatherState(cat Category, target, duration float64) (TransitionInfo, error) {
	cat = cat.Normalize()
	if _, ok := b.settings[cat]; !ok {
		return TransitionInfo{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	target = clamp01(target)
	duration = nonNegative(duration)

	if duration == 0 {
		from := b.weights[cat]
		delete(b.transitions, cat)
		b.weights[cat] = target
		return TransitionInfo{Target: TargetWeight, Category: cat, From: from, To: target, Progress: 1, Instant: true}, nil
	}

	t := newWeightTransition(cat, b.weights[cat], target, duration)
	b.transitions[cat] = t
	return t.info(), nil
}

// SetDayTime moves the day phase to target over duration seconds along the
// shorter way round the cycle. target is wrapped into [0,1).
func (b *Blender) SetDayTime(target, duration float64) TransitionInfo {
	target = WrapPhase(target)
	duration = nonNegative(duration)

	if duration == 0 {
		from := b.dayPhase
		b.dayTransition = nil
		b.dayPhase = target
		return TransitionInfo{Target: TargetDayPhase, From: from, To: target, Progress: 1, Instant: true}
	}

	b.dayTransition = newPhaseTransition(b.dayPhase, target, duration)
	return b.dayTransition.info()
}

// SetWeight sets a weight instantly, cancelling any transition on it.
func (b *Blender) SetWeight(cat Category, w float64) error {
	_, err := b.SetWeatherState(cat, w, 0)
	return err
}

// SetDayPhase sets the day phase instantly, cancelling any day transition.
func (b *Blender) SetDayPhase(p float64) {
	b.SetDayTime(p, 0)
}

// Tick advances every active transition by dt seconds, then the automatic
// weather countdown and day cycle when enabled.
func (b *Blender) Tick(dt float64) {
	dt = nonNegative(dt)
	if math.IsInf(dt, 1) {
		dt = 0
	}

	for cat, t := range b.transitions {
		v, done := t.advance(dt)
		b.weights[cat] = v
		if done {
			delete(b.transitions, cat)
		}
	}

	// A requested day transition takes priority over the automatic cycle.
	if b.dayTransition != nil {
		v, done := b.dayTransition.advance(dt)
		b.dayPhase = v
		if done {
			b.dayTransition = nil
		}
	} else if b.cfg.AdvanceDay {
		b.dayPhase = WrapPhase(b.dayPhase + dt/b.cfg.DayLength)
	}

	if b.cfg.UseDynamicWeather {
		b.countdown -= dt
		if b.countdown <= 0 {
			b.changeWeather()
			b.countdown = uniformRange(b.cfg.WeatherDurationMin, b.cfg.WeatherDurationMax, b.rng)
		}
	}
}

func (b *Blender) changeWeather() {
	targets := selectTargets(b.cfg.Selection, b.cfg.SelectionProbability, b.order, b.rng)
	for _, cat := range b.order {
		// Categories are known, the error cannot occur.
		_, _ = b.SetWeatherState(cat, targets[cat], b.cfg.DefaultBlendDuration)
	}
}

// BlendedState is the weighted combination of the clear and category settings
// under the current normalized weights.
func (b *Blender) BlendedState() StateSettings {
	norm := b.NormalizedWeights()
	states := make([]StateSettings, 0, len(b.order)+1)
	ws := make([]float64, 0, len(b.order)+1)

	states = append(states, b.cfg.Clear)
	ws = append(ws, norm[CategoryClear])
	for _, cat := range b.order {
		states = append(states, b.settings[cat].Settings)
		ws = append(ws, norm[cat])
	}
	return BlendStates(states, ws)
}

// Weights returns a copy of the raw category weights.
func (b *Blender) Weights() Weights {
	return b.weights.Clone()
}

// NormalizedWeights returns the weights including clear, summing to 1.
func (b *Blender) NormalizedWeights() Weights {
	return Normalize(b.weights)
}

// Weight returns the raw weight of one category.
func (b *Blender) Weight(cat Category) (float64, error) {
	w, ok := b.weights[cat.Normalize()]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return w, nil
}

// DayPhase returns the current phase in [0,1); 0 is midnight, 0.5 noon.
func (b *Blender) DayPhase() float64 {
	return b.dayPhase
}

// Categories returns the configured categories in configuration order.
func (b *Blender) Categories() []CategorySettings {
	out := make([]CategorySettings, 0, len(b.order))
	for _, cat := range b.order {
		out = append(out, b.settings[cat])
	}
	return out
}

// ClearSettings returns the baseline state.
func (b *Blender) ClearSettings() StateSettings {
	return b.cfg.Clear
}

// DefaultBlendDuration returns the configured default, in seconds.
func (b *Blender) DefaultBlendDuration() float64 {
	return b.cfg.DefaultBlendDuration
}

// MoonIntensityWeight returns the moon scaling factor.
func (b *Blender) MoonIntensityWeight() float64 {
	return b.cfg.MoonIntensityWeight
}

// NextWeatherChange returns the seconds left until the next automatic change,
// or false when dynamic weather is off.
func (b *Blender) NextWeatherChange() (float64, bool) {
	if !b.cfg.UseDynamicWeather {
		return 0, false
	}
	return math.Max(b.countdown, 0), true
}

// ActiveTransitions lists in-flight jobs, day phase first, then by category.
func (b *Blender) ActiveTransitions() []TransitionInfo {
	out := make([]TransitionInfo, 0, len(b.transitions)+1)
	if b.dayTransition != nil {
		out = append(out, b.dayTransition.info())
	}
	cats := make([]Category, 0, len(b.transitions))
	for cat := range b.transitions {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		out = append(out, b.transitions[cat].info())
	}
	return out
}
