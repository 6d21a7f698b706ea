package weather

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

// seqRand replays fixed values, then keeps returning the last one.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	if r.i >= len(r.vals) {
		return r.vals[len(r.vals)-1]
	}
	v := r.vals[r.i]
	r.i++
	return v
}

func staticConfig() Config {
	cfg := DefaultConfig()
	cfg.AdvanceDay = false
	cfg.UseDynamicWeather = false
	return cfg
}

func newTestBlender(t *testing.T, cfg Config, rng RandomSource) *Blender {
	t.Helper()
	b, err := NewBlender(cfg, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func mustWeight(t *testing.T, b *Blender, cat Category) float64 {
	t.Helper()
	w, err := b.Weight(cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w
}

func TestBlendedStateClearByDefault(t *testing.T) {
	cfg := staticConfig()
	b := newTestBlender(t, cfg, nil)

	if got := b.BlendedState(); got != cfg.Clear {
		t.Fatalf("expected clear settings %+v, got %+v", cfg.Clear, got)
	}
}

func TestSetWeatherStateInstant(t *testing.T) {
	cfg := staticConfig()
	b := newTestBlender(t, cfg, nil)

	info, err := b.SetWeatherState(CategoryRain, 1.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Instant || info.To != 1 {
		t.Fatalf("expected instant transition to 1, got %+v", info)
	}
	if w := mustWeight(t, b, CategoryRain); w != 1 {
		t.Fatalf("expected clamped weight 1, got %v", w)
	}
	if got := b.BlendedState(); got != cfg.Categories[0].Settings {
		t.Fatalf("expected rain settings, got %+v", got)
	}

	if _, err := b.SetWeatherState(CategoryRain, -3, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w := mustWeight(t, b, CategoryRain); w != 0 {
		t.Fatalf("expected clamped weight 0, got %v", w)
	}
}

func TestWeightTransitionIsLinearAndExact(t *testing.T) {
	b := newTestBlender(t, staticConfig(), nil)

	if _, err := b.SetWeatherState(CategoryRain, 1.0, 10.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Tick(5)
	if w := mustWeight(t, b, CategoryRain); math.Abs(w-0.5) > eps {
		t.Fatalf("expected 0.5 at half time, got %v", w)
	}
	if n := len(b.ActiveTransitions()); n != 1 {
		t.Fatalf("expected 1 active transition, got %d", n)
	}

	b.Tick(5)
	if w := mustWeight(t, b, CategoryRain); w != 1.0 {
		t.Fatalf("expected exactly 1.0 on completion, got %v", w)
	}
	if n := len(b.ActiveTransitions()); n != 0 {
		t.Fatalf("expected transition to retire, %d still active", n)
	}

	b.Tick(5)
	if w := mustWeight(t, b, CategoryRain); w != 1.0 {
		t.Fatalf("expected weight to stay at 1.0, got %v", w)
	}
}

func TestNewTransitionReplacesPrevious(t *testing.T) {
	b := newTestBlender(t, staticConfig(), nil)

	first, _ := b.SetWeatherState(CategorySnow, 1, 10)
	b.Tick(2)
	second, err := b.SetWeatherState(CategorySnow, 0.25, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected a fresh transition id")
	}
	if math.Abs(second.From-0.2) > eps {
		t.Fatalf("expected second transition to start from 0.2, got %v", second.From)
	}

	b.Tick(4)
	if w := mustWeight(t, b, CategorySnow); w != 0.25 {
		t.Fatalf("expected second target 0.25, got %v", w)
	}
	b.Tick(10)
	if w := mustWeight(t, b, CategorySnow); w != 0.25 {
		t.Fatalf("first transition should be cancelled, got %v", w)
	}
}

func TestSetDayTimeTakesShorterPath(t *testing.T) {
	cfg := staticConfig()
	cfg.InitialDayPhase = 0.35
	b := newTestBlender(t, cfg, nil)

	info := b.SetDayTime(0.9, 10)
	if math.Abs(info.To-0.9) > eps {
		t.Fatalf("unexpected target %v", info.To)
	}

	// 0.35 -> 0.9 is shorter backwards through midnight (0.45 vs 0.55).
	b.Tick(5)
	if p := b.DayPhase(); math.Abs(p-0.125) > eps {
		t.Fatalf("expected 0.125 at half time, got %v", p)
	}

	b.Tick(4)
	if p := b.DayPhase(); p < 0 || p >= 1 || math.Abs(p-0.945) > eps {
		t.Fatalf("expected wrapped 0.945, got %v", p)
	}

	b.Tick(1)
	if p := b.DayPhase(); p != 0.9 {
		t.Fatalf("expected exactly 0.9, got %v", p)
	}
}

func TestDayAdvanceWraps(t *testing.T) {
	cfg := staticConfig()
	cfg.AdvanceDay = true
	cfg.DayLength = 100
	cfg.InitialDayPhase = 0.95
	b := newTestBlender(t, cfg, nil)

	before := b.BlendedState()
	b.Tick(10)

	p := b.DayPhase()
	if p < 0 || p >= 1 {
		t.Fatalf("day phase %v outside [0,1)", p)
	}
	if math.Abs(p-0.05) > eps {
		t.Fatalf("expected 0.05 after wrap, got %v", p)
	}
	// Weights are untouched, so the blended state must not jump.
	if after := b.BlendedState(); after != before {
		t.Fatalf("blended state changed across wrap: %+v -> %+v", before, after)
	}
}

func TestDayTransitionSuspendsAutoAdvance(t *testing.T) {
	cfg := staticConfig()
	cfg.AdvanceDay = true
	cfg.DayLength = 10
	cfg.InitialDayPhase = 0.2
	b := newTestBlender(t, cfg, nil)

	b.SetDayTime(0.4, 2)
	b.Tick(2)
	if p := b.DayPhase(); p != 0.4 {
		t.Fatalf("expected 0.4, got %v", p)
	}
	b.Tick(1)
	if p := b.DayPhase(); math.Abs(p-0.5) > eps {
		t.Fatalf("expected auto advance to resume at 0.5, got %v", p)
	}
}

func TestDirectSetters(t *testing.T) {
	b := newTestBlender(t, staticConfig(), nil)

	b.SetDayTime(0.8, 10)
	b.SetDayPhase(1.25)
	if p := b.DayPhase(); p != 0.25 {
		t.Fatalf("expected wrapped 0.25, got %v", p)
	}
	if err := b.SetWeight("Rain", 0.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w := mustWeight(t, b, CategoryRain); w != 0.7 {
		t.Fatalf("expected 0.7, got %v", w)
	}
	if n := len(b.ActiveTransitions()); n != 0 {
		t.Fatalf("direct setters should cancel transitions, %d active", n)
	}
}

func TestUnknownCategory(t *testing.T) {
	b := newTestBlender(t, staticConfig(), nil)

	if _, err := b.SetWeatherState("hail", 1, 1); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := b.SetWeatherState(CategoryClear, 1, 1); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("clear must not be settable, got %v", err)
	}
}

func TestNewBlenderRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		rng    RandomSource
	}{
		{"no categories", func(c *Config) { c.Categories = nil }, nil},
		{"zero day length", func(c *Config) { c.DayLength = 0 }, nil},
		{"negative day length", func(c *Config) { c.DayLength = -5 }, nil},
		{"duplicate category", func(c *Config) { c.Categories[1].Category = "RAIN" }, nil},
		{"reserved clear", func(c *Config) { c.Categories[0].Category = CategoryClear }, nil},
		{"empty name", func(c *Config) { c.Categories[0].Category = " " }, nil},
		{"inverted duration range", func(c *Config) { c.WeatherDurationMin, c.WeatherDurationMax = 10, 5 }, nil},
		{"selection probability", func(c *Config) { c.SelectionProbability = 1.5 }, nil},
		{"selection mode", func(c *Config) { c.Selection = "uniform" }, nil},
		{"dynamic without rng", func(c *Config) { c.UseDynamicWeather = true }, nil},
		{"unknown initial weight", func(c *Config) { c.InitialWeights = Weights{"fog": 0.5} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := staticConfig()
			cfg.Categories = append([]CategorySettings(nil), cfg.Categories...)
			tt.mutate(&cfg)

			if _, err := NewBlender(cfg, tt.rng); err == nil {
				t.Fatalf("expected configuration error")
			} else if !errors.Is(err, ErrInvalidConfig) && !errors.Is(err, ErrUnknownCategory) {
				t.Fatalf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestInitialWeightsAreClamped(t *testing.T) {
	cfg := staticConfig()
	cfg.InitialWeights = Weights{"Snow": 3}
	b := newTestBlender(t, cfg, nil)

	if w := mustWeight(t, b, CategorySnow); w != 1 {
		t.Fatalf("expected 1, got %v", w)
	}
}

func TestDynamicWeatherStartsTransitions(t *testing.T) {
	cfg := staticConfig()
	cfg.UseDynamicWeather = true
	cfg.WeatherDurationMin, cfg.WeatherDurationMax = 10, 10
	cfg.DefaultBlendDuration = 5
	cfg.Selection = SelectionIndependent
	cfg.SelectionProbability = 1

	rng := &seqRand{vals: []float64{0.1, 0.6, 0.2, 0.3}}
	b := newTestBlender(t, cfg, rng)

	if left, ok := b.NextWeatherChange(); !ok || left != 10 {
		t.Fatalf("expected 10s countdown, got %v %v", left, ok)
	}

	b.Tick(10)
	if n := len(b.ActiveTransitions()); n != 2 {
		t.Fatalf("expected transitions for both categories, got %d", n)
	}

	b.Tick(5)
	if w := mustWeight(t, b, CategoryRain); w != 0.6 {
		t.Fatalf("expected rain 0.6, got %v", w)
	}
	if w := mustWeight(t, b, CategorySnow); w != 0.3 {
		t.Fatalf("expected snow 0.3, got %v", w)
	}
	if left, _ := b.NextWeatherChange(); left != 5 {
		t.Fatalf("expected 5s until next change, got %v", left)
	}
}

func TestLegacySelection(t *testing.T) {
	cats := []Category{CategoryRain, CategorySnow}

	// continue, pick index 1 (snow) with 0.4, then stop.
	rng := &seqRand{vals: []float64{0.7, 0.9, 0.4, 0.2}}
	got := selectTargets(SelectionLegacy, 0, cats, rng)

	if got[CategoryRain] != 0 || got[CategorySnow] != 0.4 {
		t.Fatalf("unexpected targets %v", got)
	}
}

func TestIndependentSelectionSkipsUnchosen(t *testing.T) {
	cats := []Category{CategoryRain, CategorySnow}

	rng := &seqRand{vals: []float64{0.9, 0.1, 0.8}}
	got := selectTargets(SelectionIndependent, 0.5, cats, rng)

	if got[CategoryRain] != 0 || got[CategorySnow] != 0.8 {
		t.Fatalf("unexpected targets %v", got)
	}
}

func TestRandomizeOnStart(t *testing.T) {
	cfg := staticConfig()
	cfg.RandomizeOnStart = true
	cfg.SelectionProbability = 1

	rng := &seqRand{vals: []float64{0, 0.5, 0, 0.25, 0.75}}
	b := newTestBlender(t, cfg, rng)

	if w := mustWeight(t, b, CategoryRain); w != 0.5 {
		t.Fatalf("expected rain 0.5, got %v", w)
	}
	if w := mustWeight(t, b, CategorySnow); w != 0.25 {
		t.Fatalf("expected snow 0.25, got %v", w)
	}
	if p := b.DayPhase(); p != 0.75 {
		t.Fatalf("expected phase 0.75, got %v", p)
	}
}

func TestTickIgnoresInvalidDelta(t *testing.T) {
	b := newTestBlender(t, staticConfig(), nil)
	_, _ = b.SetWeatherState(CategoryRain, 1, 10)

	b.Tick(-5)
	b.Tick(math.NaN())
	if w := mustWeight(t, b, CategoryRain); w != 0 {
		t.Fatalf("expected no progress, got %v", w)
	}
}
