package weather

import "github.com/google/uuid"

// transition is one in-flight linear blend job. Day-phase transitions store
// the signed shortest-path delta so interpolation never jumps across 0/1.
type transition struct {
	id       string
	target   TransitionTarget
	category Category
	from     float64
	to       float64
	delta    float64
	elapsed  float64
	duration float64
}

func newWeightTransition(cat Category, from, to, duration float64) *transition {
	return &transition{
		id:       uuid.NewString(),
		target:   TargetWeight,
		category: cat,
		from:     from,
		to:       to,
		delta:    to - from,
		duration: duration,
	}
}

func newPhaseTransition(from, to, duration float64) *transition {
	return &transition{
		id:       uuid.NewString(),
		target:   TargetDayPhase,
		from:     from,
		to:       to,
		delta:    phaseDelta(from, to),
		duration: duration,
	}
}

// advance moves the job forward by dt and returns the current value and
// whether the job has completed. A completed job reports its exact target.
func (t *transition) advance(dt float64) (float64, bool) {
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		return t.to, true
	}
	v := t.from + t.delta*t.progress()
	if t.target == TargetDayPhase {
		v = WrapPhase(v)
	}
	return v, false
}

func (t *transition) progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return clamp01(t.elapsed / t.duration)
}

func (t *transition) info() TransitionInfo {
	return TransitionInfo{
		ID:       t.id,
		Target:   t.target,
		Category: t.category,
		From:     t.from,
		To:       t.to,
		Elapsed:  t.elapsed,
		Duration: t.duration,
		Progress: t.progress(),
	}
}
