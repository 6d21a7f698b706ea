package weather

import "fmt"

// RandomSource yields uniform values in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// SelectionMode picks the distribution used by automatic weather changes.
type SelectionMode string

const (
	// SelectionIndependent chooses each category independently with
	// probability p and gives chosen ones a U(0,1) weight.
	SelectionIndependent SelectionMode = "independent"
	// SelectionLegacy reproduces the original loop: at every step stop with
	// probability 1/2, otherwise give a random (possibly repeated) category
	// a random weight.
	SelectionLegacy SelectionMode = "legacy"
)

// ParseSelectionMode maps a config string onto a SelectionMode.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch m := SelectionMode(s); m {
	case "", SelectionIndependent:
		return SelectionIndependent, nil
	case SelectionLegacy:
		return SelectionLegacy, nil
	default:
		return "", fmt.Errorf("%w: unknown selection mode %q", ErrInvalidConfig, s)
	}
}

// selectTargets draws a full target vector; categories not picked get 0.
func selectTargets(mode SelectionMode, p float64, cats []Category, rng RandomSource) Weights {
	targets := make(Weights, len(cats))
	for _, c := range cats {
		targets[c] = 0
	}
	if len(cats) == 0 {
		return targets
	}

	switch mode {
	case SelectionLegacy:
		for range cats {
			if rng.Float64() < 0.5 {
				break
			}
			idx := int(rng.Float64() * float64(len(cats)))
			if idx >= len(cats) {
				idx = len(cats) - 1
			}
			targets[cats[idx]] = rng.Float64()
		}
	default:
		for _, c := range cats {
			if rng.Float64() < p {
				targets[c] = rng.Float64()
			}
		}
	}
	return targets
}

// uniformRange draws from [lo, hi).
func uniformRange(lo, hi float64, rng RandomSource) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
