package weather

import "math"

// ClearWeight derives the baseline weight: 1 minus the category weights, floored at 0.
func ClearWeight(weights Weights) float64 {
	rest := 1.0
	for cat, w := range weights {
		if cat == CategoryClear {
			continue
		}
		rest -= w
	}
	return math.Max(rest, 0)
}

// Normalize adds the derived clear weight and scales the vector to sum to 1.
// Negative inputs are treated as zero.
func Normalize(weights Weights) Weights {
	out := make(Weights, len(weights)+1)
	for cat, w := range weights {
		if cat == CategoryClear {
			continue
		}
		out[cat] = math.Max(w, 0)
	}
	out[CategoryClear] = ClearWeight(out)

	// Clear is 1 whenever the categories sum to 0, so sum is never zero here.
	sum := out.Sum()
	for cat := range out {
		out[cat] /= sum
	}
	return out
}

// BlendStates combines settings into a single state, field by field, using the
// matching weights. Weights are expected to be normalized.
func BlendStates(states []StateSettings, weights []float64) StateSettings {
	var blended StateSettings
	for i, s := range states {
		if i >= len(weights) {
			break
		}
		w := weights[i]
		blended.SunIntensity += s.SunIntensity * w
		blended.SkylightIntensity += s.SkylightIntensity * w
		blended.FogDensity += s.FogDensity * w
		blended.FogColor.R += s.FogColor.R * w
		blended.FogColor.G += s.FogColor.G * w
		blended.FogColor.B += s.FogColor.B * w
	}
	return blended
}

// WrapPhase maps any value onto the cyclic [0,1) day phase.
func WrapPhase(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	p = math.Mod(p, 1)
	if p < 0 {
		p++
	}
	// -tiny + 1 rounds to exactly 1.
	if p >= 1 {
		p = 0
	}
	return p
}

// phaseDelta returns the signed shortest angular distance from -> to.
func phaseDelta(from, to float64) float64 {
	d := WrapPhase(to) - WrapPhase(from)
	switch {
	case d > 0.5:
		d--
	case d < -0.5:
		d++
	}
	return d
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
