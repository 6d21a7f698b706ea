package weather

import "time"

// SunRotation is the X-axis Euler angle of the sun light for a day phase.
func SunRotation(phase float64) float64 {
	return phase*360 - 90
}

// EmissionRate is the particle rate a category emitter runs at for a raw weight.
func EmissionRate(maxParticles, weight float64) float64 {
	return maxParticles * weight * weight
}

// ComposeFrame samples the blender into the values a host renderer applies:
// light rotation and intensities, exposure, fog and particle emission.
func ComposeFrame(b *Blender, seq uint64, now time.Time) Frame {
	state := b.BlendedState()
	weights := b.Weights()

	rates := make(map[Category]float64, len(weights))
	for _, cs := range b.Categories() {
		rates[cs.Category] = EmissionRate(cs.MaxParticles, weights[cs.Category])
	}

	phase := b.DayPhase()
	return Frame{
		Sequence:          seq,
		Timestamp:         now.UTC(),
		DayPhase:          phase,
		Weights:           weights,
		NormalizedWeights: b.NormalizedWeights(),
		State:             state,
		FogColorHex:       state.FogColor.Hex(),
		SunRotation:       SunRotation(phase),
		MoonIntensity:     state.SunIntensity * b.MoonIntensityWeight(),
		Exposure:          state.SkylightIntensity,
		AmbientIntensity:  state.SkylightIntensity,
		EmissionRates:     rates,
	}
}
