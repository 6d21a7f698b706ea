package sinks

import (
	"context"
	"log"

	"github.com/i474232898/weather-blender/internal/weather"
)

// LogSink writes a one-line summary of each frame.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink logs through l, or the standard logger when l is nil.
func NewLogSink(l *log.Logger) *LogSink {
	if l == nil {
		l = log.Default()
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Publish(_ context.Context, f weather.Frame) error {
	s.logger.Printf("DEBUG: frame %d phase=%.3f sun=%.3f sky=%.3f fog=%.4f %s weights=%v",
		f.Sequence, f.DayPhase, f.State.SunIntensity, f.State.SkylightIntensity,
		f.State.FogDensity, f.FogColorHex, f.NormalizedWeights)
	return nil
}
