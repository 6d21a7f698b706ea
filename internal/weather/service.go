package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Service owns the Blender and serialises access to it so the scheduler and
// the HTTP API can share one instance. Every mutation records a fresh frame.
type Service struct {
	mu      sync.Mutex
	blender *Blender
	seq     uint64

	store Store
	sinks []Sink
	now   func() time.Time
}

// NewService creates a new Service and records the initial frame.
func NewService(blender *Blender, store Store, sinks []Sink) *Service {
	s := &Service{
		blender: blender,
		store:   store,
		sinks:   sinks,
		now:     time.Now,
	}
	s.mu.Lock()
	s.recordLocked()
	s.mu.Unlock()
	return s
}

// Step advances the blender by dt and stores the resulting frame.
func (s *Service) Step(dt time.Duration) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blender.Tick(dt.Seconds())
	return s.recordLocked()
}

func (s *Service) recordLocked() Frame {
	s.seq++
	frame := ComposeFrame(s.blender, s.seq, s.now())
	s.store.SaveFrame(frame)
	return frame
}

// SetWeather starts a weight transition. A nil duration uses the configured
// default blend duration; zero applies instantly.
func (s *Service) SetWeather(cat Category, weight float64, duration *time.Duration) (TransitionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs := s.blender.DefaultBlendDuration()
	if duration != nil {
		secs = duration.Seconds()
	}

	info, err := s.blender.SetWeatherState(cat, weight, secs)
	if err != nil {
		return TransitionInfo{}, err
	}
	log.Printf("INFO: weather %s -> %.3f over %.1fs", info.Category, info.To, secs)
	s.recordLocked()
	return info, nil
}

// SetDayTime starts a day-phase transition; duration semantics match SetWeather.
func (s *Service) SetDayTime(phase float64, duration *time.Duration) TransitionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs := s.blender.DefaultBlendDuration()
	if duration != nil {
		secs = duration.Seconds()
	}

	info := s.blender.SetDayTime(phase, secs)
	log.Printf("INFO: day phase -> %.3f over %.1fs", info.To, secs)
	s.recordLocked()
	return info
}

// Transitions lists the blender's in-flight transitions.
func (s *Service) Transitions() []TransitionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blender.ActiveTransitions()
}

// Categories returns the baseline settings and the configured categories.
func (s *Service) Categories() (StateSettings, []CategorySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blender.ClearSettings(), s.blender.Categories()
}

// CategoryNames lists configured category tags in configuration order.
func (s *Service) CategoryNames() []string {
	_, cats := s.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c.Category))
	}
	return names
}

// Publish fans the latest frame out to every sink concurrently. Failing sinks
// are logged; an error is returned only when all of them failed.
func (s *Service) Publish(ctx context.Context) error {
	if len(s.sinks) == 0 {
		return nil
	}

	frame, err := s.store.GetLatest()
	if err != nil {
		return fmt.Errorf("no frame to publish: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for _, sink := range s.sinks {
		sink := sink
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sink.Publish(ctx, frame); err != nil {
				// Log and continue; other sinks still get the frame.
				log.Printf("sink %s publish failed for frame %d: %v", sink.Name(), frame.Sequence, err)
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if failures == len(s.sinks) {
		return fmt.Errorf("all %d sinks failed to publish frame %d", failures, frame.Sequence)
	}
	return nil
}

// Current delegates to the underlying store.
func (s *Service) Current() (Frame, error) {
	return s.store.GetLatest()
}

// History delegates to the underlying store.
func (s *Service) History(from, to time.Time) ([]Frame, error) {
	return s.store.GetRange(from, to)
}
