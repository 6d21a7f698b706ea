package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-blender/internal/weather"
)

// Scheduler drives the weather service: a tick job advances the blender by
// the measured (scaled) wall-clock delta, a publish job pushes the latest
// frame to the sinks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service

	tickInterval    time.Duration
	publishInterval time.Duration
	timeScale       float64

	mu       sync.Mutex
	lastTick time.Time
	now      func() time.Time
}

// New creates a new Scheduler. A non-positive publishInterval disables publishing.
func New(service *weather.Service, tickInterval, publishInterval time.Duration, timeScale float64) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Scheduler{
		scheduler:       s,
		service:         service,
		tickInterval:    tickInterval,
		publishInterval: publishInterval,
		timeScale:       timeScale,
		now:             time.Now,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.tickInterval <= 0 {
		s.tickInterval = 100 * time.Millisecond
	}

	s.mu.Lock()
	s.lastTick = s.now()
	s.mu.Unlock()

	if _, err := s.scheduler.Every(s.tickInterval).SingletonMode().Do(s.tick); err != nil {
		return err
	}

	if s.publishInterval > 0 {
		_, err := s.scheduler.Every(s.publishInterval).SingletonMode().Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.publishInterval)
			defer cancel()

			if err := s.service.Publish(ctx); err != nil {
				log.Printf("scheduler: publish failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	} else {
		log.Println("scheduler: no publish interval configured; frames are only kept in the store")
	}

	s.scheduler.StartAsync()
	return nil
}

// tick measures the time since the previous tick and steps the service.
func (s *Scheduler) tick() {
	s.service.Step(s.elapsed())
}

func (s *Scheduler) elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dt := now.Sub(s.lastTick)
	s.lastTick = now
	if dt < 0 {
		dt = 0
	}
	return time.Duration(float64(dt) * s.timeScale)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
