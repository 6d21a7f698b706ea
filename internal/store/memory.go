package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-blender/internal/weather"
)

var (
	// ErrNotFound is returned when no frame matches the request.
	ErrNotFound = errors.New("no weather frames recorded")
)

// MemoryStore is a concurrency-safe in-memory history of rendered frames.
type MemoryStore struct {
	mu sync.RWMutex

	// time-ordered, oldest first
	frames []weather.Frame

	// retention configuration
	maxHistory int           // max number of frames kept
	maxAge     time.Duration // optional max age for frames

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveFrame appends a frame and enforces retention.
func (s *MemoryStore) SaveFrame(frame weather.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames = append(s.frames, frame)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.frames) > s.maxHistory {
		over := len(s.frames) - s.maxHistory
		s.frames = append(s.frames[:0:0], s.frames[over:]...)
	}

	// Enforce retention by age; the newest frame is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.frames)-1; i++ {
			if !s.frames[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.frames = s.frames[i:]
		}
	}
}

// GetLatest returns the most recent frame.
func (s *MemoryStore) GetLatest() (weather.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.frames) == 0 {
		return weather.Frame{}, ErrNotFound
	}
	return s.frames[len(s.frames)-1], nil
}

// GetRange returns all frames between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]weather.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Frame
	for _, f := range s.frames {
		if !f.Timestamp.Before(from) && !f.Timestamp.After(to) {
			result = append(result, f)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len reports how many frames are retained.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}
