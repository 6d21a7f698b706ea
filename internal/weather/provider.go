package weather

import (
	"context"
	"time"
)

// Sink receives rendered frames, e.g. a remote host renderer or a log.
type Sink interface {
	Name() string
	Publish(ctx context.Context, frame Frame) error
}

// Store is the contract the in-memory frame history (and any future persistent store) must satisfy.
type Store interface {
	SaveFrame(frame Frame)
	GetLatest() (Frame, error)
	GetRange(from, to time.Time) ([]Frame, error)
}
