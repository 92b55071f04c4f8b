package core

import (
	"log/slog"
	"time"

	"github.com/aretw0/jotter/pkg/validation"
)

const defaultEventBuffer = 100

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the time source used to stamp CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimits sets the field limits enforced on every write.
func WithLimits(limits validation.Limits) Option {
	return func(s *Service) {
		s.validator = validation.New(limits)
	}
}

// WithEventBuffer sets how many events Watch buffers for a slow consumer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}
