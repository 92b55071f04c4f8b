package core

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/validation"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	EventBufferSize int               `json:"event_buffer_size"`
	RepositoryType  string            `json:"repository_type"`
	ActiveWatchers  int               `json:"active_watchers"`
	Limits          validation.Limits `json:"limits"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		EventBufferSize: s.eventBufferSize,
		RepositoryType:  repoType,
		ActiveWatchers:  s.watchers,
		Limits:          s.validator.Limits(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
