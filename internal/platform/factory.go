package platform

import (
	"github.com/aretw0/jotter/pkg/core"
)

// New opens a store and wraps it in a core.Service.
//
//	svc, err := jotter.New("./notes.db", jotter.WithLogger(logger))
func New(uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}
	return core.NewService(repo, serviceOptions(parseOptions(opts))...), nil
}

func serviceOptions(o *options) []core.Option {
	var out []core.Option
	if o.logger != nil {
		out = append(out, core.WithLogger(o.logger))
	}
	if o.clock != nil {
		out = append(out, core.WithClock(o.clock))
	}
	if o.limits != nil {
		out = append(out, core.WithLimits(*o.limits))
	}
	if o.eventBuffer > 0 {
		out = append(out, core.WithEventBuffer(o.eventBuffer))
	}
	return out
}
