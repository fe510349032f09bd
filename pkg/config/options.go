package config

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/logger"
)

type options struct {
	log       *zap.Logger
	coercions *CoercionTable
}

// Option configures a Resolver, Definition or Root.
type Option func(*options)

// WithLogger sends diagnostics to l instead of the global "config" logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCoercions replaces the coercion table used for typed definitions.
func WithCoercions(t *CoercionTable) Option {
	return func(o *options) {
		if t != nil {
			o.coercions = t
		}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("config")
	}
	if o.coercions == nil {
		o.coercions = DefaultCoercions()
	}
	return o
}
