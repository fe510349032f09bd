package channel

import (
	"context"

	"go.uber.org/zap"
)

// ServerChannel serves a flow to remote callers.
type ServerChannel struct {
	base
	settings ServerSettings
}

// NewServerChannel creates a server channel.
func NewServerChannel(name string, settings ServerSettings, log *zap.Logger) *ServerChannel {
	return &ServerChannel{
		base:     newBase(name, log),
		settings: settings,
	}
}

// Address returns the configured listen address.
func (s *ServerChannel) Address() string { return s.settings.Address }

// Start announces the channel and returns.
//
// TODO: listen on Address and hand requests to the planner's nodes once
// handlers can execute.
func (s *ServerChannel) Start(ctx context.Context) error {
	return s.start(ctx, TypeServer, func(context.Context) error {
		fields := append(s.startFields(),
			zap.String("address", s.settings.Address),
			zap.Duration("read_timeout", s.settings.ReadTimeout),
			zap.Duration("write_timeout", s.settings.WriteTimeout))
		s.logger.Info("server channel is running", fields...)
		return nil
	})
}
