// Package channel holds the entry points a configured flow is started
// behind. A channel receives the loaded configuration and, optionally, a
// flow plan, then starts.
//
// # Usage
//
//	ch, err := channel.New(channel.NewSettings("cli", channel.TypeConsole), os.Stdout, nil)
//	if err != nil {
//		return err
//	}
//	ch.SetConfiguration(root)
//	return ch.Start(ctx)
package channel

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/internal/orchestrator"
	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
	"github.com/ajitpratap0/hablo/pkg/logger"
	"github.com/ajitpratap0/hablo/pkg/observability"
)

// Channel is an entry point for a configured flow.
type Channel interface {
	Name() string
	SetConfiguration(configuration *config.Root)
	SetPlanner(planner *orchestrator.FlowPlanner)
	Start(ctx context.Context) error
}

// base carries what every channel needs before it can start.
type base struct {
	name          string
	configuration *config.Root
	planner       *orchestrator.FlowPlanner
	logger        *zap.Logger
}

func newBase(name string, log *zap.Logger) base {
	if log == nil {
		log = logger.Named("channel")
	}
	return base{
		name:   name,
		logger: log.With(zap.String("channel", name)),
	}
}

// Name returns the channel instance name.
func (b *base) Name() string { return b.name }

// SetConfiguration sets the configuration the channel serves.
func (b *base) SetConfiguration(configuration *config.Root) {
	b.configuration = configuration
}

// SetPlanner sets the flow plan. It is optional.
func (b *base) SetPlanner(planner *orchestrator.FlowPlanner) {
	b.planner = planner
}

func (b *base) ready() error {
	if b.configuration == nil {
		return errors.Newf(errors.ErrorTypeConfig, "channel %s has no configuration", b.name).
			WithDetail("channel", b.name)
	}
	return nil
}

// start runs fn inside a channel.start span once the channel is ready.
func (b *base) start(ctx context.Context, channelType string, fn func(ctx context.Context) error) error {
	return observability.Trace(ctx, "channel.start", func(ctx context.Context) error {
		if err := b.ready(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx)
	},
		attribute.String("channel.name", b.name),
		attribute.String("channel.type", channelType))
}

func (b *base) startFields() []zap.Field {
	fields := []zap.Field{
		zap.Stringer("source", b.configuration.Source()),
		zap.Int("variables", len(b.configuration.Resolver().Definitions())),
	}
	if b.planner != nil {
		fields = append(fields, zap.Strings("nodes", b.planner.Nodes()))
	}
	return fields
}

// New creates the channel named by settings.Type. The console channel writes
// to out. log may be nil to use the global logger.
func New(settings *Settings, out io.Writer, log *zap.Logger) (Channel, error) {
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid channel settings").
			WithDetail("channel", settings.Name)
	}
	switch strings.ToLower(settings.Type) {
	case TypeServer:
		return NewServerChannel(settings.Name, settings.Server, log), nil
	default:
		return NewConsoleChannel(settings.Name, settings.Console, out, log), nil
	}
}
