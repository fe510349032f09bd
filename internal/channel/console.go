package channel

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// ConsoleChannel runs a flow from the terminal.
type ConsoleChannel struct {
	base
	settings ConsoleSettings
	out      io.Writer
}

// NewConsoleChannel creates a console channel writing to out, or stdout
// when out is nil.
func NewConsoleChannel(name string, settings ConsoleSettings, out io.Writer, log *zap.Logger) *ConsoleChannel {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleChannel{
		base:     newBase(name, log),
		settings: settings,
		out:      out,
	}
}

// Start announces the channel and returns.
func (c *ConsoleChannel) Start(ctx context.Context) error {
	return c.start(ctx, TypeConsole, func(context.Context) error {
		if c.settings.Banner != "" {
			if _, err := fmt.Fprintln(c.out, c.settings.Banner); err != nil {
				return err
			}
		}
		c.logger.Info("console channel is running", c.startFields()...)
		return nil
	})
}
