package channel

import (
	"fmt"
	"strings"
	"time"
)

// Channel types accepted by New.
const (
	TypeConsole = "console"
	TypeServer  = "server"
)

// Settings selects and tunes the channel a flow runs behind. It is decoded
// from the CLI's viper settings, so field tags follow mapstructure.
type Settings struct {
	// Name identifies the channel instance in logs
	Name string `mapstructure:"name"`
	// Type is console or server
	Type string `mapstructure:"type"`

	Console ConsoleSettings `mapstructure:"console"`
	Server  ServerSettings  `mapstructure:"server"`
}

// ConsoleSettings tunes the console channel.
type ConsoleSettings struct {
	// Banner is written to the console when the channel starts
	Banner string `mapstructure:"banner"`
}

// ServerSettings tunes the server channel.
type ServerSettings struct {
	// Address is the host:port the server would listen on
	Address string `mapstructure:"address"`
	// ReadTimeout for a single request
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout for a single response
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// NewSettings returns settings for a channel type with defaults filled in.
func NewSettings(name, channelType string) *Settings {
	return &Settings{
		Name: name,
		Type: channelType,
		Console: ConsoleSettings{
			Banner: "Console is running",
		},
		Server: ServerSettings{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate checks required fields and ranges.
func (s *Settings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch strings.ToLower(s.Type) {
	case TypeConsole:
	case TypeServer:
		if s.Server.Address == "" {
			return fmt.Errorf("server address is required")
		}
		if s.Server.ReadTimeout < 0 || s.Server.WriteTimeout < 0 || s.Server.ShutdownTimeout < 0 {
			return fmt.Errorf("server timeouts cannot be negative")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown channel type %q, use console or server", s.Type)
	}
	return nil
}
