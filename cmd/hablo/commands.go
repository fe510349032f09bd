package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hablo/internal/channel"
	"github.com/ajitpratap0/hablo/internal/orchestrator"
	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
	"github.com/ajitpratap0/hablo/pkg/logger"
	"github.com/ajitpratap0/hablo/pkg/observability"
)

const (
	keyConfig      = "config"
	keyLogLevel    = "log-level"
	keyLogEncoding = "log-encoding"
	keyTrace       = "trace"
)

// newRootCmd builds the command tree. Settings resolve from flags, then
// HABLO_* environment variables, then defaults.
func newRootCmd(v *viper.Viper) *cobra.Command {
	v.SetEnvPrefix("hablo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := channel.NewSettings("hablo", channel.TypeConsole)
	v.SetDefault(keyConfig, "hablo.yaml")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogEncoding, "console")
	v.SetDefault(keyTrace, false)
	v.SetDefault("channel.name", defaults.Name)
	v.SetDefault("channel.type", defaults.Type)
	v.SetDefault("channel.console.banner", defaults.Console.Banner)
	v.SetDefault("channel.server.address", defaults.Server.Address)
	v.SetDefault("channel.server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("channel.server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("channel.server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	var shutdownTracing func(context.Context) error

	root := &cobra.Command{
		Use:   "hablo",
		Short: "hablo - configuration-driven flows with live variables",
		Long: `hablo loads a JSON or YAML flow document, links every ${dotted.path}
placeholder to the variable it names and keeps the placeholders live as
variables change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.Config{
				Level:    v.GetString(keyLogLevel),
				Encoding: v.GetString(keyLogEncoding),
			}); err != nil {
				return err
			}
			if v.GetBool(keyTrace) {
				cfg := observability.DefaultTracingConfig(version)
				cfg.Output = cmd.ErrOrStderr()
				shutdown, err := observability.Init(cfg)
				if err != nil {
					return err
				}
				shutdownTracing = shutdown
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringP(keyConfig, "c", "hablo.yaml", "Path to the flow document (.json, .yaml or .yml)")
	flags.String(keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	flags.String(keyLogEncoding, "console", "Log encoding (json, console)")
	flags.Bool(keyTrace, false, "Write OpenTelemetry spans to stderr")
	flags.StringArray("set", nil, "Override a variable, e.g. --set inputs.city=Oslo (repeatable)")
	_ = v.BindPFlag(keyConfig, flags.Lookup(keyConfig))
	_ = v.BindPFlag(keyLogLevel, flags.Lookup(keyLogLevel))
	_ = v.BindPFlag(keyLogEncoding, flags.Lookup(keyLogEncoding))
	_ = v.BindPFlag(keyTrace, flags.Lookup(keyTrace))

	root.AddCommand(
		newVersionCmd(),
		newDumpCmd(v),
		newGetCmd(v),
		newVarsCmd(v),
		newRunCmd(v),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hablo v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newDumpCmd(v *viper.Viper) *cobra.Command {
	var format, output string
	var raw bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the flow document with variables resolved",
		Long: `Print the flow document. By default every placeholder is replaced by the
current value of its variable; --raw prints the ${...} template instead.
--output writes a file instead, in the format and compression named by its
suffix (flow.json, flow.yaml.gz, flow.yml.zst).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			root, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			if output != "" {
				return root.Save(output, raw)
			}
			out, err := root.Dump(f, raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Keep ${...} placeholders")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newGetCmd(v *viper.Viper) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <dotted.path>",
		Short: "Print the resolved value at a dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			root, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			value, err := root.Get(args[0])
			if err != nil {
				return err
			}

			var out string
			switch val := value.(type) {
			case *config.Tree:
				out, err = val.Dump(f, false)
			case map[string]any, []any:
				// Structured variable values print like sub-trees.
				out, err = config.NewTree(config.FromNative(val)).Dump(f, false)
			default:
				out, err = config.Text(value)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format for mappings and sequences (json, yaml)")
	return cmd
}

func newVarsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "List variable definitions and their current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			return writeVars(cmd.OutOrStdout(), root.Resolver())
		},
	}
}

func writeVars(w io.Writer, res *config.Resolver) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tREFERENCES\tVALUE")
	for _, def := range res.Definitions() {
		value, err := config.Text(def.Value())
		if err != nil {
			return err
		}
		typ := def.Type()
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", def.Name(), typ, len(def.References()), value)
	}
	return tw.Flush()
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	var plan bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the flow behind a channel",
		Long: `Load the flow document, apply --set overrides and start the configured
channel. With --plan the document must declare inputs, nodes and outputs.

Example:
  hablo run -c flow.yaml --set inputs.city=Oslo --channel server --address :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			settings, err := channelSettings(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = context.WithValue(ctx, logger.ChannelKey, settings.Name)
			ctx = context.WithValue(ctx, logger.SourceKey, root.Source().String())
			log := logger.WithContext(ctx)

			ch, err := channel.New(settings, cmd.OutOrStdout(), log)
			if err != nil {
				return err
			}
			ch.SetConfiguration(root)

			if plan {
				var planner *orchestrator.FlowPlanner
				err := observability.Trace(ctx, "flow.plan", func(context.Context) error {
					var err error
					planner, err = orchestrator.New(root, nil).Plan()
					return err
				})
				if err != nil {
					return err
				}
				ch.SetPlanner(planner)
				log.Info("flow planned",
					zap.Strings("inputs", planner.Inputs()),
					zap.Strings("nodes", planner.Nodes()),
					zap.Strings("outputs", planner.Outputs()))
			}
			return ch.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&plan, "plan", false, "Validate inputs, nodes and outputs before starting")
	cmd.Flags().String("channel", channel.TypeConsole, "Channel to start (console, server)")
	cmd.Flags().String("address", ":8080", "Listen address for the server channel")
	_ = v.BindPFlag("channel.type", cmd.Flags().Lookup("channel"))
	_ = v.BindPFlag("channel.server.address", cmd.Flags().Lookup("address"))
	return cmd
}

// channelSettings decodes the channel.* keys, including flags and
// environment variables bound to nested keys.
func channelSettings(v *viper.Viper) (*channel.Settings, error) {
	var wrapper struct {
		Channel *channel.Settings `mapstructure:"channel"`
	}
	wrapper.Channel = channel.NewSettings("hablo", channel.TypeConsole)
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read channel settings")
	}
	return wrapper.Channel, nil
}

// loadConfig reads the flow document and applies --set overrides.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Root, error) {
	path := v.GetString(keyConfig)
	sets, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, err
	}

	var root *config.Root
	err = observability.Trace(cmd.Context(), "config.load", func(context.Context) error {
		var err error
		if root, err = config.FromFile(path); err != nil {
			return err
		}
		return applyOverrides(root.Resolver(), sets)
	},
		attribute.String("config.path", path),
		attribute.Int("config.overrides", len(sets)))
	if err != nil {
		return nil, err
	}
	return root, nil
}

// applyOverrides sets variables from name=value pairs. Values are parsed as
// YAML, so numbers, booleans, lists and mappings keep their shape.
func applyOverrides(res *config.Resolver, sets []string) error {
	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return errors.Newf(errors.ErrorTypeValidation, "invalid override %q, want name=value", set)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		if !res.SetVariable(name, value) {
			return errors.Newf(errors.ErrorTypeKeyNotFound, "no variable named %q", name).
				WithDetail("variable", name)
		}
	}
	return nil
}
