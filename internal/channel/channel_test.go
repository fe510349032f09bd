package channel

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/hablo/internal/orchestrator"
	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
	"github.com/ajitpratap0/hablo/pkg/testutil"
)

const flowYAML = `
inputs:
  q: {default: hi}
nodes:
  echo: {type: echo}
outputs:
  answer: ${echo.output}
`

func loadFlow(t *testing.T) *config.Root {
	t.Helper()
	root, err := config.FromYAML(strings.NewReader(flowYAML), config.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return root
}

func TestConsoleChannelStart(t *testing.T) {
	log, logs := testutil.ObservedLoggerAt(zapcore.InfoLevel)
	var out bytes.Buffer
	ch := NewConsoleChannel("cli", ConsoleSettings{Banner: "Console is running"}, &out, log)

	root := loadFlow(t)
	planner, err := orchestrator.NewFlowPlanner(root.Tree, nil)
	require.NoError(t, err)
	ch.SetConfiguration(root)
	ch.SetPlanner(planner)

	require.NoError(t, ch.Start(testutil.TestContext(t)))
	assert.Equal(t, "Console is running\n", out.String())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "console channel is running", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "cli", fields["channel"])
	assert.Equal(t, "yaml stream", fields["source"])
	assert.EqualValues(t, 2, fields["variables"])
	assert.Equal(t, []interface{}{"echo"}, fields["nodes"])
}

func TestChannelWithoutConfiguration(t *testing.T) {
	for _, ch := range []Channel{
		NewConsoleChannel("cli", ConsoleSettings{}, &bytes.Buffer{}, zap.NewNop()),
		NewServerChannel("api", ServerSettings{Address: ":0"}, zap.NewNop()),
	} {
		err := ch.Start(testutil.TestContext(t))
		require.Error(t, err, ch.Name())
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), ch.Name())
	}
}

func TestChannelCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := NewServerChannel("api", ServerSettings{Address: ":0"}, zap.NewNop())
	ch.SetConfiguration(loadFlow(t))
	assert.ErrorIs(t, ch.Start(ctx), context.Canceled)
}

func TestServerChannelStart(t *testing.T) {
	log, logs := testutil.ObservedLoggerAt(zapcore.InfoLevel)
	ch := NewServerChannel("api", ServerSettings{Address: "127.0.0.1:9000", ReadTimeout: time.Second}, log)
	ch.SetConfiguration(loadFlow(t))

	require.NoError(t, ch.Start(testutil.TestContext(t)))
	assert.Equal(t, "127.0.0.1:9000", ch.Address())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "127.0.0.1:9000", fields["address"])
	assert.NotContains(t, fields, "nodes")
}

func TestNew(t *testing.T) {
	ch, err := New(NewSettings("cli", "Console"), &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ConsoleChannel{}, ch)
	assert.Equal(t, "cli", ch.Name())

	ch, err = New(NewSettings("api", TypeServer), &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &ServerChannel{}, ch)
	assert.Equal(t, ":8080", ch.(*ServerChannel).Address())

	_, err = New(NewSettings("x", "gunicorn"), &bytes.Buffer{}, zap.NewNop())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"no name", func(s *Settings) { s.Name = "" }, "name is required"},
		{"no type", func(s *Settings) { s.Type = "" }, "type is required"},
		{"no address", func(s *Settings) { s.Server.Address = "" }, "server address is required"},
		{"negative timeout", func(s *Settings) { s.Server.ShutdownTimeout = -time.Second }, "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings("api", TypeServer)
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStartIsTraced(t *testing.T) {
	prev := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ch := NewServerChannel("api", ServerSettings{Address: ":0"}, zap.NewNop())
	require.Error(t, ch.Start(testutil.TestContext(t)))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "channel.start", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("channel.type", TypeServer))
}
