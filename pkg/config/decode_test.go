package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/errors"
)

func TestTreeDecode(t *testing.T) {
	root := loadYAML(t, `
inputs:
  port: {type: int, default: 8080}
  wait: {default: 1m30s}
server:
  port: ${inputs.port}
  timeout: ${inputs.wait}
  hosts: a,b
  debug: "true"
`, WithLogger(zap.NewNop()))

	var cfg struct {
		Server struct {
			Port    int           `mapstructure:"port"`
			Timeout time.Duration `mapstructure:"timeout"`
			Hosts   []string      `mapstructure:"hosts"`
			Debug   bool          `mapstructure:"debug"`
		} `mapstructure:"server"`
	}
	require.NoError(t, root.Decode(&cfg))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Server.Hosts)
	assert.True(t, cfg.Server.Debug)

	var bad struct {
		Server int `mapstructure:"server"`
	}
	assert.True(t, errors.IsType(root.Decode(&bad), errors.ErrorTypeValidation))
}

func TestTreeSaveRoundTrip(t *testing.T) {
	root := loadYAML(t, fixtureYAML, WithLogger(zap.NewNop()))
	require.True(t, root.Resolver().SetVariable("inputs.name", "Mars"))

	dir := t.TempDir()
	template := filepath.Join(dir, "template.json")
	require.NoError(t, root.Save(template, true))

	again, err := FromFile(template, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	v, err := again.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "world", v)

	resolved := filepath.Join(dir, "resolved.yaml")
	require.NoError(t, root.Save(resolved, false))
	frozen, err := FromFile(resolved, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	v, err = frozen.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "Mars", v)

	err = root.Save(filepath.Join(dir, "out.txt"), true)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedFormat))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, stderrors.New("disk full") }

func TestWriteCompressedReportsWriteErrors(t *testing.T) {
	for _, name := range []string{"flow.yaml", "flow.yaml.gz", "flow.yaml.zst", "flow.yaml.lz4"} {
		t.Run(name, func(t *testing.T) {
			err := writeCompressed(failingWriter{}, name, strings.Repeat("a: 1\n", 1<<14))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
		})
	}
}

func TestTreeSaveIntoMissingDirectory(t *testing.T) {
	root := loadYAML(t, "a: 1\n", WithLogger(zap.NewNop()))
	err := root.Save(filepath.Join(t.TempDir(), "missing", "flow.yaml"), false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
