package config

import (
	"fmt"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/metrics"
	"github.com/ajitpratap0/hablo/pkg/testutil"
)

func TestDefinitionUntyped(t *testing.T) {
	d := NewDefinition("inputs.count", 3, "", WithLogger(zap.NewNop()))
	ref := NewReference("inputs.count", nil)
	d.AddReference(ref)

	assert.Equal(t, "", d.Type())
	assert.Equal(t, 3, d.Value())

	d.SetValue([]any{1, 2})
	assert.Equal(t, []any{1, 2}, d.Value())
	assert.Equal(t, []any{1, 2}, ref.Value())
	assert.Equal(t, 3, d.Default())
}

func TestDefinitionTextCoercion(t *testing.T) {
	tests := []struct {
		typeTag string
		in      any
		want    any
	}{
		{"String", 42, "42"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"list", []any{"a", "b"}, `["a","b"]`},
		{"dict", map[string]any{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{"str", nil, "null"},
		{"none", 42, 42},
		{" NULL ", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.typeTag, func(t *testing.T) {
			d := NewDefinition("inputs.v", nil, tt.typeTag, WithLogger(zap.NewNop()))
			d.SetValue(tt.in)
			assert.Equal(t, tt.want, d.Value())
		})
	}
}

func TestDefinitionNestedReferencesSeeUncoercedValue(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	d := NewDefinition("nodes.f.output", nil, "dict", WithLogger(log))
	whole := NewReference("nodes.f.output", nil)
	first := NewReference("nodes.f.output.a.0", nil)
	deep := NewReference("nodes.f.output.m.k", nil)
	d.AddReference(whole)
	d.AddReference(first)
	d.AddReference(deep)

	d.SetValue(map[string]any{
		"a": []any{"z", "y"},
		"m": map[string]int{"k": 9},
	})

	assert.Equal(t, `{"a":["z","y"],"m":{"k":9}}`, d.Value())
	assert.Equal(t, d.Value(), whole.Value())
	assert.Equal(t, "z", first.Value())
	assert.Equal(t, 9, deep.Value())
	assert.Zero(t, logs.Len())
}

func TestDefinitionNestedFailure(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	d := NewDefinition("nodes.f.output", map[string]any{"x": 1}, "", WithLogger(log))
	x := NewReference("nodes.f.output.x", nil)
	d.AddReference(x)

	before := promtest.ToFloat64(metrics.Diagnostics.WithLabelValues(metrics.DiagNestedPath))

	d.SetValue(map[string]any{"y": 2})
	assert.Nil(t, x.Value())
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "failed to set variable reference", entry.Message)
	assert.Equal(t, "nodes.f.output.x", entry.ContextMap()["reference"])
	assert.Equal(t, "x", entry.ContextMap()["path"])
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.Diagnostics.WithLabelValues(metrics.DiagNestedPath)))

	d.SetValue("not a mapping")
	assert.Nil(t, x.Value())
	assert.Equal(t, 2, logs.Len())

	d.Reset()
	assert.Equal(t, 1, x.Value())
	assert.Equal(t, 2, logs.Len())
}

func TestDefinitionResetIsQuiet(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	d := NewDefinition("nodes.f.output", nil, "", WithLogger(log))
	x := NewReference("nodes.f.output.x", "stale")
	d.AddReference(x)

	d.Reset()
	assert.Nil(t, x.Value())
	assert.Zero(t, logs.Len())
}

func TestDefinitionOrphanedReference(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	d := NewDefinition("inputs.a", nil, "", WithLogger(log))
	stray := NewReference("inputs.ab", "untouched")
	d.AddReference(stray)

	d.SetValue("v")
	assert.Equal(t, "untouched", stray.Value())
	assert.Equal(t, []string{"found orphaned variable reference"}, testutil.Messages(logs))
}

func TestDefinitionUnknownType(t *testing.T) {
	log, logs := testutil.ObservedLogger()
	d := NewDefinition("inputs.t", nil, "tuple", WithLogger(log))

	before := promtest.ToFloat64(metrics.Diagnostics.WithLabelValues(metrics.DiagUnknownType))
	d.SetValue([]any{1, 2})

	assert.Equal(t, []any{1, 2}, d.Value())
	require.Equal(t, []string{"invalid type definition, value is set as is"}, testutil.Messages(logs))
	assert.Equal(t, "tuple", logs.All()[0].ContextMap()["type"])
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.Diagnostics.WithLabelValues(metrics.DiagUnknownType)))
}

func TestDefinitionCoercionFallback(t *testing.T) {
	table := DefaultCoercions()
	table.Register(func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s, nil
	}, "strict")
	table.Register(func(v any) (any, error) {
		return v.([]any)[5], nil
	}, "fragile")

	opts := []Option{WithLogger(zap.NewNop()), WithCoercions(table)}

	strict := NewDefinition("inputs.s", "fallback", "strict", opts...)
	strict.SetValue(7)
	assert.Equal(t, "fallback", strict.Value())
	strict.SetValue("ok")
	assert.Equal(t, "ok", strict.Value())

	fragile := NewDefinition("inputs.f", "safe", "fragile", opts...)
	assert.NotPanics(t, func() { fragile.SetValue([]any{}) })
	assert.Equal(t, "safe", fragile.Value())

	text := NewDefinition("inputs.c", "default", "string", opts...)
	text.SetValue(unencodable{})
	assert.Equal(t, "default", text.Value())
}

func TestDefinitionRemoveReference(t *testing.T) {
	d := NewDefinition("inputs.a", nil, "", WithLogger(zap.NewNop()))
	a := NewReference("inputs.a", nil)
	b := NewReference("inputs.a", nil)
	d.AddReference(a)
	d.AddReference(b)

	assert.True(t, d.RemoveReference(a))
	assert.False(t, d.RemoveReference(a))
	assert.Equal(t, []*Reference{b}, d.References())

	d.SetValue("v")
	assert.Nil(t, a.Value())
	assert.Equal(t, "v", b.Value())
}

func TestCoercionTable(t *testing.T) {
	table := DefaultCoercions()

	fn, ok := table.Lookup("")
	require.True(t, ok)
	v, err := fn("as is")
	require.NoError(t, err)
	assert.Equal(t, "as is", v)

	_, ok = table.Lookup("tuple")
	assert.False(t, ok)

	clone := table.Clone()
	clone.Register(Identity, "tuple")
	_, ok = clone.Lookup("TUPLE")
	assert.True(t, ok)
	_, ok = table.Lookup("tuple")
	assert.False(t, ok)
}

type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) { return nil, fmt.Errorf("no encoding") }

type celsius float64

func (c celsius) String() string { return fmt.Sprintf("%.1fC", float64(c)) }

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{nil, "null"},
		{false, "false"},
		{-4, "-4"},
		{int64(1) << 40, "1099511627776"},
		{0.25, "0.25"},
		{celsius(21.5), "21.5C"},
		{map[string]any{"k": []any{1, "<b>"}}, `{"k":[1,"<b>"]}`},
	}
	for _, tt := range tests {
		got, err := Text(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Text(unencodable{})
	assert.Error(t, err)
}
