package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingKeepsInsertionOrder(t *testing.T) {
	m := NewMapping()
	m.Set("b", Scalar(1))
	m.Set("a", Scalar(2))
	m.Set("b", Scalar(3))

	assert.Equal(t, []string{"b", "a"}, m.Keys)
	assert.Equal(t, 3, m.Fields["b"].Value)
	assert.Equal(t, 2, m.Len())
}

func TestChild(t *testing.T) {
	s := Sequence(Scalar("zero"), Scalar("one"))

	c, ok := s.Child("1")
	require.True(t, ok)
	assert.Equal(t, "one", c.Value)

	for _, seg := range []string{"2", "-1", "x"} {
		_, ok := s.Child(seg)
		assert.False(t, ok, seg)
	}

	_, ok = Scalar("leaf").Child("0")
	assert.False(t, ok)
}

func TestFromNative(t *testing.T) {
	n := FromNative(map[string]any{
		"z":    []any{1, "two"},
		"a":    map[string]int{"k": 4},
		"none": nil,
	})

	assert.Equal(t, MappingNode, n.Kind)
	assert.Equal(t, []string{"a", "none", "z"}, n.Keys)
	assert.Equal(t, SequenceNode, n.Fields["z"].Kind)
	assert.Equal(t, 4, n.Fields["a"].Fields["k"].Value)
	assert.Nil(t, n.Fields["none"].Value)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "reference", ReferenceNode.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
