package config

import (
	"fmt"
	"strconv"
	"strings"

	jsonpool "github.com/ajitpratap0/hablo/pkg/json"
)

// CoerceFunc converts a value assigned to a typed Definition. A returned
// error makes the Definition fall back to its default.
type CoerceFunc func(v any) (any, error)

// CoercionTable maps normalized type tags to coercion functions.
type CoercionTable struct {
	funcs map[string]CoerceFunc
}

// NewCoercionTable returns an empty table.
func NewCoercionTable() *CoercionTable {
	return &CoercionTable{funcs: make(map[string]CoerceFunc)}
}

// DefaultCoercions returns the stock table. Untyped tags keep the value as
// is; every other known tag stores the value's text.
//
// TODO: give int, float, bool, list and dict structural coercions once
// callers stop relying on textual values.
func DefaultCoercions() *CoercionTable {
	t := NewCoercionTable()
	t.Register(Identity, "none", "null")
	t.Register(TextCoercion, "str", "string")
	t.Register(TextCoercion, "list", "array")
	t.Register(TextCoercion, "dict", "dictionary", "object")
	t.Register(TextCoercion, "int", "integer")
	t.Register(TextCoercion, "float", "double")
	t.Register(TextCoercion, "bool", "boolean")
	return t
}

// Register binds fn to every tag given. Tags are matched case-insensitively.
func (t *CoercionTable) Register(fn CoerceFunc, tags ...string) {
	for _, tag := range tags {
		t.funcs[NormalizeType(tag)] = fn
	}
}

// Lookup returns the function for a tag. The empty tag is untyped and maps
// to Identity.
func (t *CoercionTable) Lookup(tag string) (CoerceFunc, bool) {
	tag = NormalizeType(tag)
	if tag == "" {
		return Identity, true
	}
	fn, ok := t.funcs[tag]
	return fn, ok
}

// Clone copies the table so callers can extend it without sharing state.
func (t *CoercionTable) Clone() *CoercionTable {
	c := NewCoercionTable()
	for k, fn := range t.funcs {
		c.funcs[k] = fn
	}
	return c
}

// NormalizeType lowercases and trims a declared type tag.
func NormalizeType(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Identity stores the value unchanged.
func Identity(v any) (any, error) { return v, nil }

// TextCoercion stores the textual representation of v.
func TextCoercion(v any) (any, error) {
	s, err := Text(v)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Text renders v as text: strings unchanged, null for nil, Go formatting
// for booleans and numbers, compact JSON for everything else.
func Text(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	data, err := jsonpool.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot render %T as text: %w", v, err)
	}
	return string(data), nil
}
