package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/metrics"
)

// Definition is a named, optionally typed variable with a default. Setting
// it pushes the new value into every Reference linked to it.
type Definition struct {
	name         string
	typeTag      string
	defaultValue any
	value        any
	children     []*Reference
	resetting    bool

	coercions *CoercionTable
	log       *zap.Logger
}

// NewDefinition creates a definition holding its default. typeTag may be
// empty for an untyped variable.
func NewDefinition(name string, defaultValue any, typeTag string, opts ...Option) *Definition {
	o := buildOptions(opts)
	return &Definition{
		name:         name,
		typeTag:      NormalizeType(typeTag),
		defaultValue: defaultValue,
		value:        defaultValue,
		coercions:    o.coercions,
		log:          o.log,
	}
}

// Name returns the dotted name, e.g. inputs.city or nodes.fetch.output.
func (d *Definition) Name() string { return d.name }

// Type returns the normalized type tag, or "" when untyped.
func (d *Definition) Type() string { return d.typeTag }

// Value returns the current, coerced value.
func (d *Definition) Value() any { return d.value }

// Default returns the declared default.
func (d *Definition) Default() any { return d.defaultValue }

// References returns the linked references.
func (d *Definition) References() []*Reference {
	out := make([]*Reference, len(d.children))
	copy(out, d.children)
	return out
}

// AddReference links ref so it receives future values.
func (d *Definition) AddReference(ref *Reference) {
	d.children = append(d.children, ref)
}

// RemoveReference unlinks ref. It reports whether ref was linked.
func (d *Definition) RemoveReference(ref *Reference) bool {
	for i, c := range d.children {
		if c == ref {
			d.children = append(d.children[:i], d.children[i+1:]...)
			return true
		}
	}
	return false
}

// Reset restores the default without warning about nested references the
// default cannot satisfy.
func (d *Definition) Reset() {
	d.resetting = true
	defer func() { d.resetting = false }()
	d.SetValue(d.defaultValue)
	metrics.VariableUpdates.WithLabelValues(metrics.UpdateReset).Inc()
}

// SetValue coerces v by the declared type and propagates it. Nested
// references navigate the value as given, before coercion.
func (d *Definition) SetValue(v any) {
	d.value = d.coerce(v)
	if !d.resetting {
		metrics.VariableUpdates.WithLabelValues(metrics.UpdateSet).Inc()
	}

	prefix := d.name + "."
	for _, ref := range d.children {
		switch {
		case ref.Name() == d.name:
			ref.SetValue(d.value)
		case strings.HasPrefix(ref.Name(), prefix):
			sub := ref.Name()[len(prefix):]
			nv, ok := lookupValue(v, strings.Split(sub, "."))
			if !ok {
				if !d.resetting {
					d.log.Warn("failed to set variable reference",
						zap.String("variable", d.name),
						zap.String("reference", ref.Name()),
						zap.String("path", sub))
					metrics.Diagnostics.WithLabelValues(metrics.DiagNestedPath).Inc()
				}
				ref.SetValue(nil)
				continue
			}
			ref.SetValue(nv)
		default:
			d.log.Warn("found orphaned variable reference",
				zap.String("variable", d.name),
				zap.String("reference", ref.Name()))
			metrics.Diagnostics.WithLabelValues(metrics.DiagOrphanedReference).Inc()
		}
	}
}

func (d *Definition) coerce(v any) any {
	fn, ok := d.coercions.Lookup(d.typeTag)
	if !ok {
		d.log.Warn("invalid type definition, value is set as is",
			zap.String("variable", d.name),
			zap.String("type", d.typeTag))
		metrics.Diagnostics.WithLabelValues(metrics.DiagUnknownType).Inc()
		return v
	}
	out, err := safeCoerce(fn, v)
	if err != nil {
		d.log.Debug("coercion failed, falling back to default",
			zap.String("variable", d.name),
			zap.String("type", d.typeTag),
			zap.Error(err))
		metrics.VariableUpdates.WithLabelValues(metrics.UpdateFallback).Inc()
		return d.defaultValue
	}
	return out
}

func safeCoerce(fn CoerceFunc, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("coercion panicked: %v", r)
		}
	}()
	return fn(v)
}
