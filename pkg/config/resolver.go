package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/metrics"
)

// declaration is the shape of an entry under inputs, and of a node's outputs.
type declaration struct {
	Type    any `mapstructure:"type"`
	Default any `mapstructure:"default"`
}

type nodeDeclaration struct {
	Outputs *declaration `mapstructure:"outputs"`
}

// Resolver discovers variable definitions in a tree, links placeholders to
// them and propagates value changes.
type Resolver struct {
	definitions map[string]*Definition
	order       []*Definition
	registry    *Registry
	opts        []Option
	log         *zap.Logger
}

// NewResolver returns an empty resolver.
func NewResolver(opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{
		definitions: make(map[string]*Definition),
		registry:    NewRegistry(),
		opts:        []Option{WithLogger(o.log), WithCoercions(o.coercions)},
		log:         o.log,
	}
}

// Resolve collects definitions from root's inputs and nodes sections, then
// replaces every placeholder string in the tree with a reference node. It
// does not reset the definitions; call ResetVariables for that.
func (r *Resolver) Resolve(root *Node) {
	r.collect(root)
	r.link(root, "")
}

// Registry returns the reference registry the linked tree points into.
func (r *Resolver) Registry() *Registry { return r.registry }

// HasVariable reports whether name is a definition or one of its aliases.
func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.definitions[name]
	return ok
}

// Variable returns the definition registered under name.
func (r *Resolver) Variable(name string) (*Definition, bool) {
	d, ok := r.definitions[name]
	return d, ok
}

// SetVariable sets a definition's value. It reports false when no
// definition has that name.
func (r *Resolver) SetVariable(name string, v any) bool {
	d, ok := r.definitions[name]
	if !ok {
		return false
	}
	d.SetValue(v)
	return true
}

// ResetVariables restores every definition to its default.
func (r *Resolver) ResetVariables() {
	for _, d := range r.order {
		d.Reset()
	}
}

// Reference returns the reference registered under its effective name.
func (r *Resolver) Reference(name string) (*Reference, bool) {
	return r.registry.Lookup(name)
}

// References returns every reference in the order it was first linked.
func (r *Resolver) References() []*Reference {
	return r.registry.All()
}

// Definitions returns each distinct definition in discovery order. Aliases
// are not repeated.
func (r *Resolver) Definitions() []*Definition {
	out := make([]*Definition, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns every name the definition table answers to, aliases
// included, sorted.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Resolver) collect(root *Node) {
	if inputs, ok := root.Field("inputs"); ok {
		r.eachEntry(inputs, "inputs", func(key string, entry *Node) {
			name := "inputs." + key
			var decl declaration
			r.decode(entry, &decl, name)
			r.define(NewDefinition(name, decl.Default, typeTag(decl.Type), r.opts...), name)
		})
	}
	if nodes, ok := root.Field("nodes"); ok {
		r.eachEntry(nodes, "nodes", func(key string, entry *Node) {
			name := "nodes." + key + ".output"
			var decl nodeDeclaration
			r.decode(entry, &decl, name)
			out := decl.Outputs
			if out == nil {
				out = &declaration{}
			}
			// Both names share one definition.
			r.define(NewDefinition(name, out.Default, typeTag(out.Type), r.opts...), name, key+".output")
		})
	}
}

func (r *Resolver) eachEntry(section *Node, path string, fn func(key string, entry *Node)) {
	if section.Kind != MappingNode {
		if section.Kind == ScalarNode && section.Value == nil {
			return
		}
		r.log.Warn("section is not a mapping, no variables defined",
			zap.String("path", path),
			zap.Stringer("kind", section.Kind))
		metrics.Diagnostics.WithLabelValues(metrics.DiagMalformedEntry).Inc()
		return
	}
	for _, key := range section.Keys {
		fn(key, section.Fields[key])
	}
}

func (r *Resolver) decode(entry *Node, target any, name string) {
	if err := mapstructure.Decode(toNative(entry, r.registry, false), target); err != nil {
		r.log.Warn("malformed variable declaration, using no type and no default",
			zap.String("variable", name),
			zap.Error(err))
		metrics.Diagnostics.WithLabelValues(metrics.DiagMalformedEntry).Inc()
	}
}

func (r *Resolver) define(d *Definition, names ...string) {
	r.order = append(r.order, d)
	for _, name := range names {
		r.definitions[name] = d
	}
}

func typeTag(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		// A declared but blank type is an unknown tag, not a missing one.
		if strings.TrimSpace(t) == "" {
			return strconv.Quote(t)
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}

// owner finds the definition whose name is the longest dotted prefix of
// name. Names need at least two segments to match.
func (r *Resolver) owner(name string) (*Definition, bool) {
	key := name
	for strings.Contains(key, ".") {
		if d, ok := r.definitions[key]; ok {
			return d, true
		}
		key = key[:strings.LastIndexByte(key, '.')]
	}
	return nil, false
}

func (r *Resolver) link(n *Node, path string) {
	switch n.Kind {
	case MappingNode:
		for _, k := range n.Keys {
			r.linkChild(n.Fields[k], joinPath(path, k))
		}
	case SequenceNode:
		for i, item := range n.Items {
			r.linkChild(item, joinPath(path, strconv.Itoa(i)))
		}
	}
}

func (r *Resolver) linkChild(n *Node, path string) {
	if n.Kind == ScalarNode {
		r.linkScalar(n, path)
		return
	}
	r.link(n, path)
}

// linkScalar turns a placeholder scalar into a reference node in place.
func (r *Resolver) linkScalar(n *Node, path string) {
	raw, ok := n.Value.(string)
	if !ok {
		return
	}
	name, ok := ParsePlaceholder(raw)
	if !ok {
		return
	}

	def, found := r.owner(name)
	kind := metrics.LinkUndefined
	if !found {
		r.log.Warn("found undefined variable reference",
			zap.String("reference", name),
			zap.String("path", path))
		metrics.Diagnostics.WithLabelValues(metrics.DiagUndefinedVariable).Inc()
	} else {
		if !strings.HasPrefix(name, def.Name()) && strings.HasPrefix("nodes."+name, def.Name()) {
			name = "nodes." + name
		}
		kind = metrics.LinkNested
		if name == def.Name() {
			kind = metrics.LinkDirect
		}
	}

	id, ref, created := r.registry.Intern(name)
	if created {
		if found {
			def.AddReference(ref)
		} else {
			ref.SetValue(raw)
		}
	}

	n.Kind = ReferenceNode
	n.Value = name
	n.Ref = id
	metrics.ReferencesLinked.WithLabelValues(kind).Inc()
}

// ParsePlaceholder returns the trimmed interior of a string that is exactly
// ${...}.
func ParsePlaceholder(s string) (string, bool) {
	if len(s) < 3 || !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	return strings.TrimSpace(s[2 : len(s)-1]), true
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
