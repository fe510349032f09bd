package config

// RefID is a handle into a Registry. Tree positions hold RefIDs instead of
// pointers so one Reference can sit at many positions with a single owner.
type RefID int

// Reference stands in for every placeholder naming the same variable. Its
// value is pushed in by the owning Definition.
type Reference struct {
	name  string
	value any
}

// NewReference returns a detached reference; most callers get references
// from a Registry instead.
func NewReference(name string, value any) *Reference {
	return &Reference{name: name, value: value}
}

// Name returns the dotted variable name.
func (r *Reference) Name() string { return r.name }

// Value returns the current resolved value.
func (r *Reference) Value() any { return r.value }

// SetValue replaces the current value.
func (r *Reference) SetValue(v any) { r.value = v }

// Placeholder renders the template text the reference replaced.
func (r *Reference) Placeholder() string {
	return placeholder(r.name)
}

func placeholder(name string) string {
	return "${" + name + "}"
}

// Registry owns every Reference created while linking one tree and
// deduplicates them by name.
type Registry struct {
	refs   []*Reference
	byName map[string]RefID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]RefID)}
}

// Intern returns the reference registered under name, creating it when
// absent. created reports whether a new reference was made.
func (g *Registry) Intern(name string) (id RefID, ref *Reference, created bool) {
	if id, ok := g.byName[name]; ok {
		return id, g.refs[id], false
	}
	id = RefID(len(g.refs))
	ref = &Reference{name: name}
	g.refs = append(g.refs, ref)
	g.byName[name] = id
	return id, ref, true
}

// At resolves a handle. It returns nil for handles from another registry.
func (g *Registry) At(id RefID) *Reference {
	if g == nil || id < 0 || int(id) >= len(g.refs) {
		return nil
	}
	return g.refs[id]
}

// Lookup finds a reference by name.
func (g *Registry) Lookup(name string) (*Reference, bool) {
	if g == nil {
		return nil, false
	}
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.refs[id], true
}

// All returns references in creation order.
func (g *Registry) All() []*Reference {
	if g == nil {
		return nil
	}
	out := make([]*Reference, len(g.refs))
	copy(out, g.refs)
	return out
}

// Len is the number of distinct references.
func (g *Registry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.refs)
}
