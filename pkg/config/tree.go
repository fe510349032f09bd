package config

import (
	"strconv"

	"github.com/ajitpratap0/hablo/pkg/errors"
)

// Tree is a view over a configuration node. Sub-trees returned by Get share
// nodes with their parent, so changes through one are visible in the other.
type Tree struct {
	node   *Node
	parent *Tree
	refs   *Registry
}

// NewTree wraps n without a resolver. Reference nodes render as their
// placeholder and resolve to nil.
func NewTree(n *Node) *Tree {
	if n == nil {
		n = NewMapping()
	}
	return &Tree{node: n}
}

// Node returns the underlying node.
func (t *Tree) Node() *Node { return t.node }

// Parent returns the tree this one was obtained from, or nil at the root.
func (t *Tree) Parent() *Tree { return t.parent }

// Get navigates a dotted path. Mappings and sequences come back as *Tree;
// scalars as their value; references as their current value.
func (t *Tree) Get(path string) (any, error) {
	n, err := navigate(t.node, path)
	if err != nil {
		return nil, err
	}
	return t.wrap(n), nil
}

// Sub is Get for callers that need a container.
func (t *Tree) Sub(path string) (*Tree, error) {
	n, err := navigate(t.node, path)
	if err != nil {
		return nil, err
	}
	if !n.IsContainer() {
		return nil, errors.Newf(errors.ErrorTypeValidation, "the key %q holds a %s, not a mapping or sequence", path, n.Kind).
			WithDetail("path", path)
	}
	return t.child(n), nil
}

// Lookup navigates a dotted path and returns the raw node.
func (t *Tree) Lookup(path string) (*Node, error) {
	return navigate(t.node, path)
}

// PathExists reports whether path navigates to a node.
func (t *Tree) PathExists(path string) bool {
	_, err := navigate(t.node, path)
	return err == nil
}

// Index steps a single key or sequence index, without splitting on dots.
func (t *Tree) Index(key string) (any, error) {
	n, ok := t.node.Child(key)
	if !ok {
		return nil, keyNotFound(key, []string{key}, 0)
	}
	return t.wrap(n), nil
}

// Keys lists mapping keys in insertion order, or sequence indices 0..n-1.
// Any other node fails with NotIterable.
func (t *Tree) Keys() ([]string, error) {
	switch t.node.Kind {
	case MappingNode:
		out := make([]string, len(t.node.Keys))
		copy(out, t.node.Keys)
		return out, nil
	case SequenceNode:
		out := make([]string, len(t.node.Items))
		for i := range t.node.Items {
			out[i] = strconv.Itoa(i)
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeNotIterable, "cannot iterate a %s node", t.node.Kind).
			WithDetail("kind", t.node.Kind.String())
	}
}

// Len is the number of keys or items.
func (t *Tree) Len() int { return t.node.Len() }

// DumpNative rebuilds the tree as plain maps, slices and scalars. With
// resolve set references become their current value; otherwise they become
// the literal ${name} text.
func (t *Tree) DumpNative(resolve bool) any {
	return toNative(t.node, t.refs, resolve)
}

// Native is DumpNative(true).
func (t *Tree) Native() any {
	return t.DumpNative(true)
}

// Dump serializes the tree. raw keeps ${name} placeholders; otherwise
// references are replaced by their values.
func (t *Tree) Dump(format Format, raw bool) (string, error) {
	return serialize(t.node, t.refs, format, !raw)
}

// Reference returns the live reference at path, if the node there is one.
func (t *Tree) Reference(path string) (*Reference, bool) {
	n, err := navigate(t.node, path)
	if err != nil || n.Kind != ReferenceNode {
		return nil, false
	}
	ref := t.refs.At(n.Ref)
	return ref, ref != nil
}

func (t *Tree) wrap(n *Node) any {
	switch n.Kind {
	case MappingNode, SequenceNode:
		return t.child(n)
	case ReferenceNode:
		if ref := t.refs.At(n.Ref); ref != nil {
			return ref.Value()
		}
		return nil
	default:
		return n.Value
	}
}

func (t *Tree) child(n *Node) *Tree {
	return &Tree{node: n, parent: t, refs: t.refs}
}
