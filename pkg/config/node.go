package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Kind identifies which variant a Node holds.
type Kind uint8

const (
	// ScalarNode holds a string, number, bool or nil.
	ScalarNode Kind = iota
	// MappingNode holds ordered, unique keys.
	MappingNode
	// SequenceNode holds ordered items.
	SequenceNode
	// ReferenceNode stands in for a placeholder and points into a Registry.
	ReferenceNode
)

func (k Kind) String() string {
	switch k {
	case ScalarNode:
		return "scalar"
	case MappingNode:
		return "mapping"
	case SequenceNode:
		return "sequence"
	case ReferenceNode:
		return "reference"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is one position in a configuration tree. Only the fields of its Kind
// are meaningful.
type Node struct {
	Kind Kind

	// Value is the scalar payload: string, int, float64, bool or nil.
	Value any

	// Keys keeps mapping keys in insertion order; Fields indexes them.
	Keys   []string
	Fields map[string]*Node

	Items []*Node

	// Ref is the registry handle of a ReferenceNode.
	Ref RefID
}

// Scalar returns a scalar node.
func Scalar(v any) *Node {
	return &Node{Kind: ScalarNode, Value: v}
}

// NewMapping returns an empty mapping node.
func NewMapping() *Node {
	return &Node{Kind: MappingNode, Fields: make(map[string]*Node)}
}

// Sequence returns a sequence node holding items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

// Set stores child under key, keeping the original position if key exists.
func (n *Node) Set(key string, child *Node) {
	if _, ok := n.Fields[key]; !ok {
		n.Keys = append(n.Keys, key)
	}
	if n.Fields == nil {
		n.Fields = make(map[string]*Node)
	}
	n.Fields[key] = child
}

// Field returns the mapping child stored under key.
func (n *Node) Field(key string) (*Node, bool) {
	if n == nil || n.Kind != MappingNode {
		return nil, false
	}
	c, ok := n.Fields[key]
	return c, ok
}

// Child steps one path segment: a key for mappings, an index for sequences.
func (n *Node) Child(segment string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case MappingNode:
		return n.Field(segment)
	case SequenceNode:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= len(n.Items) {
			return nil, false
		}
		return n.Items[i], true
	default:
		return nil, false
	}
}

// Len is the number of keys or items; zero for leaves.
func (n *Node) Len() int {
	switch n.Kind {
	case MappingNode:
		return len(n.Keys)
	case SequenceNode:
		return len(n.Items)
	default:
		return 0
	}
}

// IsContainer reports whether n is a mapping or a sequence.
func (n *Node) IsContainer() bool {
	return n.Kind == MappingNode || n.Kind == SequenceNode
}

// FromNative builds a tree from plain Go values. Map keys are sorted since Go
// maps carry no order.
func FromNative(v any) *Node {
	switch t := v.(type) {
	case *Node:
		return t
	case map[string]any:
		m := NewMapping()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromNative(t[k]))
		}
		return m
	case []any:
		s := Sequence()
		for _, item := range t {
			s.Items = append(s.Items, FromNative(item))
		}
		return s
	case nil, string, bool, int, float64:
		return Scalar(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		m := NewMapping()
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromNative(byKey[k].Interface()))
		}
		return m
	case reflect.Slice, reflect.Array:
		s := Sequence()
		for i := 0; i < rv.Len(); i++ {
			s.Items = append(s.Items, FromNative(rv.Index(i).Interface()))
		}
		return s
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(int(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Scalar(int(rv.Uint()))
	case reflect.Float32:
		return Scalar(rv.Float())
	default:
		return Scalar(v)
	}
}
