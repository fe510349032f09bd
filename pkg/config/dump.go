package config

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hablo/pkg/errors"
	jsonpool "github.com/ajitpratap0/hablo/pkg/json"
)

// Format names a serialization format.
type Format string

const (
	// FormatJSON is compact JSON.
	FormatJSON Format = "json"
	// FormatYAML is block-style YAML with two-space indentation.
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", invalidFormat(s)
	}
}

func invalidFormat(s string) error {
	return errors.Newf(errors.ErrorTypeInvalidFormat, "invalid format %q, use either json or yaml", s).
		WithDetail("format", s)
}

// toNative rebuilds n as plain Go values. References become their current
// value when resolve is set and their placeholder text otherwise.
func toNative(n *Node, refs *Registry, resolve bool) any {
	switch n.Kind {
	case MappingNode:
		m := make(map[string]any, len(n.Keys))
		for _, k := range n.Keys {
			m[k] = toNative(n.Fields[k], refs, resolve)
		}
		return m
	case SequenceNode:
		s := make([]any, len(n.Items))
		for i, item := range n.Items {
			s[i] = toNative(item, refs, resolve)
		}
		return s
	case ReferenceNode:
		if !resolve {
			return placeholder(refName(n))
		}
		if ref := refs.At(n.Ref); ref != nil {
			return ref.Value()
		}
		return nil
	default:
		return n.Value
	}
}

// refName is kept on the node so template output never needs the registry.
func refName(n *Node) string {
	name, _ := n.Value.(string)
	return name
}

func serialize(n *Node, refs *Registry, format Format, resolve bool) (string, error) {
	switch format {
	case FormatJSON:
		buf := jsonpool.GetBuffer()
		defer jsonpool.PutBuffer(buf)
		if err := writeJSON(buf, n, refs, resolve); err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode JSON")
		}
		return strings.TrimRight(buf.String(), " \t\r\n"), nil
	case FormatYAML:
		doc, err := toYAML(n, refs, resolve)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode YAML")
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode YAML")
		}
		if err := enc.Close(); err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode YAML")
		}
		return strings.TrimRight(buf.String(), " \t\r\n"), nil
	default:
		return "", invalidFormat(string(format))
	}
}

// writeJSON keeps mapping key order, which a plain map would lose.
func writeJSON(buf *bytes.Buffer, n *Node, refs *Registry, resolve bool) error {
	switch n.Kind {
	case MappingNode:
		buf.WriteByte('{')
		for i, k := range n.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := jsonpool.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Fields[k], refs, resolve); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item, refs, resolve); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		data, err := jsonpool.Marshal(toNative(n, refs, resolve))
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
}

func toYAML(n *Node, refs *Registry, resolve bool) (*yaml.Node, error) {
	switch n.Kind {
	case MappingNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.Keys {
			key := &yaml.Node{}
			if err := key.Encode(k); err != nil {
				return nil, err
			}
			val, err := toYAML(n.Fields[k], refs, resolve)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, key, val)
		}
		return out, nil
	case SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			val, err := toYAML(item, refs, resolve)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, val)
		}
		return out, nil
	default:
		out := &yaml.Node{}
		if err := out.Encode(toNative(n, refs, resolve)); err != nil {
			return nil, err
		}
		return out, nil
	}
}
