package orchestrator

import (
	"fmt"

	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
)

// Top-level sections a flow document must declare.
const (
	SectionInputs  = "inputs"
	SectionNodes   = "nodes"
	SectionOutputs = "outputs"
)

// FlowPlanner lists the entries of a flow document's inputs, nodes and
// outputs sections. It does not execute anything.
type FlowPlanner struct {
	inputs    []string
	nodes     []string
	outputs   []string
	nodeTypes map[string]string
}

// NewFlowPlanner reads the three sections from tree. Each must exist and
// hold at least one entry. When handlers is not nil every node declaring a
// type must have a registered handler.
func NewFlowPlanner(tree *config.Tree, handlers *HandlerRegistry) (*FlowPlanner, error) {
	p := &FlowPlanner{nodeTypes: make(map[string]string)}

	var err error
	if p.inputs, err = sectionEntries(tree, SectionInputs); err != nil {
		return nil, err
	}
	if p.outputs, err = sectionEntries(tree, SectionOutputs); err != nil {
		return nil, err
	}
	if p.nodes, err = sectionEntries(tree, SectionNodes); err != nil {
		return nil, err
	}

	for _, name := range p.nodes {
		v, err := tree.Get(SectionNodes + "." + name + ".type")
		if err != nil {
			continue
		}
		typeName := NormalizeTypeName(fmt.Sprint(v))
		p.nodeTypes[name] = typeName
		if handlers != nil && !handlers.Has(typeName) {
			return nil, errors.Newf(errors.ErrorTypeConfig, "no handler registered for node type %s", typeName).
				WithDetail("node", name).
				WithDetail("type", typeName)
		}
	}
	return p, nil
}

func sectionEntries(tree *config.Tree, section string) ([]string, error) {
	sub, err := tree.Sub(section)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, fmt.Sprintf("no %s found in configuration", section)).
			WithDetail("section", section)
	}
	keys, err := sub.Keys()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, fmt.Sprintf("no %s found in configuration", section)).
			WithDetail("section", section)
	}
	if len(keys) == 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "no %s found in configuration", section).
			WithDetail("section", section)
	}
	return keys, nil
}

// Inputs returns input names in document order.
func (p *FlowPlanner) Inputs() []string { return append([]string(nil), p.inputs...) }

// Nodes returns node names in document order.
func (p *FlowPlanner) Nodes() []string { return append([]string(nil), p.nodes...) }

// Outputs returns output names, or indices for a sequence, in document order.
func (p *FlowPlanner) Outputs() []string { return append([]string(nil), p.outputs...) }

// NodeType returns the normalized type a node declares.
func (p *FlowPlanner) NodeType(node string) (string, bool) {
	t, ok := p.nodeTypes[node]
	return t, ok
}
