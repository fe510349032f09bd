// Package orchestrator plans flows described by a configuration document.
// It validates that the document declares inputs, nodes and outputs and maps
// node types to handlers; running the flow is left to channels.
package orchestrator

import (
	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
)

// Orchestrator pairs a configuration with the handlers its nodes need.
type Orchestrator struct {
	configuration *config.Root
	handlers      *HandlerRegistry
}

// New creates an orchestrator. handlers may be nil to skip handler checks.
func New(configuration *config.Root, handlers *HandlerRegistry) *Orchestrator {
	return &Orchestrator{configuration: configuration, handlers: handlers}
}

// SetConfiguration replaces the configuration, e.g. after a reload.
func (o *Orchestrator) SetConfiguration(configuration *config.Root) {
	o.configuration = configuration
}

// Configuration returns the current configuration.
func (o *Orchestrator) Configuration() *config.Root { return o.configuration }

// Handlers returns the handler registry, which may be nil.
func (o *Orchestrator) Handlers() *HandlerRegistry { return o.handlers }

// Plan builds a FlowPlanner over the current configuration.
func (o *Orchestrator) Plan() (*FlowPlanner, error) {
	if o.configuration == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "orchestrator has no configuration")
	}
	return NewFlowPlanner(o.configuration.Tree, o.handlers)
}
