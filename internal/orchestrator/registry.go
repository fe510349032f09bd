package orchestrator

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/config"
	"github.com/ajitpratap0/hablo/pkg/errors"
	"github.com/ajitpratap0/hablo/pkg/logger"
)

// Handler runs one flow node. node is the node's sub-tree with placeholders
// already resolved through the shared resolver.
type Handler func(ctx context.Context, node *config.Tree) (any, error)

// HandlerRegistry maps node type names to handlers. Type names are matched
// case-insensitively after trimming.
type HandlerRegistry struct {
	handlers map[string]Handler
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]Handler),
		logger:   logger.Get().With(zap.String("component", "handler_registry")),
	}
}

// NormalizeTypeName lowercases and trims a node type name.
func NormalizeTypeName(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// Register binds a handler to a node type. Registering the same type twice
// is an error.
func (r *HandlerRegistry) Register(typeName string, h Handler) error {
	name := NormalizeTypeName(typeName)
	if name == "" {
		return errors.New(errors.ErrorTypeValidation, "node type name is empty")
	}
	if h == nil {
		return errors.Newf(errors.ErrorTypeValidation, "handler for node type %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return errors.Newf(errors.ErrorTypeConflict, "node type handler already exists for type: %s", name).
			WithDetail("type", name)
	}

	r.handlers[name] = h
	r.logger.Debug("node type handler registered", zap.String("type", name))
	return nil
}

// Lookup returns the handler for a node type.
func (r *HandlerRegistry) Lookup(typeName string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[NormalizeTypeName(typeName)]
	return h, ok
}

// Has checks if a node type has a handler.
func (r *HandlerRegistry) Has(typeName string) bool {
	_, ok := r.Lookup(typeName)
	return ok
}

// Types returns the registered type names, sorted.
func (r *HandlerRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
