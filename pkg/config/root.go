package config

import (
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hablo/pkg/metrics"
)

// Root is a reloadable configuration tree that owns its resolver. The
// embedded Tree is replaced wholesale on every successful Reload.
type Root struct {
	*Tree

	source   Source
	resolver *Resolver
	opts     []Option
	log      *zap.Logger
}

// NewRoot loads src once and resolves its variables.
func NewRoot(src Source, opts ...Option) (*Root, error) {
	o := buildOptions(opts)
	r := &Root{
		source: src,
		opts:   opts,
		log:    o.log,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromFile loads a .json, .yaml or .yml file, optionally compressed with a
// trailing .gz, .zst or .lz4.
func FromFile(path string, opts ...Option) (*Root, error) {
	return NewRoot(NewFileSource(path), opts...)
}

// FromJSON loads a JSON stream. The stream is rewound on every reload.
func FromJSON(r io.ReadSeeker, opts ...Option) (*Root, error) {
	return NewRoot(NewStreamSource(r, FormatJSON), opts...)
}

// FromYAML loads a YAML stream. The stream is rewound on every reload.
func FromYAML(r io.ReadSeeker, opts ...Option) (*Root, error) {
	return NewRoot(NewStreamSource(r, FormatYAML), opts...)
}

// Reload reads the source again and rebuilds the tree, the definitions and
// the references from scratch. On failure the previous tree stays active.
func (r *Root) Reload() error {
	timer := metrics.NewTimer("reload")
	n, err := r.source.Load()
	metrics.ObserveReload(string(r.source.Format()), err, timer.Stop())
	if err != nil {
		r.log.Warn("configuration reload failed",
			zap.Stringer("source", r.source),
			zap.Error(err))
		return err
	}
	r.install(n)
	r.log.Debug("configuration loaded",
		zap.Stringer("source", r.source),
		zap.Int("definitions", len(r.resolver.Definitions())),
		zap.Int("references", r.resolver.Registry().Len()))
	return nil
}

func (r *Root) install(n *Node) {
	resolver := NewResolver(r.opts...)
	resolver.Resolve(n)
	resolver.ResetVariables()

	r.resolver = resolver
	r.Tree = &Tree{node: n, refs: resolver.Registry()}
}

// Resolver returns the resolver of the current tree.
func (r *Root) Resolver() *Resolver { return r.resolver }

// Source returns where the tree is loaded from.
func (r *Root) Source() Source { return r.source }
