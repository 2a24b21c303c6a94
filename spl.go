// Package spl reconstructs FDA Structured Product Labeling documents as
// relational records: the document header, the section tree, every
// content block with its list, table, and highlight details, and the
// media placeholders the narrative references. Processing is idempotent;
// re-ingesting a document creates nothing new.
package spl

import (
	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/internal/di"
	"github.com/goliatone/go-spl/internal/document"
)

// Option configures the underlying container.
type Option = di.Option

// Re-exported container options.
var (
	WithDB             = di.WithDB
	WithLoggerProvider = di.WithLoggerProvider
	WithMediaResolver  = di.WithMediaResolver
	WithIDGenerator    = di.WithIDGenerator
	WithClock          = di.WithClock
)

// Module is the embeddable entry point.
type Module struct {
	container *di.Container
}

// New validates the configuration and wires the module.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Content returns the section content resolution service.
func (m *Module) Content() content.Service {
	return m.container.ContentService()
}

// Documents returns the ingest service, nil when the documents feature
// is disabled.
func (m *Module) Documents() document.Service {
	return m.container.DocumentService()
}

// Container exposes the wired dependencies for advanced embedding.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}
