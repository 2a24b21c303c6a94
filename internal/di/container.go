// Package di wires the SPL module: storage, logging, repositories, and
// services, with in-memory fallbacks when no database is configured.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/internal/document"
	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/internal/logging/console"
	"github.com/goliatone/go-spl/internal/logging/gologger"
	"github.com/goliatone/go-spl/internal/media"
	"github.com/goliatone/go-spl/internal/runtimeconfig"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	config runtimeconfig.Config

	db      *bun.DB
	ownedDB bool

	loggerProvider interfaces.LoggerProvider
	mediaResolver  interfaces.MediaResolver
	nextID         func() uuid.UUID
	clock          func() time.Time

	contentRepos  content.Repositories
	documentRepos document.Repositories
	mediaRepo     media.MediaReferenceRepository

	contentSvc  content.Service
	documentSvc document.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithDB injects an externally managed database. The container will not
// close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithMediaResolver overrides the default recording resolver.
func WithMediaResolver(resolver interfaces.MediaResolver) Option {
	return func(c *Container) {
		c.mediaResolver = resolver
	}
}

// WithIDGenerator overrides record id generation across every service.
func WithIDGenerator(next func() uuid.UUID) Option {
	return func(c *Container) {
		c.nextID = next
	}
}

// WithClock overrides the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.clock = now
	}
}

// NewContainer validates the configuration and wires every dependency.
// Setup problems (bad config, unreachable storage) fail construction.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: cfg,
		nextID: uuid.New,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(cfg.Logging, c.clock)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig, clock func() time.Time) (interfaces.LoggerProvider, error) {
	switch normalized(cfg.Provider) {
	case "", "console":
		minLevel := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{
			TimeFunc: clock,
			MinLevel: &minLevel,
		}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	case "noop":
		return noopProvider{}, nil
	default:
		return nil, fmt.Errorf("di: unsupported logging provider %q", cfg.Provider)
	}
}

func (c *Container) configureStorage() error {
	if c.db != nil {
		return store.CreateTables(context.Background(), c.db)
	}
	if normalized(c.config.Storage.Driver) != "sqlite" {
		return nil
	}

	sqldb, err := sql.Open("sqlite3", c.config.Storage.DSN)
	if err != nil {
		return fmt.Errorf("di: open sqlite: %w", err)
	}
	// A single connection keeps every query on the same in-memory
	// database when the DSN is :memory:.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := store.CreateTables(context.Background(), db); err != nil {
		db.Close()
		return err
	}
	c.db = db
	c.ownedDB = true
	return nil
}

func (c *Container) configureRepositories() {
	if c.db != nil {
		c.contentRepos = content.NewBunRepositories(c.db)
		c.documentRepos = document.NewBunRepositories(c.db)
		c.mediaRepo = media.NewBunRepository(c.db)
		return
	}
	c.contentRepos = content.NewMemoryRepositories()
	c.documentRepos = document.NewMemoryRepositories()
	c.mediaRepo = media.NewMemoryRepository()
}

func (c *Container) configureServices() error {
	if c.mediaResolver == nil {
		if c.config.Features.Media {
			resolver, err := media.NewResolver(c.mediaRepo,
				media.WithLogger(logging.MediaLogger(c.loggerProvider)),
				media.WithIDGenerator(c.nextID),
			)
			if err != nil {
				return err
			}
			c.mediaResolver = resolver
		} else {
			c.mediaResolver = media.NoopResolver{}
		}
	}

	contentSvc, err := content.NewService(c.contentRepos,
		content.WithLogger(logging.ContentLogger(c.loggerProvider)),
		content.WithMediaResolver(c.mediaResolver),
		content.WithIDGenerator(c.nextID),
	)
	if err != nil {
		return err
	}
	c.contentSvc = contentSvc

	if c.config.Features.Documents {
		documentSvc, err := document.NewService(c.documentRepos, contentSvc,
			document.WithLogger(logging.DocumentLogger(c.loggerProvider)),
			document.WithIDGenerator(c.nextID),
		)
		if err != nil {
			return err
		}
		c.documentSvc = documentSvc
	}
	return nil
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c.ownedDB && c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Config returns the validated configuration.
func (c *Container) Config() runtimeconfig.Config { return c.config }

// DB returns the wired database, nil when running in memory.
func (c *Container) DB() *bun.DB { return c.db }

// LoggerProvider returns the wired logging provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// MediaResolver returns the wired media collaborator.
func (c *Container) MediaResolver() interfaces.MediaResolver { return c.mediaResolver }

// ContentService returns the content resolution service.
func (c *Container) ContentService() content.Service { return c.contentSvc }

// DocumentService returns the ingest service, nil when the documents
// feature is disabled.
func (c *Container) DocumentService() document.Service { return c.documentSvc }

// ContentRepositories exposes the content storage set.
func (c *Container) ContentRepositories() content.Repositories { return c.contentRepos }

// DocumentRepositories exposes the document storage set.
func (c *Container) DocumentRepositories() document.Repositories { return c.documentRepos }

// MediaRepository exposes the media reference store.
func (c *Container) MediaRepository() media.MediaReferenceRepository { return c.mediaRepo }

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func normalized(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
