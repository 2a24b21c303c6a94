// Package bootstrap assembles an SPL module configured for the ingest
// CLI.
package bootstrap

import (
	"fmt"
	"strings"

	spl "github.com/goliatone/go-spl"
	"github.com/goliatone/go-spl/internal/document"
	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// Options captures configuration for the ingest CLI bootstrap.
type Options struct {
	Driver         string
	DSN            string
	LogLevel       string
	LogProvider    string
	Media          bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the SPL module and the configured ingest service/logger.
type Module struct {
	Module  *spl.Module
	Service document.Service
	Logger  interfaces.Logger
}

// BuildModule constructs an SPL module configured for document ingest.
func BuildModule(opts Options) (*Module, error) {
	cfg := spl.DefaultConfig()
	cfg.Features.Documents = true
	cfg.Features.Media = opts.Media

	if driver := strings.TrimSpace(opts.Driver); driver != "" {
		cfg.Storage.Driver = driver
	}
	cfg.Storage.DSN = strings.TrimSpace(opts.DSN)

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if provider := strings.TrimSpace(opts.LogProvider); provider != "" {
		cfg.Logging.Provider = provider
	}

	splOpts := []spl.Option{}
	if opts.LoggerProvider != nil {
		splOpts = append(splOpts, spl.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := spl.New(cfg, splOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise spl module: %w", err)
	}

	service := module.Documents()
	if service == nil {
		module.Close()
		return nil, fmt.Errorf("document service not configured; ensure Features.Documents is enabled")
	}

	logger := logging.DocumentLogger(module.Container().LoggerProvider())

	return &Module{
		Module:  module,
		Service: service,
		Logger:  logger,
	}, nil
}
