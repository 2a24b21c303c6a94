package logging_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

type recordingLogger struct {
	fields map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(r.fields)+len(fields))
	for key, value := range r.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &recordingLogger{fields: merged}
}

type recordingProvider struct {
	names []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return &recordingLogger{}
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &recordingProvider{}
	logger := logging.ContentLogger(provider)

	if len(provider.names) != 1 || provider.names[0] != "spl.content" {
		t.Fatalf("unexpected logger names: %v", provider.names)
	}
	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recording logger, got %T", logger)
	}
	if rec.fields["module"] != "spl.content" {
		t.Fatalf("module field missing: %v", rec.fields)
	}
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := logging.DocumentLogger(nil)
	if logger == nil {
		t.Fatal("expected a usable logger without a provider")
	}
	// Must not panic.
	logger.Info("dropped", "key", "value")
	logger.WithContext(context.Background()).Error("dropped too")
}

func TestContextFieldsMergeAndCopy(t *testing.T) {
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = logging.ContextWithFields(ctx, map[string]any{"b": 2})

	fields := logging.ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("fields not merged: %v", fields)
	}

	fields["a"] = 99
	if again := logging.ContextFields(ctx); again["a"] != 1 {
		t.Fatalf("caller mutation leaked into context: %v", again)
	}
}
