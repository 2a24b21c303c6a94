package console_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/internal/logging/console"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
}

func TestConsoleLoggerFormatsEntries(t *testing.T) {
	var buf strings.Builder
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
	})

	logger := provider.GetLogger("spl.content")
	logger.Info("section resolved", "created", 7, "section_id", "abc")

	got := buf.String()
	want := "2024-03-01T10:30:00Z INFO section resolved created=7 logger=spl.content section_id=abc\n"
	if got != want {
		t.Fatalf("entry mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestConsoleLoggerHonorsMinLevel(t *testing.T) {
	var buf strings.Builder
	minLevel := console.ParseLevel("warn")
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("spl")
	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	if got := buf.String(); !strings.Contains(got, "WARN kept") || strings.Contains(got, "dropped") {
		t.Fatalf("min level filtering failed: %q", got)
	}
}

func TestConsoleLoggerMergesContextFields(t *testing.T) {
	var buf strings.Builder
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
	})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"set_id": "SET-1"})
	logger := provider.GetLogger("spl.document").WithContext(ctx)
	logger.Info("ingested")

	if got := buf.String(); !strings.Contains(got, "set_id=SET-1") {
		t.Fatalf("context fields missing: %q", got)
	}
}

func TestConsoleLoggerWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf strings.Builder
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
	})

	parent := provider.GetLogger("spl")
	child := logging.WithFields(parent, map[string]any{"child": true})

	parent.Info("parent entry")
	child.Info("child entry")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries got %d", len(lines))
	}
	if strings.Contains(lines[0], "child=true") {
		t.Fatalf("parent logger inherited child fields: %q", lines[0])
	}
	if !strings.Contains(lines[1], "child=true") {
		t.Fatalf("child logger lost its fields: %q", lines[1])
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := console.ParseLevel("bogus"); got != console.LevelInfo {
		t.Fatalf("expected info default got %v", got)
	}
	if got := console.ParseLevel(""); got != console.LevelInfo {
		t.Fatalf("expected info for empty got %v", got)
	}
}
