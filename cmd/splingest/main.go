package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/beevik/etree"

	"github.com/goliatone/go-spl/cmd/splingest/internal/bootstrap"
	"github.com/goliatone/go-spl/internal/document"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runIngest(os.Args[1:]); err != nil {
		log.Fatalf("splingest: %v", err)
	}
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("splingest", flag.ExitOnError)
	file := fs.String("file", "", "Path to the SPL XML document to ingest")
	driver := fs.String("driver", "sqlite", "Storage driver (sqlite or memory)")
	dsn := fs.String("dsn", "spl.db", "Database DSN for the sqlite driver")
	logLevel := fs.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	logProvider := fs.String("log-provider", "console", "Log provider (console, gologger, noop)")
	media := fs.Bool("media", true, "Record media references for renderMultiMedia placeholders")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(*file); err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	module, err := moduleBuilder(bootstrap.Options{
		Driver:      *driver,
		DSN:         *dsn,
		LogLevel:    *logLevel,
		LogProvider: *logProvider,
		Media:       *media,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	result, err := module.Service.IngestDocument(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", *file, err)
	}

	printResult(os.Stdout, result)

	// Branch errors are part of normal operation: the rest of the
	// document was still ingested.
	for _, ingestErr := range result.Errors {
		module.Logger.Warn("branch skipped", "scope", ingestErr.Scope, "key", ingestErr.Key, "error", ingestErr.Err)
	}
	return nil
}

func printResult(out *os.File, result *document.IngestResult) {
	fmt.Fprintf(out, "document:  %s v%d (created=%v)\n", result.Document.SetID, result.Document.VersionNumber, result.DocumentCreated)
	fmt.Fprintf(out, "header:    organizations=%d authors=%d operations=%d\n", result.Organizations, result.Authors, result.BusinessOperations)
	fmt.Fprintf(out, "sections:  %d\n", result.Sections)
	fmt.Fprintf(out, "products:  products=%d ingredients=%d packaging=%d\n", result.Products, result.Ingredients, result.PackagingItems)
	c := result.Content
	fmt.Fprintf(out, "content:   nodes=%d lists=%d items=%d tables=%d columns=%d rows=%d cells=%d highlights=%d media=%d\n",
		c.ContentNodes, c.ListNodes, c.ListItems, c.TableNodes, c.TableColumns, c.TableRows, c.TableCells, c.Highlights, c.MediaReferences)
	fmt.Fprintf(out, "total:     %d new records, %d branch errors\n", result.Total(), len(result.Errors))
}
