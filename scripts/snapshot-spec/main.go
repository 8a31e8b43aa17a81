// Command snapshot-spec writes the parsed form of an OpenAPI document as JSON,
// which is the option data the api templates are rendered from.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	doctemplate "github.com/goliatone/go-doctemplate"
	"github.com/goliatone/go-doctemplate/pkg/apidoc"
	pkgopenapi "github.com/goliatone/go-doctemplate/pkg/openapi"
)

func main() {
	var (
		documentPath = flag.String("document", "pkg/apidoc/testdata/petstore.yaml", "OpenAPI document path or URL")
		outputPath   = flag.String("output", "pkg/apidoc/testdata/petstore_options.json", "output path for the snapshot")
		deprecated   = flag.Bool("deprecated", true, "include deprecated operations")
	)
	flag.Parse()

	if err := run(context.Background(), *documentPath, *outputPath, *deprecated); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, documentPath, outputPath string, deprecated bool) error {
	src, err := pkgopenapi.SourceFor(documentPath)
	if err != nil {
		return err
	}
	doc, err := doctemplate.NewLoader(pkgopenapi.WithHTTPFallback(0)).Load(ctx, src)
	if err != nil {
		return err
	}
	spec, err := doctemplate.NewParser(pkgopenapi.WithDeprecated(deprecated)).Parse(ctx, doc)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(apidoc.SpecOptions(spec), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := atomic.WriteFile(outputPath, bytes.NewReader(append(payload, '\n'))); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Printf("wrote %d operations to %s\n", len(spec.Operations), outputPath)
	return nil
}
