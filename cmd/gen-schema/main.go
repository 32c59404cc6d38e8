// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Command gen-schema generates the seed file JSON Schema.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schoolhub/schoolhub/internal/schema"
	"github.com/schoolhub/schoolhub/internal/seed"
)

func main() {
	out := flag.String("out", "schemas", "output directory")
	flag.Parse()

	if err := generate(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generate(dir string) error {
	data, err := schema.Generate(&seed.File{}, seed.SchemaName, "SchoolHub seed file")
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}

	outPath := filepath.Join(dir, seed.SchemaName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Printf("Generated %s\n", outPath)
	return nil
}
