// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glimpse-dev/glimpse/internal/search"
	"github.com/glimpse-dev/glimpse/internal/server"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func main() {
	doc, err := generateOpenAPI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/openapi.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing OpenAPI document: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI document written to %s\n", outPath)
}

// generateOpenAPI registers every route on a throwaway server and returns the
// OpenAPI document huma derives from the handler types.
func generateOpenAPI() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	srv.RegisterServices(stubSearch{})

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// stubSearch is never called during generation.
type stubSearch struct{}

func (stubSearch) Search(context.Context, string, int) []search.Result { return nil }
func (stubSearch) Status() search.Status                               { return search.Status{} }
