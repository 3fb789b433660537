// Package main provides the entry point for the remedy CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/remedy/internal/cli"
)

// Build information set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%Y-%m-%d)"
//
//nolint:gochecknoglobals // ldflags targets must be package-level vars
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx := context.Background()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
