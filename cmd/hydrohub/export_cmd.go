package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hydrohub/ledger/pkg/config"
	"github.com/hydrohub/ledger/pkg/proofpack"
)

// runExportCmd implements `hydrohub export`: a chain segment as bundle JSON
// (for machine verification) or as a proof pack zip (for handing to an
// auditor).
func runExportCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		from     uint64
		to       uint64
		toSet    bool
		outPath  string
		packPath string
	)
	cmd.Uint64Var(&from, "from", 0, "First sequence to export")
	cmd.Uint64Var(&to, "to", 0, "Last sequence to export (defaults to tail)")
	cmd.StringVar(&outPath, "out", "", "Write bundle JSON to this file (default stdout)")
	cmd.StringVar(&packPath, "pack", "", "Write a proof pack zip to this file instead of JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	cmd.Visit(func(f *flag.Flag) {
		if f.Name == "to" {
			toSet = true
		}
	})

	ctx := context.Background()
	svc, st, err := openService(config.Load())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = st.Close() }()

	if !toSet {
		tail, err := svc.Tail(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		if tail == nil {
			_, _ = fmt.Fprintln(stderr, "Error: ledger is empty, nothing to export")
			return 2
		}
		to = tail.Sequence
	}

	bundle, err := svc.ExportRange(ctx, from, to)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if packPath != "" {
		zipBytes, checksum, err := proofpack.Write(bundle)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		if err := os.WriteFile(packPath, zipBytes, 0o644); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintf(stdout, "Proof pack written to %s (sha256 %s)\n", packPath, checksum)
		return 0
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintf(stdout, "Bundle written to %s (%d entries)\n", outPath, len(bundle.Entries))
		return 0
	}
	_, _ = fmt.Fprintln(stdout, string(data))
	return 0
}
