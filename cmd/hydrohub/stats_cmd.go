package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/hydrohub/ledger/pkg/config"
	"github.com/hydrohub/ledger/pkg/reports"
)

// runStatsCmd implements `hydrohub stats`.
func runStatsCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("stats", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var jsonOutput bool
	cmd.BoolVar(&jsonOutput, "json", false, "Emit stats as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	cfg := config.Load()
	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	svc, st, err := openService(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = st.Close() }()

	summary, err := reports.SummarizeAll(ctx, svc)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	tail, err := svc.Tail(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if jsonOutput {
		out := map[string]any{
			"business":         profile.Name,
			"entry_count":      summary.EntryCount,
			"counts_by_kind":   summary.CountsByKind,
			"gross_centavos":   summary.GrossCentavos,
			"expense_centavos": summary.ExpenseCentavos,
			"net_centavos":     summary.NetCentavos,
			"gallons_sold":     summary.GallonsSold,
		}
		if tail != nil {
			out["head_hash"] = tail.EntryHash
			out["last_timestamp"] = tail.Timestamp
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
		return 0
	}

	_, _ = fmt.Fprintf(stdout, "%s — ledger statistics\n", profile.Name)
	_, _ = fmt.Fprintf(stdout, "Entries: %d\n", summary.EntryCount)
	for kind, n := range summary.CountsByKind {
		_, _ = fmt.Fprintf(stdout, "  %-22s %d\n", kind, n)
	}
	_, _ = fmt.Fprintf(stdout, "Gross sales:  %s%d.%02d\n", profile.CurrencySymbol, summary.GrossCentavos/100, summary.GrossCentavos%100)
	_, _ = fmt.Fprintf(stdout, "Expenses:     %s%d.%02d\n", profile.CurrencySymbol, summary.ExpenseCentavos/100, summary.ExpenseCentavos%100)
	_, _ = fmt.Fprintf(stdout, "Net:          %s%d.%02d\n", profile.CurrencySymbol, summary.NetCentavos/100, summary.NetCentavos%100)
	_, _ = fmt.Fprintf(stdout, "Gallons sold: %d\n", summary.GallonsSold)
	if tail != nil {
		_, _ = fmt.Fprintf(stdout, "Head hash:    %s\n", tail.EntryHash)
		_, _ = fmt.Fprintf(stdout, "Last entry:   %s\n", tail.Timestamp.Format(time.RFC3339))
	}
	return 0
}
