// Command hydrohub is the thin CLI over the HydroHub ledger core: verify the
// chain, export audit bundles and proof packs, show stats, and seed demo
// data. The web point-of-sale talks to the same service API; this tool exists
// for operators and auditors.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hydrohub/ledger/pkg/config"
	"github.com/hydrohub/ledger/pkg/events"
	"github.com/hydrohub/ledger/pkg/ledger"
	"github.com/hydrohub/ledger/pkg/observability"
	"github.com/hydrohub/ledger/pkg/store"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split from main for testing.
//
// Exit codes across subcommands:
//
//	0 = success / chain verified
//	1 = broken chain detected
//	2 = malformed input or runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	setupLogging(stderr)

	switch args[1] {
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "export":
		return runExportCmd(args[2:], stdout, stderr)
	case "stats":
		return runStatsCmd(args[2:], stdout, stderr)
	case "seed":
		return runSeedCmd(args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command %q\n", args[1])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Usage: hydrohub <command> [flags]

Commands:
  verify   Verify the hash chain (live store, bundle file, or proof pack)
  export   Export a chain segment as a bundle or proof pack
  stats    Show ledger statistics
  seed     Append sample business events (demo/dev)

Environment:
  LEDGER_DRIVER    sqlite | postgres | memory (default sqlite)
  LEDGER_DSN       sqlite path or postgres connection string
  LOG_LEVEL        DEBUG | INFO | WARN | ERROR
  HYDROHUB_PROFILE path to business profile YAML`)
}

func setupLogging(stderr io.Writer) {
	level := slog.LevelInfo
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
}

// openService wires a ledger service from configuration. The caller closes
// the returned store.
func openService(cfg *config.Config) (*ledger.Service, ledger.Store, error) {
	var (
		st  ledger.Store
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		st, err = store.OpenSQLite(cfg.DSN)
	case "postgres":
		var db *sql.DB
		db, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			st, err = store.NewPostgresStore(context.Background(), db)
		}
	case "memory":
		st = store.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	validator, err := events.NewValidator()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	metrics, err := observability.NewMetrics()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	svc := ledger.NewService(st,
		ledger.WithValidator(validator),
		ledger.WithMetrics(metrics),
	)
	return svc, st, nil
}
