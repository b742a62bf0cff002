package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrohub/ledger/pkg/ledger"
)

// runCLI invokes Run the way main does, capturing output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	code := Run(append([]string{"hydrohub"}, args...), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

// useTempLedger points the CLI at a throwaway sqlite database.
func useTempLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	t.Setenv("LEDGER_DRIVER", "sqlite")
	t.Setenv("LEDGER_DSN", path)
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("HYDROHUB_PROFILE", "")
	return path
}

func TestRunUsageAndHelp(t *testing.T) {
	useTempLedger(t)

	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Commands:")

	code, _, stderr = runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command")
}

func TestSeedThenVerify(t *testing.T) {
	useTempLedger(t)

	code, stdout, stderr := runCLI(t, "seed", "-days", "2")
	require.Equal(t, 0, code, "seed failed: %s", stderr)
	assert.Contains(t, stdout, "Seeded 8 entries")

	code, stdout, stderr = runCLI(t, "verify")
	require.Equal(t, 0, code, "verify failed: %s", stderr)
	assert.Contains(t, stdout, "OK: chain verified (8 entries checked)")
}

func TestVerifyEmptyLedgerIsOK(t *testing.T) {
	useTempLedger(t)

	code, stdout, _ := runCLI(t, "verify")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "OK")
}

func TestVerifyPartialWithoutAnchorFails(t *testing.T) {
	useTempLedger(t)

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, "verify", "-from", "2")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "no_anchor")
}

func TestVerifyJSONOutput(t *testing.T) {
	useTempLedger(t)

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, "verify", "-json")
	require.Equal(t, 0, code)

	var report ledger.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.OK)
	assert.Equal(t, 4, report.CheckedCount)
}

func TestExportBundleRoundTrip(t *testing.T) {
	useTempLedger(t)
	bundlePath := filepath.Join(t.TempDir(), "bundle.json")

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)

	code, stdout, stderr := runCLI(t, "export", "-out", bundlePath)
	require.Equal(t, 0, code, "export failed: %s", stderr)
	assert.Contains(t, stdout, "Bundle written")

	code, stdout, _ = runCLI(t, "verify", "-bundle", bundlePath)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "OK: chain verified (4 entries checked)")
}

func TestVerifyTamperedBundleExitsOne(t *testing.T) {
	useTempLedger(t)
	bundlePath := filepath.Join(t.TempDir(), "bundle.json")

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)
	code, _, _ = runCLI(t, "export", "-out", bundlePath)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	var bundle ledger.Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	bundle.Entries[1].Payload = []byte(`{"forged":true}`)
	data, err = json.Marshal(&bundle)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bundlePath, data, 0o644))

	code, stdout, _ := runCLI(t, "verify", "-bundle", bundlePath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "hash_mismatch at sequence 1")
}

func TestVerifyMalformedBundleExitsTwo(t *testing.T) {
	useTempLedger(t)
	bundlePath := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(bundlePath, []byte(`{"version":"1","entries":[]}`), 0o644))

	code, _, stderr := runCLI(t, "verify", "-bundle", bundlePath)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error:")
}

func TestExportPackRoundTrip(t *testing.T) {
	useTempLedger(t)
	packPath := filepath.Join(t.TempDir(), "proof.zip")

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)

	code, stdout, stderr := runCLI(t, "export", "-pack", packPath)
	require.Equal(t, 0, code, "export failed: %s", stderr)
	assert.Contains(t, stdout, "Proof pack written")

	code, stdout, _ = runCLI(t, "verify", "-pack", packPath)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "OK: chain verified")
}

func TestExportEmptyLedgerFails(t *testing.T) {
	useTempLedger(t)

	code, _, stderr := runCLI(t, "export")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "nothing to export")
}

func TestVerifyBundleAndPackAreExclusive(t *testing.T) {
	useTempLedger(t)

	code, _, stderr := runCLI(t, "verify", "-bundle", "a.json", "-pack", "b.zip")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "mutually exclusive")
}

func TestStats(t *testing.T) {
	useTempLedger(t)

	code, _, _ := runCLI(t, "seed")
	require.Equal(t, 0, code)

	code, stdout, stderr := runCLI(t, "stats")
	require.Equal(t, 0, code, "stats failed: %s", stderr)
	assert.Contains(t, stdout, "HydroHub Cantilan")
	assert.Contains(t, stdout, "Entries: 4")
	assert.Contains(t, stdout, "Gallons sold: 8")

	code, stdout, _ = runCLI(t, "stats", "-json")
	require.Equal(t, 0, code)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, float64(4), out["entry_count"])
	assert.Equal(t, float64(20000), out["gross_centavos"])
}
