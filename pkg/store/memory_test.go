package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrohub/ledger/pkg/hashchain"
	"github.com/hydrohub/ledger/pkg/ledger"
	"github.com/hydrohub/ledger/pkg/store"
)

// testEntry builds a minimally valid entry at seq linked to prev. The hash is
// real so store round trips can be re-verified.
func testEntry(seq uint64, prevHash string) ledger.Entry {
	ts := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second)
	payload := []byte(fmt.Sprintf(`{"amount_centavos":%d,"category":"Supplies"}`, 100*(seq+1)))
	return ledger.Entry{
		EntryID:   fmt.Sprintf("00000000-0000-4000-8000-%012d", seq),
		Sequence:  seq,
		Timestamp: ts,
		Kind:      ledger.KindExpense,
		Payload:   payload,
		PrevHash:  prevHash,
		EntryHash: hashchain.ComputeHash(seq, ts, string(ledger.KindExpense), payload, prevHash),
	}
}

func fillStore(t *testing.T, s ledger.Store, n int) []ledger.Entry {
	t.Helper()
	ctx := context.Background()
	entries := make([]ledger.Entry, 0, n)
	prev := hashchain.GenesisHash
	for i := 0; i < n; i++ {
		e := testEntry(uint64(i), prev)
		require.NoError(t, s.Append(ctx, e))
		entries = append(entries, e)
		prev = e.EntryHash
	}
	return entries
}

func TestMemoryStoreAppendAndTail(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	tail, err := s.Tail(ctx)
	require.NoError(t, err)
	assert.Nil(t, tail)

	entries := fillStore(t, s, 3)

	tail, err = s.Tail(ctx)
	require.NoError(t, err)
	require.NotNil(t, tail)
	assert.Equal(t, entries[2], *tail)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestMemoryStoreSequenceConflict(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	fillStore(t, s, 2)

	// Re-appending an occupied sequence and skipping ahead both conflict.
	err := s.Append(ctx, testEntry(1, hashchain.GenesisHash))
	assert.ErrorIs(t, err, ledger.ErrSequenceConflict)
	err = s.Append(ctx, testEntry(5, hashchain.GenesisHash))
	assert.ErrorIs(t, err, ledger.ErrSequenceConflict)
}

func TestMemoryStoreReadRange(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	entries := fillStore(t, s, 5)

	got, err := s.ReadRange(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, entries[1:4], got)

	_, err = s.ReadRange(ctx, 3, 1)
	var rErr *ledger.RangeError
	require.ErrorAs(t, err, &rErr)
	assert.Nil(t, rErr.Missing)

	_, err = s.ReadRange(ctx, 3, 9)
	require.ErrorAs(t, err, &rErr)
	require.NotNil(t, rErr.Missing)
	assert.Equal(t, uint64(5), *rErr.Missing)
}

func TestMemoryStoreReadRangeCopies(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	fillStore(t, s, 2)

	got, err := s.ReadRange(ctx, 0, 1)
	require.NoError(t, err)
	got[0].EntryHash = "mutated"

	again, err := s.ReadRange(ctx, 0, 1)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].EntryHash)
}
