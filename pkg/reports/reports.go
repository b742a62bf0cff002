// Package reports derives business summaries from the ledger. It is a pure
// read-side consumer: it decodes committed payloads and aggregates, never
// appending or mutating.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hydrohub/ledger/pkg/events"
	"github.com/hydrohub/ledger/pkg/ledger"
)

// Summary aggregates a chain segment.
type Summary struct {
	From, To        uint64
	EntryCount      int
	CountsByKind    map[ledger.Kind]int
	GrossCentavos   int64 // sale totals
	ExpenseCentavos int64
	NetCentavos     int64
	GallonsSold     int64
	FirstTimestamp  time.Time
	LastTimestamp   time.Time
}

// DayTotal is one UTC day's revenue and spend.
type DayTotal struct {
	Day             string // YYYY-MM-DD
	GrossCentavos   int64
	ExpenseCentavos int64
	SaleCount       int
}

// Ledger is the read surface reports need.
type Ledger interface {
	ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error)
	Tail(ctx context.Context) (*ledger.Entry, error)
}

// Summarize aggregates entries from through to inclusive.
func Summarize(ctx context.Context, l Ledger, from, to uint64) (*Summary, error) {
	entries, err := l.ReadRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s := &Summary{From: from, To: to, CountsByKind: make(map[ledger.Kind]int)}
	for i := range entries {
		e := &entries[i]
		s.EntryCount++
		s.CountsByKind[e.Kind]++
		if s.FirstTimestamp.IsZero() || e.Timestamp.Before(s.FirstTimestamp) {
			s.FirstTimestamp = e.Timestamp
		}
		if e.Timestamp.After(s.LastTimestamp) {
			s.LastTimestamp = e.Timestamp
		}

		switch e.Kind {
		case ledger.KindSale:
			var sale events.Sale
			if err := json.Unmarshal(e.Payload, &sale); err != nil {
				return nil, fmt.Errorf("reports: corrupt sale payload at sequence %d: %w", e.Sequence, err)
			}
			s.GrossCentavos += sale.TotalCentavos
			s.GallonsSold += sale.Gallons
		case ledger.KindExpense:
			var exp events.Expense
			if err := json.Unmarshal(e.Payload, &exp); err != nil {
				return nil, fmt.Errorf("reports: corrupt expense payload at sequence %d: %w", e.Sequence, err)
			}
			s.ExpenseCentavos += exp.AmountCentavos
		}
	}
	s.NetCentavos = s.GrossCentavos - s.ExpenseCentavos
	return s, nil
}

// SummarizeAll aggregates the whole ledger. An empty ledger yields an empty
// summary.
func SummarizeAll(ctx context.Context, l Ledger) (*Summary, error) {
	tail, err := l.Tail(ctx)
	if err != nil {
		return nil, err
	}
	if tail == nil {
		return &Summary{CountsByKind: make(map[ledger.Kind]int)}, nil
	}
	return Summarize(ctx, l, 0, tail.Sequence)
}

// DailyTotals buckets sales and expenses by UTC calendar day, ascending.
func DailyTotals(ctx context.Context, l Ledger, from, to uint64) ([]DayTotal, error) {
	entries, err := l.ReadRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayTotal)
	for i := range entries {
		e := &entries[i]
		day := e.Timestamp.UTC().Format("2006-01-02")
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{Day: day}
			byDay[day] = dt
		}

		switch e.Kind {
		case ledger.KindSale:
			var sale events.Sale
			if err := json.Unmarshal(e.Payload, &sale); err != nil {
				return nil, fmt.Errorf("reports: corrupt sale payload at sequence %d: %w", e.Sequence, err)
			}
			dt.GrossCentavos += sale.TotalCentavos
			dt.SaleCount++
		case ledger.KindExpense:
			var exp events.Expense
			if err := json.Unmarshal(e.Payload, &exp); err != nil {
				return nil, fmt.Errorf("reports: corrupt expense payload at sequence %d: %w", e.Sequence, err)
			}
			dt.ExpenseCentavos += exp.AmountCentavos
		}
	}

	out := make([]DayTotal, 0, len(byDay))
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
