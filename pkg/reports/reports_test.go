package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrohub/ledger/pkg/events"
	"github.com/hydrohub/ledger/pkg/ledger"
	"github.com/hydrohub/ledger/pkg/reports"
	"github.com/hydrohub/ledger/pkg/store"
)

func seedBusinessWeek(t *testing.T) *ledger.Service {
	t.Helper()
	now := time.Date(2026, 7, 6, 7, 0, 0, 0, time.UTC)
	svc := ledger.NewService(store.NewMemoryStore(),
		ledger.WithClock(func() time.Time { return now }))
	rec := events.NewRecorder(svc)
	ctx := context.Background()

	// Day one: two sales and an expense.
	_, err := rec.RecordSale(ctx, events.Sale{Gallons: 2, UnitPriceCentavos: 2500, TotalCentavos: 5000, PaymentType: events.PaymentCash})
	require.NoError(t, err)
	_, err = rec.RecordSale(ctx, events.Sale{Gallons: 6, UnitPriceCentavos: 2500, TotalCentavos: 15000, PaymentType: events.PaymentGCash})
	require.NoError(t, err)
	_, err = rec.RecordExpense(ctx, events.Expense{Category: "Utilities", AmountCentavos: 8000})
	require.NoError(t, err)

	// Day two: one sale and a restock.
	now = now.Add(24 * time.Hour)
	_, err = rec.RecordSale(ctx, events.Sale{Gallons: 4, UnitPriceCentavos: 2500, TotalCentavos: 10000, PaymentType: events.PaymentOnAccount})
	require.NoError(t, err)
	_, err = rec.RecordInventoryAdjustment(ctx, events.InventoryAdjustment{ItemID: "caps-19l", ChangeType: events.ChangeRestock, QuantityDelta: 200})
	require.NoError(t, err)

	return svc
}

func TestSummarizeAll(t *testing.T) {
	svc := seedBusinessWeek(t)

	s, err := reports.SummarizeAll(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, 5, s.EntryCount)
	assert.Equal(t, 3, s.CountsByKind[ledger.KindSale])
	assert.Equal(t, 1, s.CountsByKind[ledger.KindExpense])
	assert.Equal(t, 1, s.CountsByKind[ledger.KindInventoryAdjustment])
	assert.Equal(t, int64(30000), s.GrossCentavos)
	assert.Equal(t, int64(8000), s.ExpenseCentavos)
	assert.Equal(t, int64(22000), s.NetCentavos)
	assert.Equal(t, int64(12), s.GallonsSold)
	assert.Equal(t, time.Date(2026, 7, 6, 7, 0, 0, 0, time.UTC), s.FirstTimestamp)
	assert.Equal(t, time.Date(2026, 7, 7, 7, 0, 0, 0, time.UTC), s.LastTimestamp)
}

func TestSummarizeEmptyLedger(t *testing.T) {
	svc := ledger.NewService(store.NewMemoryStore())

	s, err := reports.SummarizeAll(context.Background(), svc)
	require.NoError(t, err)
	assert.Zero(t, s.EntryCount)
	assert.Zero(t, s.GrossCentavos)
	assert.Empty(t, s.CountsByKind)
}

func TestSummarizePartialRange(t *testing.T) {
	svc := seedBusinessWeek(t)

	// Only the first day's sales.
	s, err := reports.Summarize(context.Background(), svc, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.EntryCount)
	assert.Equal(t, int64(20000), s.GrossCentavos)
	assert.Zero(t, s.ExpenseCentavos)
}

func TestDailyTotals(t *testing.T) {
	svc := seedBusinessWeek(t)

	days, err := reports.DailyTotals(context.Background(), svc, 0, 4)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2026-07-06", days[0].Day)
	assert.Equal(t, int64(20000), days[0].GrossCentavos)
	assert.Equal(t, int64(8000), days[0].ExpenseCentavos)
	assert.Equal(t, 2, days[0].SaleCount)

	assert.Equal(t, "2026-07-07", days[1].Day)
	assert.Equal(t, int64(10000), days[1].GrossCentavos)
	assert.Zero(t, days[1].ExpenseCentavos)
	assert.Equal(t, 1, days[1].SaleCount)
}
