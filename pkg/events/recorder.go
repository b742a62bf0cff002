package events

import (
	"context"

	"github.com/hydrohub/ledger/pkg/canonical"
	"github.com/hydrohub/ledger/pkg/ledger"
)

// Recorder is the producer-facing front door: it serializes typed events into
// canonical payloads and appends them through the ledger service.
type Recorder struct {
	svc *ledger.Service
}

// NewRecorder creates a Recorder over svc.
func NewRecorder(svc *ledger.Service) *Recorder {
	return &Recorder{svc: svc}
}

func (r *Recorder) record(ctx context.Context, kind ledger.Kind, payload any) (*ledger.Entry, error) {
	canon, err := canonical.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return r.svc.Append(ctx, kind, canon)
}

// RecordSale appends a sale event.
func (r *Recorder) RecordSale(ctx context.Context, sale Sale) (*ledger.Entry, error) {
	return r.record(ctx, ledger.KindSale, sale)
}

// RecordExpense appends an expense event.
func (r *Recorder) RecordExpense(ctx context.Context, exp Expense) (*ledger.Entry, error) {
	return r.record(ctx, ledger.KindExpense, exp)
}

// RecordInventoryAdjustment appends a stock change event.
func (r *Recorder) RecordInventoryAdjustment(ctx context.Context, adj InventoryAdjustment) (*ledger.Entry, error) {
	return r.record(ctx, ledger.KindInventoryAdjustment, adj)
}

// RecordCorrection appends a correction referencing an earlier entry.
func (r *Recorder) RecordCorrection(ctx context.Context, c Correction) (*ledger.Entry, error) {
	return r.record(ctx, ledger.KindCorrection, c)
}
