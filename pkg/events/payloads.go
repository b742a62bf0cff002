// Package events defines the producer side of the ledger contract: typed
// business event payloads, their canonical encoding, and the schema guard the
// ledger service applies at append time. Producers never touch the store.
package events

// Payment types accepted at the counter.
const (
	PaymentCash         = "Cash"
	PaymentGCash        = "GCash"
	PaymentPayMaya      = "PayMaya"
	PaymentBankTransfer = "Bank Transfer"
	PaymentOnAccount    = "On-account"
)

// Inventory change types.
const (
	ChangeRestock    = "restock"
	ChangeConsume    = "consume"
	ChangeStockCount = "stock_count"
	ChangeDamage     = "damage"
)

// Money is carried as integer centavos throughout. Floats never enter the
// hash preimage: their formatting is the one place canonical JSON cannot
// save a careless producer from itself.

// Sale records one water refill sale.
type Sale struct {
	CustomerName      string `json:"customer_name,omitempty"`
	Gallons           int64  `json:"gallons"`
	UnitPriceCentavos int64  `json:"unit_price_centavos"`
	TotalCentavos     int64  `json:"total_centavos"`
	PaymentType       string `json:"payment_type"`
	StaffID           string `json:"staff_id,omitempty"`
}

// Expense records an operating expense.
type Expense struct {
	Category       string `json:"category"`
	AmountCentavos int64  `json:"amount_centavos"`
	Vendor         string `json:"vendor,omitempty"`
	Note           string `json:"note,omitempty"`
	StaffID        string `json:"staff_id,omitempty"`
}

// InventoryAdjustment records a stock level change.
type InventoryAdjustment struct {
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name,omitempty"`
	ChangeType    string `json:"change_type"`
	QuantityDelta int64  `json:"quantity_delta"`
	StaffID       string `json:"staff_id,omitempty"`
}

// Correction references an earlier entry by identifier. The ledger never
// edits history; a correction is a new entry pointing at the one it amends.
type Correction struct {
	CorrectsEntryID  string `json:"corrects_entry_id"`
	CorrectsSequence uint64 `json:"corrects_sequence"`
	Reason           string `json:"reason"`
	StaffID          string `json:"staff_id,omitempty"`
}

// Checkpoint re-anchors verification after an archival trim. ThroughHash is
// the entry hash of the last entry retired by the trim.
type Checkpoint struct {
	ThroughSequence uint64 `json:"through_sequence"`
	ThroughHash     string `json:"through_hash"`
}
