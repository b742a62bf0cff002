package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hydrohub/ledger/pkg/config"
	"github.com/hydrohub/ledger/pkg/events"
)

// runSeedCmd implements `hydrohub seed`: a handful of representative business
// events for demos and local development.
func runSeedCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var days int
	cmd.IntVar(&days, "days", 1, "Number of sample business days to generate")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if days < 1 {
		_, _ = fmt.Fprintln(stderr, "Error: -days must be at least 1")
		return 2
	}

	ctx := context.Background()
	svc, st, err := openService(config.Load())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = st.Close() }()

	rec := events.NewRecorder(svc)
	appended := 0

	for day := 0; day < days; day++ {
		samples := []func() error{
			func() error {
				_, err := rec.RecordSale(ctx, events.Sale{
					CustomerName:      "Walk-in",
					Gallons:           2,
					UnitPriceCentavos: 2500,
					TotalCentavos:     5000,
					PaymentType:       events.PaymentCash,
					StaffID:           "staff-1",
				})
				return err
			},
			func() error {
				_, err := rec.RecordSale(ctx, events.Sale{
					CustomerName:      "Reyes Sari-sari Store",
					Gallons:           6,
					UnitPriceCentavos: 2500,
					TotalCentavos:     15000,
					PaymentType:       events.PaymentGCash,
					StaffID:           "staff-2",
				})
				return err
			},
			func() error {
				_, err := rec.RecordExpense(ctx, events.Expense{
					Category:       "Electricity",
					AmountCentavos: 120000,
					Vendor:         "SURSECO",
					StaffID:        "staff-1",
				})
				return err
			},
			func() error {
				_, err := rec.RecordInventoryAdjustment(ctx, events.InventoryAdjustment{
					ItemID:        "item-caps",
					ItemName:      "Bottle caps",
					ChangeType:    events.ChangeRestock,
					QuantityDelta: 200,
					StaffID:       "staff-2",
				})
				return err
			},
		}
		for _, appendSample := range samples {
			if err := appendSample(); err != nil {
				_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
				return 2
			}
			appended++
		}
	}

	_, _ = fmt.Fprintf(stdout, "Seeded %d entries\n", appended)
	return 0
}
