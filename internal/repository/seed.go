package repository

import (
	"context"
	"fmt"

	"schoolhub-warehouse-api/internal/model"
)

// SeedDemoData loads the demo warehouse dataset into empty repositories.
// Used in development so the dashboard has something to show.
func SeedDemoData(ctx context.Context, items ItemRepository, transactions TransactionRepository) error {
	existing, err := items.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing items: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	demoItems := []model.Item{
		{Name: "Beakers (Set of 5)", SKU: "CHEM-BK-001", Category: "Chemistry", Quantity: 30, Price: 25.99},
		{Name: "Microscope Slides (100-pack)", SKU: "BIO-MS-001", Category: "Biology", Quantity: 20, Price: 15.50},
		{Name: "Digital Multimeter", SKU: "PHY-DM-001", Category: "Physics", Quantity: 10, Price: 45.00},
		{Name: "Bunsen Burner", SKU: "CHEM-BB-001", Category: "Chemistry", Quantity: 15, Price: 30.25},
		{Name: "Dissection Kit", SKU: "BIO-DK-001", Category: "Biology", Quantity: 30, Price: 22.00},
		{Name: "Test Tubes (50-pack)", SKU: "CHEM-TT-001", Category: "Chemistry", Quantity: 150, Price: 12.00},
		{Name: "Safety Goggles (10-pack)", SKU: "GEN-SG-001", Category: "General", Quantity: 5, Price: 18.75},
		{Name: "Laser Optics Kit", SKU: "PHY-LO-001", Category: "Physics", Quantity: 12, Price: 120.00},
	}
	for _, item := range demoItems {
		if _, err := items.Add(ctx, item); err != nil {
			return fmt.Errorf("failed to seed item %q: %w", item.Name, err)
		}
	}

	demoTransactions := []model.Transaction{
		{
			Type: model.TransactionImport, Date: "2024-07-15", InitiatedBy: "John Doe",
			Lines:  []model.TransactionLine{{ItemID: 1, ItemName: "Beakers (Set of 5)", Quantity: 20}},
			Status: model.StatusApproved,
		},
		{
			Type: model.TransactionExport, Date: "2024-07-16", InitiatedBy: "Frank Noten",
			Lines:  []model.TransactionLine{{ItemID: 3, ItemName: "Digital Multimeter", Quantity: 2}},
			Status: model.StatusApproved,
		},
		{
			Type: model.TransactionImport, Date: "2024-07-20", InitiatedBy: "John Doe",
			Lines:  []model.TransactionLine{{ItemID: 7, ItemName: "Safety Goggles (10-pack)", Quantity: 10}},
			Status: model.StatusPending,
		},
		{
			Type: model.TransactionExport, Date: "2024-07-21", InitiatedBy: "Jane Smith",
			Lines:  []model.TransactionLine{{ItemID: 4, ItemName: "Bunsen Burner", Quantity: 5}},
			Status: model.StatusRejected,
		},
	}
	for _, tx := range demoTransactions {
		if _, err := transactions.Add(ctx, tx); err != nil {
			return fmt.Errorf("failed to seed transaction: %w", err)
		}
	}
	return nil
}
