package service

import (
	"testing"

	"schoolhub-warehouse-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []model.Item {
	return []model.Item{
		{ID: 1, Name: "Beakers (Set of 5)", SKU: "CHEM-BK-001", Category: "Chemistry", Quantity: 30, Price: 25.99},
		{ID: 2, Name: "Microscope Slides (100-pack)", SKU: "BIO-MS-001", Category: "Biology", Quantity: 20, Price: 15.50},
		{ID: 3, Name: "Digital Multimeter", SKU: "PHY-DM-001", Category: "Physics", Quantity: 10, Price: 45.00},
		{ID: 4, Name: "Bunsen Burner", SKU: "CHEM-BB-001", Category: "Chemistry", Quantity: 15, Price: 30.25},
		{ID: 5, Name: "Safety Goggles (10-pack)", SKU: "GEN-SG-001", Category: "General", Quantity: 0, Price: 18.75},
	}
}

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: 1, Type: model.TransactionImport, Date: "2024-07-15", InitiatedBy: "John Doe", Status: model.StatusApproved},
		{ID: 2, Type: model.TransactionExport, Date: "2024-07-16", InitiatedBy: "Frank Noten", Status: model.StatusApproved},
		{ID: 3, Type: model.TransactionImport, Date: "2024-07-20", InitiatedBy: "John Doe", Status: model.StatusPending},
		{ID: 4, Type: model.TransactionExport, Date: "2024-07-21", InitiatedBy: "Jane Smith", Status: model.StatusRejected},
	}
}

func TestProjectItems_FreeTextFilter(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		wantIDs []int
	}{
		{"matches name", "multimeter", []int{3}},
		{"matches sku", "chem-bk", []int{1}},
		{"matches category", "biology", []int{2}},
		{"case insensitive", "BUNSEN", []int{4}},
		{"no match", "centrifuge", nil},
		{"empty matches all", "", []int{1, 4, 3, 2, 5}}, // default sort: name asc
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := projectItems(sampleItems(), model.ItemListOptions{Search: tt.search})
			ids := make([]int, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.wantIDs, ids)
			}
		})
	}
}

func TestProjectItems_CategoryFilter(t *testing.T) {
	page := projectItems(sampleItems(), model.ItemListOptions{Category: "Chemistry"})
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.Equal(t, "Chemistry", item.Category)
	}

	// "all" and empty both disable the filter.
	assert.Equal(t, 5, projectItems(sampleItems(), model.ItemListOptions{Category: "all"}).Total)
	assert.Equal(t, 5, projectItems(sampleItems(), model.ItemListOptions{}).Total)
}

func TestProjectItems_SortColumns(t *testing.T) {
	page := projectItems(sampleItems(), model.ItemListOptions{SortBy: "quantity", SortDir: model.SortDesc})
	quantities := []int{}
	for _, item := range page.Items {
		quantities = append(quantities, item.Quantity)
	}
	assert.Equal(t, []int{30, 20, 15, 10, 0}, quantities)

	page = projectItems(sampleItems(), model.ItemListOptions{SortBy: "price", SortDir: model.SortAsc})
	assert.Equal(t, "Microscope Slides (100-pack)", page.Items[0].Name)
	assert.Equal(t, "Digital Multimeter", page.Items[len(page.Items)-1].Name)
}

func TestProjectItems_StatusSortUsesClassification(t *testing.T) {
	page := projectItems(sampleItems(), model.ItemListOptions{SortBy: "status", SortDir: model.SortAsc})
	// "In Stock" < "Low Stock" < "Out of Stock" lexicographically.
	assert.Equal(t, "In Stock", page.Items[0].StockStatus())
	assert.Equal(t, "Out of Stock", page.Items[len(page.Items)-1].StockStatus())
}

func TestProjectItems_StableTieBreak(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "A", Category: "Same", Quantity: 5},
		{ID: 2, Name: "B", Category: "Same", Quantity: 5},
		{ID: 3, Name: "C", Category: "Same", Quantity: 5},
	}

	// Equal sort keys keep the original collection order, both directions.
	page := projectItems(items, model.ItemListOptions{SortBy: "quantity", SortDir: model.SortAsc})
	assert.Equal(t, []int{1, 2, 3}, []int{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})

	page = projectItems(items, model.ItemListOptions{SortBy: "quantity", SortDir: model.SortDesc})
	assert.Equal(t, []int{1, 2, 3}, []int{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
}

func TestProjectItems_Pagination(t *testing.T) {
	page := projectItems(sampleItems(), model.ItemListOptions{Page: 1, PerPage: 2})
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.Total)

	last := projectItems(sampleItems(), model.ItemListOptions{Page: 3, PerPage: 2})
	assert.Len(t, last.Items, 1)

	beyond := projectItems(sampleItems(), model.ItemListOptions{Page: 9, PerPage: 2})
	assert.Empty(t, beyond.Items)
}

func TestProjectItems_Idempotent(t *testing.T) {
	opts := model.ItemListOptions{Search: "chem", SortBy: "price", SortDir: model.SortDesc, Page: 1, PerPage: 8}
	first := projectItems(sampleItems(), opts)
	second := projectItems(sampleItems(), opts)
	assert.Equal(t, first, second)
}

func TestProjectTransactions_StatusFilter(t *testing.T) {
	page := projectTransactions(sampleTransactions(), model.TransactionListOptions{Status: "Pending"})
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, 3, page.Transactions[0].ID)

	assert.Equal(t, 4, projectTransactions(sampleTransactions(), model.TransactionListOptions{Status: "all"}).Total)
}

func TestProjectTransactions_DefaultSortIsDateDesc(t *testing.T) {
	page := projectTransactions(sampleTransactions(), model.TransactionListOptions{})
	dates := []string{}
	for _, tx := range page.Transactions {
		dates = append(dates, tx.Date)
	}
	assert.Equal(t, []string{"2024-07-21", "2024-07-20", "2024-07-16", "2024-07-15"}, dates)
}

func TestProjectTransactions_SortByUser(t *testing.T) {
	page := projectTransactions(sampleTransactions(), model.TransactionListOptions{SortBy: "user", SortDir: model.SortAsc})
	assert.Equal(t, "Frank Noten", page.Transactions[0].InitiatedBy)
	assert.Equal(t, "John Doe", page.Transactions[len(page.Transactions)-1].InitiatedBy)
}

func TestProjectTransactions_SortByIDAsc(t *testing.T) {
	page := projectTransactions(sampleTransactions(), model.TransactionListOptions{SortBy: "id", SortDir: model.SortAsc})
	assert.Equal(t, 1, page.Transactions[0].ID)
	assert.Equal(t, 4, page.Transactions[3].ID)
}
