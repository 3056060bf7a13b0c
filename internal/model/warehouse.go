package model

// LowStockThreshold is the quantity at or below which an item counts as low stock.
const LowStockThreshold = 10

// Item represents a stocked warehouse item.
// SKU is expected to be unique by convention but is not enforced.
type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// StockStatus classifies an item's stock level for display and sorting.
func (i *Item) StockStatus() string {
	switch {
	case i.Quantity == 0:
		return "Out of Stock"
	case i.Quantity <= LowStockThreshold:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

// TransactionType identifies the direction of a stock movement.
type TransactionType string

const (
	TransactionImport TransactionType = "Import"
	TransactionExport TransactionType = "Export"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionImport || t == TransactionExport
}

// TransactionStatus is the lifecycle state of a transaction.
// Pending is the only non-terminal state.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "Pending"
	StatusApproved TransactionStatus = "Approved"
	StatusRejected TransactionStatus = "Rejected"
)

// TransactionLine is a single (item, quantity) movement within a transaction.
// ItemName is a snapshot taken at creation time so history stays readable
// after the item is renamed or deleted.
type TransactionLine struct {
	ItemID   int    `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// Transaction is a proposed stock movement awaiting or having received a decision.
// Once the status leaves Pending the record is never mutated again.
type Transaction struct {
	ID          int               `json:"id"`
	Type        TransactionType   `json:"type"`
	Date        string            `json:"date"` // YYYY-MM-DD, set server-side at creation
	InitiatedBy string            `json:"user"`
	Lines       []TransactionLine `json:"items"`
	Status      TransactionStatus `json:"status"`
}

// SortDirection for list queries.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ItemListOptions controls filtering, sorting and pagination of item lists.
type ItemListOptions struct {
	Search   string
	Category string // empty or "all" means no category filter
	SortBy   string // name, category, quantity, price, status
	SortDir  SortDirection
	Page     int
	PerPage  int
}

// TransactionListOptions controls filtering, sorting and pagination of
// transaction lists.
type TransactionListOptions struct {
	Status  string // empty or "all" means no status filter
	SortBy  string // id, type, date, user, status
	SortDir SortDirection
	Page    int
	PerPage int
}

// ItemPage is one page of an item listing.
type ItemPage struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	TotalPages   int           `json:"total_pages"`
	Total        int           `json:"total"`
}

// Summary holds the dashboard aggregates derived from the current item set.
type Summary struct {
	TotalValue    float64  `json:"total_value"`
	TotalUnits    int      `json:"total_units"`
	LowStockCount int      `json:"low_stock_count"`
	OutOfStock    int      `json:"out_of_stock_count"`
	Categories    []string `json:"categories"`
}

// MonthlyFlow is the per-month import/export unit totals over approved
// transactions, used by the dashboard chart.
type MonthlyFlow struct {
	Month  string `json:"month"` // YYYY-MM
	Import int    `json:"import"`
	Export int    `json:"export"`
}
