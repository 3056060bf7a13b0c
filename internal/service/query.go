package service

import (
	"sort"
	"strings"

	"schoolhub-warehouse-api/internal/model"
)

// DefaultPerPage matches the page size the management screens were built with.
const DefaultPerPage = 8

// projectItems applies the free-text filter, category filter, column sort and
// pagination to an item snapshot. Pure function; sort.SliceStable keeps the
// original collection order as the tie-break.
func projectItems(items []model.Item, opts model.ItemListOptions) model.ItemPage {
	term := strings.ToLower(opts.Search)

	filtered := make([]model.Item, 0, len(items))
	for _, item := range items {
		if term != "" &&
			!strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.SKU), term) &&
			!strings.Contains(strings.ToLower(item.Category), term) {
			continue
		}
		if opts.Category != "" && opts.Category != "all" && item.Category != opts.Category {
			continue
		}
		filtered = append(filtered, item)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	desc := opts.SortDir == model.SortDesc

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		var less bool
		switch sortBy {
		case "category":
			less = a.Category < b.Category
		case "quantity":
			less = a.Quantity < b.Quantity
		case "price":
			less = a.Price < b.Price
		case "status":
			less = a.StockStatus() < b.StockStatus()
		default: // name
			less = a.Name < b.Name
		}
		if desc {
			return !less && !itemColumnsEqual(a, b, sortBy)
		}
		return less
	})

	page, perPage, totalPages := normalizePage(opts.Page, opts.PerPage, len(filtered))
	return model.ItemPage{
		Items:      paginateItems(filtered, page, perPage),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
}

// projectTransactions applies the status filter, column sort and pagination
// to a transaction snapshot.
func projectTransactions(transactions []model.Transaction, opts model.TransactionListOptions) model.TransactionPage {
	filtered := make([]model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if opts.Status != "" && opts.Status != "all" && string(t.Status) != opts.Status {
			continue
		}
		filtered = append(filtered, t)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	// The transaction list defaults to newest first.
	dir := opts.SortDir
	if dir == "" {
		dir = model.SortDesc
	}
	desc := dir == model.SortDesc

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		var less bool
		switch sortBy {
		case "id":
			less = a.ID < b.ID
		case "type":
			less = a.Type < b.Type
		case "user":
			less = a.InitiatedBy < b.InitiatedBy
		case "status":
			less = a.Status < b.Status
		default: // date (YYYY-MM-DD sorts lexicographically)
			less = a.Date < b.Date
		}
		if desc {
			return !less && !transactionColumnsEqual(a, b, sortBy)
		}
		return less
	})

	page, perPage, totalPages := normalizePage(opts.Page, opts.PerPage, len(filtered))
	return model.TransactionPage{
		Transactions: paginateTransactions(filtered, page, perPage),
		Page:         page,
		PerPage:      perPage,
		TotalPages:   totalPages,
		Total:        len(filtered),
	}
}

func itemColumnsEqual(a, b model.Item, column string) bool {
	switch column {
	case "category":
		return a.Category == b.Category
	case "quantity":
		return a.Quantity == b.Quantity
	case "price":
		return a.Price == b.Price
	case "status":
		return a.StockStatus() == b.StockStatus()
	default:
		return a.Name == b.Name
	}
}

func transactionColumnsEqual(a, b model.Transaction, column string) bool {
	switch column {
	case "id":
		return a.ID == b.ID
	case "type":
		return a.Type == b.Type
	case "user":
		return a.InitiatedBy == b.InitiatedBy
	case "status":
		return a.Status == b.Status
	default:
		return a.Date == b.Date
	}
}

func normalizePage(page, perPage, total int) (int, int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return page, perPage, totalPages
}

func paginateItems(items []model.Item, page, perPage int) []model.Item {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []model.Item{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func paginateTransactions(transactions []model.Transaction, page, perPage int) []model.Transaction {
	start := (page - 1) * perPage
	if start >= len(transactions) {
		return []model.Transaction{}
	}
	end := start + perPage
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[start:end]
}
