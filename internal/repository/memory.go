package repository

import (
	"context"
	"sync"

	"schoolhub-warehouse-api/internal/model"
)

// MemoryItemRepository is the in-memory implementation of ItemRepository.
// This is the authoritative default backend: a mutex-guarded slice that
// preserves insertion order, which the list projections rely on for their
// stable tie-break.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items []model.Item
}

// NewMemoryItemRepository creates an empty in-memory item repository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{}
}

func nextItemID(items []model.Item) int {
	id := 0
	for _, it := range items {
		if it.ID > id {
			id = it.ID
		}
	}
	return id + 1
}

// Add inserts the item with the next available id.
func (r *MemoryItemRepository) Add(ctx context.Context, item model.Item) (model.Item, error) {
	if item.Quantity < 0 || item.Price < 0 {
		return model.Item{}, ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = nextItemID(r.items)
	r.items = append(r.items, item)
	return item, nil
}

// GetByID retrieves an item by id.
func (r *MemoryItemRepository) GetByID(ctx context.Context, id int) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.Item{}, ErrItemNotFound
}

// List returns a copy of all items in insertion order.
func (r *MemoryItemRepository) List(ctx context.Context) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Item, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Update replaces the record matching item.ID.
func (r *MemoryItemRepository) Update(ctx context.Context, item model.Item) (model.Item, error) {
	if item.Quantity < 0 || item.Price < 0 {
		return model.Item{}, ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return item, nil
		}
	}
	return model.Item{}, ErrItemNotFound
}

// Delete removes the record. Deleting a missing id is a silent no-op,
// matching the behavior callers were built against.
func (r *MemoryItemRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ApplyDelta adds a signed quantity to the item's stock. The caller is
// expected to have pre-validated exports; the negative check here is the
// store's last line of defense.
func (r *MemoryItemRepository) ApplyDelta(ctx context.Context, id int, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			if r.items[i].Quantity+delta < 0 {
				return ErrInsufficientStock
			}
			r.items[i].Quantity += delta
			return nil
		}
	}
	return ErrItemNotFound
}

// Close is a no-op for the in-memory repository.
func (r *MemoryItemRepository) Close() error { return nil }

// MemoryTransactionRepository is the in-memory implementation of
// TransactionRepository.
type MemoryTransactionRepository struct {
	mu           sync.RWMutex
	transactions []model.Transaction
}

// NewMemoryTransactionRepository creates an empty in-memory transaction repository.
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{}
}

// Add inserts the transaction with the next available id.
func (r *MemoryTransactionRepository) Add(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := 0
	for _, t := range r.transactions {
		if t.ID > id {
			id = t.ID
		}
	}
	tx.ID = id + 1

	// Copy the lines so callers cannot mutate stored history.
	lines := make([]model.TransactionLine, len(tx.Lines))
	copy(lines, tx.Lines)
	tx.Lines = lines

	r.transactions = append(r.transactions, tx)
	return tx, nil
}

// GetByID retrieves a transaction by id.
func (r *MemoryTransactionRepository) GetByID(ctx context.Context, id int) (model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.transactions {
		if t.ID == id {
			return cloneTransaction(t), nil
		}
	}
	return model.Transaction{}, ErrTransactionNotFound
}

// List returns a copy of all transactions in insertion order.
func (r *MemoryTransactionRepository) List(ctx context.Context) ([]model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Transaction, len(r.transactions))
	for i, t := range r.transactions {
		out[i] = cloneTransaction(t)
	}
	return out, nil
}

// SetStatus performs the Pending to terminal compare-and-set under the
// repository lock, so a racing duplicate decision observes ErrNotPending.
func (r *MemoryTransactionRepository) SetStatus(ctx context.Context, id int, status model.TransactionStatus) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.transactions {
		if r.transactions[i].ID == id {
			if r.transactions[i].Status != model.StatusPending {
				return model.Transaction{}, ErrNotPending
			}
			r.transactions[i].Status = status
			return cloneTransaction(r.transactions[i]), nil
		}
	}
	return model.Transaction{}, ErrTransactionNotFound
}

// Close is a no-op for the in-memory repository.
func (r *MemoryTransactionRepository) Close() error { return nil }

func cloneTransaction(t model.Transaction) model.Transaction {
	lines := make([]model.TransactionLine, len(t.Lines))
	copy(lines, t.Lines)
	t.Lines = lines
	return t
}
