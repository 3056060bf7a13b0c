package repository

import (
	"context"
	"errors"

	"schoolhub-warehouse-api/internal/model"
)

var (
	// ErrItemNotFound indicates the referenced item id does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrTransactionNotFound indicates the referenced transaction id does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNotPending indicates a status transition was attempted on a
	// transaction that has already left the Pending state.
	ErrNotPending = errors.New("transaction is not pending")

	// ErrInsufficientStock indicates a delta would drive an item's
	// quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidInput indicates a record violates a store constraint,
	// such as a negative quantity or price.
	ErrInvalidInput = errors.New("invalid input")
)

// ItemRepository defines warehouse item data access methods.
// Implementations preserve insertion order in List results.
type ItemRepository interface {
	// Add inserts the item, assigning the next id (max existing id + 1, or 1).
	Add(ctx context.Context, item model.Item) (model.Item, error)

	// GetByID retrieves an item. Returns ErrItemNotFound if missing.
	GetByID(ctx context.Context, id int) (model.Item, error)

	// List returns all items in insertion order.
	List(ctx context.Context) ([]model.Item, error)

	// Update replaces the record matching item.ID. Returns ErrItemNotFound if missing.
	Update(ctx context.Context, item model.Item) (model.Item, error)

	// Delete removes the record. Deleting a missing id is a silent no-op.
	Delete(ctx context.Context, id int) error

	// ApplyDelta adds a signed quantity to the item's stock. Returns
	// ErrItemNotFound if missing and ErrInsufficientStock if the result
	// would be negative; never clamps.
	ApplyDelta(ctx context.Context, id int, delta int) error

	// Close closes the repository connection.
	Close() error
}

// TransactionRepository defines transaction ledger data access methods.
type TransactionRepository interface {
	// Add inserts the transaction, assigning the next id (max existing id + 1, or 1).
	Add(ctx context.Context, tx model.Transaction) (model.Transaction, error)

	// GetByID retrieves a transaction. Returns ErrTransactionNotFound if missing.
	GetByID(ctx context.Context, id int) (model.Transaction, error)

	// List returns all transactions in insertion order.
	List(ctx context.Context) ([]model.Transaction, error)

	// SetStatus transitions a Pending transaction to a terminal status as a
	// single compare-and-set. Returns ErrTransactionNotFound if missing and
	// ErrNotPending if the transaction was already decided.
	SetStatus(ctx context.Context, id int, status model.TransactionStatus) (model.Transaction, error)

	// Close closes the repository connection.
	Close() error
}

// AuditRepository records the outcome of transaction decisions.
type AuditRepository interface {
	// Record persists one decision audit entry.
	Record(ctx context.Context, entry model.DecisionAudit) error
}
