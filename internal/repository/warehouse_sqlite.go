package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"schoolhub-warehouse-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore holds the shared SQLite connection for the warehouse tables.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the warehouse database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createWarehouseTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createWarehouseTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS warehouse_items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL,
		category TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		price REAL NOT NULL CHECK (price >= 0)
	);
	CREATE TABLE IF NOT EXISTS warehouse_transactions (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		initiated_by TEXT NOT NULL,
		lines TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_category ON warehouse_items(category);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON warehouse_transactions(status);
	`
	_, err := db.Exec(query)
	return err
}

// Items returns the item repository backed by this store.
func (s *SQLiteStore) Items() *SQLiteItemRepository {
	return &SQLiteItemRepository{store: s}
}

// Transactions returns the transaction repository backed by this store.
func (s *SQLiteStore) Transactions() *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{store: s}
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SQLiteItemRepository implements ItemRepository using SQLite.
type SQLiteItemRepository struct {
	store *SQLiteStore
}

// Add inserts the item with the next available id.
func (r *SQLiteItemRepository) Add(ctx context.Context, item model.Item) (model.Item, error) {
	if item.Quantity < 0 || item.Price < 0 {
		return model.Item{}, ErrInvalidInput
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := r.store.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM warehouse_items`)
	if err := row.Scan(&item.ID); err != nil {
		return model.Item{}, fmt.Errorf("failed to allocate item id: %w", err)
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO warehouse_items (id, name, sku, category, quantity, price) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.SKU, item.Category, item.Quantity, item.Price)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return item, nil
}

// GetByID retrieves an item by id.
func (r *SQLiteItemRepository) GetByID(ctx context.Context, id int) (model.Item, error) {
	var item model.Item
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, name, sku, category, quantity, price FROM warehouse_items WHERE id = ?`, id)
	err := row.Scan(&item.ID, &item.Name, &item.SKU, &item.Category, &item.Quantity, &item.Price)
	if err == sql.ErrNoRows {
		return model.Item{}, ErrItemNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to query item: %w", err)
	}
	return item, nil
}

// List returns all items ordered by id (insertion order, since ids are
// assigned monotonically).
func (r *SQLiteItemRepository) List(ctx context.Context) ([]model.Item, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, sku, category, quantity, price FROM warehouse_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.Category, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update replaces the record matching item.ID.
func (r *SQLiteItemRepository) Update(ctx context.Context, item model.Item) (model.Item, error) {
	if item.Quantity < 0 || item.Price < 0 {
		return model.Item{}, ErrInvalidInput
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE warehouse_items SET name = ?, sku = ?, category = ?, quantity = ?, price = ? WHERE id = ?`,
		item.Name, item.SKU, item.Category, item.Quantity, item.Price, item.ID)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return model.Item{}, ErrItemNotFound
	}
	return item, nil
}

// Delete removes the record. Deleting a missing id is a silent no-op.
func (r *SQLiteItemRepository) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx, `DELETE FROM warehouse_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ApplyDelta adds a signed quantity to the item's stock inside a database
// transaction, re-checking non-negativity before writing.
func (r *SQLiteItemRepository) ApplyDelta(ctx context.Context, id int, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var quantity int
	row := tx.QueryRowContext(ctx, `SELECT quantity FROM warehouse_items WHERE id = ?`, id)
	if err := row.Scan(&quantity); err != nil {
		if err == sql.ErrNoRows {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to query quantity: %w", err)
	}
	if quantity+delta < 0 {
		return ErrInsufficientStock
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE warehouse_items SET quantity = quantity + ? WHERE id = ?`, delta, id); err != nil {
		return fmt.Errorf("failed to apply delta: %w", err)
	}
	return tx.Commit()
}

// Close closes the shared store connection.
func (r *SQLiteItemRepository) Close() error { return nil }

// SQLiteTransactionRepository implements TransactionRepository using SQLite.
// Lines are stored as a JSON column; the snapshot names inside them never
// need relational access.
type SQLiteTransactionRepository struct {
	store *SQLiteStore
}

// Add inserts the transaction with the next available id.
func (r *SQLiteTransactionRepository) Add(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := r.store.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM warehouse_transactions`)
	if err := row.Scan(&t.ID); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to allocate transaction id: %w", err)
	}

	lines, err := json.Marshal(t.Lines)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to marshal lines: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx,
		`INSERT INTO warehouse_transactions (id, type, date, initiated_by, lines, status) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Date, t.InitiatedBy, string(lines), string(t.Status))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

// GetByID retrieves a transaction by id.
func (r *SQLiteTransactionRepository) GetByID(ctx context.Context, id int) (model.Transaction, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, type, date, initiated_by, lines, status FROM warehouse_transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return model.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// List returns all transactions ordered by id.
func (r *SQLiteTransactionRepository) List(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, type, date, initiated_by, lines, status FROM warehouse_transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetStatus transitions a Pending transaction to a terminal status. The
// WHERE clause on status makes the transition a compare-and-set.
func (r *SQLiteTransactionRepository) SetStatus(ctx context.Context, id int, status model.TransactionStatus) (model.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE warehouse_transactions SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(model.StatusPending))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Transaction{}, err
		}
		return model.Transaction{}, ErrNotPending
	}
	return r.GetByID(ctx, id)
}

// Close closes the shared store connection.
func (r *SQLiteTransactionRepository) Close() error { return nil }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var txType, status, lines string
	if err := row.Scan(&t.ID, &txType, &t.Date, &t.InitiatedBy, &lines, &status); err != nil {
		return model.Transaction{}, err
	}
	t.Type = model.TransactionType(txType)
	t.Status = model.TransactionStatus(status)
	if err := json.Unmarshal([]byte(lines), &t.Lines); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to unmarshal lines: %w", err)
	}
	return t, nil
}
