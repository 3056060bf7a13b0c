package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"schoolhub-warehouse-api/internal/model"
)

// MySQLAuditRepository implements AuditRepository on MySQL. The audit trail
// is best-effort: callers treat a failed write as a warning, not a failure
// of the decision itself.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQL audit repository and ensures
// the audit table exists.
func NewMySQLAuditRepository(db *sql.DB) (*MySQLAuditRepository, error) {
	query := `
	CREATE TABLE IF NOT EXISTS decision_audit (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		transaction_id INT NOT NULL,
		decision VARCHAR(16) NOT NULL,
		outcome VARCHAR(16) NOT NULL,
		reason TEXT,
		created_at DATETIME NOT NULL,
		INDEX idx_transaction_id (transaction_id)
	)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create decision_audit table: %w", err)
	}
	return &MySQLAuditRepository{db: db}, nil
}

// Record persists one decision audit entry.
func (r *MySQLAuditRepository) Record(ctx context.Context, entry model.DecisionAudit) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_audit (transaction_id, decision, outcome, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.TransactionID, entry.Decision, entry.Outcome, entry.Reason, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest audit entries, newest first.
func (r *MySQLAuditRepository) Recent(ctx context.Context, limit int) ([]model.DecisionAudit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, decision, outcome, COALESCE(reason, ''), created_at
		 FROM decision_audit ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []model.DecisionAudit{}
	for rows.Next() {
		var e model.DecisionAudit
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.Decision, &e.Outcome, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
