package model

import "time"

// DecisionAudit represents a record in the decision_audit table.
type DecisionAudit struct {
	ID            int64     `json:"id"`
	TransactionID int       `json:"transaction_id"`
	Decision      string    `json:"decision"` // 'Approved' or 'Rejected'
	Outcome       string    `json:"outcome"`  // 'applied', 'rejected' or 'failed'
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
