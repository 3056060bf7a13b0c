package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"schoolhub-warehouse-api/internal/cache"
	"schoolhub-warehouse-api/internal/model"
	"schoolhub-warehouse-api/internal/repository"
	"schoolhub-warehouse-api/pkg/apierror"
)

const (
	summaryCacheKey = "dashboard:summary"
	flowCacheKey    = "dashboard:flow"
)

// decisionMessage matches what reviewers see when a decision races or
// targets a missing transaction.
const decisionMessage = "Transaction not found or already processed."

// TransactionLineInput is one requested (item, quantity) movement.
// The item name snapshot is captured server-side at creation.
type TransactionLineInput struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// WarehouseService owns the inventory and the transaction ledger. All stock
// mutations funnel through it: item CRUD directly, quantity changes only via
// the approval algorithm in DecideTransaction.
type WarehouseService struct {
	items        repository.ItemRepository
	transactions repository.TransactionRepository
	audit        repository.AuditRepository
	statsCache   cache.Cache
	cacheTTL     time.Duration

	// decideMu serializes the validate+commit span of DecideTransaction.
	// Without it two concurrent Export approvals could both validate
	// against the same stock snapshot and jointly over-draw an item.
	decideMu sync.Mutex
}

// NewWarehouseService creates a new warehouse service.
// Returns nil if either repository is nil (required dependencies).
func NewWarehouseService(
	items repository.ItemRepository,
	transactions repository.TransactionRepository,
) *WarehouseService {
	if items == nil || transactions == nil {
		return nil
	}
	return &WarehouseService{
		items:        items,
		transactions: transactions,
		cacheTTL:     5 * time.Minute,
	}
}

// SetAudit enables best-effort decision auditing.
func (s *WarehouseService) SetAudit(audit repository.AuditRepository) {
	s.audit = audit
}

// SetStatsCache enables caching of the dashboard aggregates.
func (s *WarehouseService) SetStatsCache(c cache.Cache, ttl time.Duration) {
	s.statsCache = c
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// --- Items ---

// ListItems returns one page of the filtered, sorted item collection.
func (s *WarehouseService) ListItems(ctx context.Context, opts model.ItemListOptions) (model.ItemPage, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return model.ItemPage{}, fmt.Errorf("failed to list items: %w", err)
	}
	return projectItems(items, opts), nil
}

// CreateItem validates and inserts a new item.
func (s *WarehouseService) CreateItem(ctx context.Context, item model.Item) (model.Item, error) {
	if details := validateItemFields(item); len(details) > 0 {
		return model.Item{}, apierror.ValidationError("invalid item", details...)
	}

	created, err := s.items.Add(ctx, item)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return model.Item{}, apierror.ValidationError("quantity and price must be non-negative")
		}
		return model.Item{}, fmt.Errorf("failed to add item: %w", err)
	}

	s.invalidateStats(ctx)
	return created, nil
}

// UpdateItem replaces the record matching item.ID.
func (s *WarehouseService) UpdateItem(ctx context.Context, item model.Item) (model.Item, error) {
	if details := validateItemFields(item); len(details) > 0 {
		return model.Item{}, apierror.ValidationError("invalid item", details...)
	}

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return model.Item{}, apierror.NotFound(fmt.Sprintf("item %d not found", item.ID))
		case errors.Is(err, repository.ErrInvalidInput):
			return model.Item{}, apierror.ValidationError("quantity and price must be non-negative")
		}
		return model.Item{}, fmt.Errorf("failed to update item: %w", err)
	}

	s.invalidateStats(ctx)
	return updated, nil
}

// DeleteItem removes an item. Deleting a missing id is a silent no-op;
// historical transactions keep their name snapshots, so dangling line
// references are acceptable.
func (s *WarehouseService) DeleteItem(ctx context.Context, id int) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.invalidateStats(ctx)
	return nil
}

// Categories returns the distinct item categories, sorted.
func (s *WarehouseService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return distinctCategories(items), nil
}

// --- Transactions ---

// ListTransactions returns one page of the filtered, sorted ledger.
func (s *WarehouseService) ListTransactions(ctx context.Context, opts model.TransactionListOptions) (model.TransactionPage, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return model.TransactionPage{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	return projectTransactions(transactions, opts), nil
}

// CreateTransaction records an intended stock movement as a Pending ledger
// entry. Stock is deliberately not touched or checked here: quantities can
// drift between request and review, so Export feasibility is judged only at
// approval time.
func (s *WarehouseService) CreateTransaction(ctx context.Context, txType model.TransactionType, lines []TransactionLineInput, initiatedBy string) (model.Transaction, error) {
	if !txType.IsValid() {
		return model.Transaction{}, apierror.ValidationError(fmt.Sprintf("unknown transaction type %q", txType))
	}
	if len(lines) == 0 {
		return model.Transaction{}, apierror.ValidationError("a transaction requires at least one item")
	}

	resolved := make([]model.TransactionLine, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return model.Transaction{}, apierror.ValidationError("quantity must be positive",
				apierror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than zero"})
		}
		item, err := s.items.GetByID(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrItemNotFound) {
				return model.Transaction{}, apierror.ValidationError(fmt.Sprintf("unknown item %d", line.ItemID),
					apierror.FieldError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "item does not exist"})
			}
			return model.Transaction{}, fmt.Errorf("failed to resolve item %d: %w", line.ItemID, err)
		}
		resolved = append(resolved, model.TransactionLine{
			ItemID:   line.ItemID,
			ItemName: item.Name, // snapshot; survives rename and delete
			Quantity: line.Quantity,
		})
	}

	created, err := s.transactions.Add(ctx, model.Transaction{
		Type:        txType,
		Date:        time.Now().Format("2006-01-02"),
		InitiatedBy: initiatedBy,
		Lines:       resolved,
		Status:      model.StatusPending,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to add transaction: %w", err)
	}
	return created, nil
}

// DecideTransaction approves or rejects a Pending transaction.
//
// Approval runs in two phases under the decision lock: first every line is
// validated against current stock (Export only), then and only then are the
// deltas applied and the status flipped. A multi-line Export either commits
// in full or leaves every quantity untouched.
func (s *WarehouseService) DecideTransaction(ctx context.Context, id int, decision model.TransactionStatus) (model.Transaction, error) {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return model.Transaction{}, apierror.ValidationError(fmt.Sprintf("invalid decision %q", decision))
	}

	s.decideMu.Lock()
	defer s.decideMu.Unlock()

	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return model.Transaction{}, apierror.InvalidState(decisionMessage)
		}
		return model.Transaction{}, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx.Status != model.StatusPending {
		return model.Transaction{}, apierror.InvalidState(decisionMessage)
	}

	if decision == model.StatusRejected {
		updated, err := s.setStatus(ctx, id, model.StatusRejected)
		if err != nil {
			return model.Transaction{}, err
		}
		s.recordAudit(ctx, id, string(decision), "rejected", "")
		return updated, nil
	}

	// Validation phase: read-only, covers every line before any mutation.
	if tx.Type == model.TransactionExport {
		for _, line := range tx.Lines {
			item, err := s.items.GetByID(ctx, line.ItemID)
			if err != nil {
				if errors.Is(err, repository.ErrItemNotFound) {
					stockErr := apierror.InsufficientStock(line.ItemName, 0)
					s.recordAudit(ctx, id, string(decision), "failed", stockErr.Message)
					return model.Transaction{}, stockErr
				}
				return model.Transaction{}, fmt.Errorf("failed to load item %d: %w", line.ItemID, err)
			}
			if item.Quantity < line.Quantity {
				stockErr := apierror.InsufficientStock(line.ItemName, item.Quantity)
				s.recordAudit(ctx, id, string(decision), "failed", stockErr.Message)
				return model.Transaction{}, stockErr
			}
		}
	}

	// Commit phase: apply every delta. Item CRUD does not take the decision
	// lock, so the store's own non-negativity check can still fire; if it
	// does, roll back the deltas already applied so the transaction stays
	// Pending with stock untouched.
	applied := make([]model.TransactionLine, 0, len(tx.Lines))
	for _, line := range tx.Lines {
		delta := line.Quantity
		if tx.Type == model.TransactionExport {
			delta = -delta
		}
		if err := s.items.ApplyDelta(ctx, line.ItemID, delta); err != nil {
			s.rollbackDeltas(ctx, tx.Type, applied)
			if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrItemNotFound) {
				stockErr := apierror.InsufficientStock(line.ItemName, currentQuantity(ctx, s.items, line.ItemID))
				s.recordAudit(ctx, id, string(decision), "failed", stockErr.Message)
				return model.Transaction{}, stockErr
			}
			return model.Transaction{}, fmt.Errorf("failed to apply stock delta: %w", err)
		}
		applied = append(applied, line)
	}

	updated, err := s.setStatus(ctx, id, model.StatusApproved)
	if err != nil {
		s.rollbackDeltas(ctx, tx.Type, applied)
		return model.Transaction{}, err
	}

	s.recordAudit(ctx, id, string(decision), "applied", "")
	s.invalidateStats(ctx)
	return updated, nil
}

// --- Dashboard ---

// Summary returns the dashboard aggregates, served from cache when enabled.
func (s *WarehouseService) Summary(ctx context.Context) (model.Summary, error) {
	if s.statsCache == nil {
		return s.computeSummary(ctx)
	}

	data, err := s.statsCache.GetOrSet(ctx, summaryCacheKey, s.cacheTTL, func() ([]byte, error) {
		summary, err := s.computeSummary(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		return model.Summary{}, err
	}

	var summary model.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.Summary{}, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return summary, nil
}

// MonthlyFlow returns per-month import/export unit totals over approved
// transactions, oldest month first.
func (s *WarehouseService) MonthlyFlow(ctx context.Context) ([]model.MonthlyFlow, error) {
	if s.statsCache == nil {
		return s.computeMonthlyFlow(ctx)
	}

	data, err := s.statsCache.GetOrSet(ctx, flowCacheKey, s.cacheTTL, func() ([]byte, error) {
		flow, err := s.computeMonthlyFlow(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(flow)
	})
	if err != nil {
		return nil, err
	}

	var flow []model.MonthlyFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode cached flow: %w", err)
	}
	return flow, nil
}

func (s *WarehouseService) computeSummary(ctx context.Context) (model.Summary, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to list items: %w", err)
	}

	summary := model.Summary{Categories: distinctCategories(items)}
	for _, item := range items {
		summary.TotalValue += float64(item.Quantity) * item.Price
		summary.TotalUnits += item.Quantity
		switch {
		case item.Quantity == 0:
			summary.OutOfStock++
		case item.Quantity <= model.LowStockThreshold:
			summary.LowStockCount++
		}
	}
	return summary, nil
}

func (s *WarehouseService) computeMonthlyFlow(ctx context.Context) ([]model.MonthlyFlow, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	byMonth := map[string]*model.MonthlyFlow{}
	for _, t := range transactions {
		if t.Status != model.StatusApproved {
			continue
		}
		if len(t.Date) < 7 {
			continue
		}
		month := t.Date[:7]
		entry, ok := byMonth[month]
		if !ok {
			entry = &model.MonthlyFlow{Month: month}
			byMonth[month] = entry
		}
		units := 0
		for _, line := range t.Lines {
			units += line.Quantity
		}
		if t.Type == model.TransactionImport {
			entry.Import += units
		} else {
			entry.Export += units
		}
	}

	flow := make([]model.MonthlyFlow, 0, len(byMonth))
	for _, entry := range byMonth {
		flow = append(flow, *entry)
	}
	sort.Slice(flow, func(i, j int) bool { return flow[i].Month < flow[j].Month })
	return flow, nil
}

// --- internals ---

func (s *WarehouseService) setStatus(ctx context.Context, id int, status model.TransactionStatus) (model.Transaction, error) {
	updated, err := s.transactions.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) || errors.Is(err, repository.ErrTransactionNotFound) {
			return model.Transaction{}, apierror.InvalidState(decisionMessage)
		}
		return model.Transaction{}, fmt.Errorf("failed to set transaction status: %w", err)
	}
	return updated, nil
}

func (s *WarehouseService) rollbackDeltas(ctx context.Context, txType model.TransactionType, applied []model.TransactionLine) {
	for _, line := range applied {
		delta := -line.Quantity
		if txType == model.TransactionExport {
			delta = line.Quantity
		}
		if err := s.items.ApplyDelta(ctx, line.ItemID, delta); err != nil {
			log.Printf("Warning: failed to roll back delta for item %d: %v", line.ItemID, err)
		}
	}
}

func (s *WarehouseService) recordAudit(ctx context.Context, transactionID int, decision, outcome, reason string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, model.DecisionAudit{
		TransactionID: transactionID,
		Decision:      decision,
		Outcome:       outcome,
		Reason:        reason,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		log.Printf("Warning: failed to record decision audit: %v", err)
	}
}

func (s *WarehouseService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Delete(ctx, summaryCacheKey); err != nil {
		log.Printf("Warning: failed to invalidate summary cache: %v", err)
	}
	if err := s.statsCache.Delete(ctx, flowCacheKey); err != nil {
		log.Printf("Warning: failed to invalidate flow cache: %v", err)
	}
}

func validateItemFields(item model.Item) []apierror.FieldError {
	var details []apierror.FieldError
	if item.Name == "" {
		details = append(details, apierror.FieldError{Field: "name", Message: "required"})
	}
	if item.SKU == "" {
		details = append(details, apierror.FieldError{Field: "sku", Message: "required"})
	}
	if item.Category == "" {
		details = append(details, apierror.FieldError{Field: "category", Message: "required"})
	}
	if item.Quantity < 0 {
		details = append(details, apierror.FieldError{Field: "quantity", Message: "must be non-negative"})
	}
	if item.Price < 0 {
		details = append(details, apierror.FieldError{Field: "price", Message: "must be non-negative"})
	}
	return details
}

func distinctCategories(items []model.Item) []string {
	seen := map[string]struct{}{}
	categories := []string{}
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories
}

func currentQuantity(ctx context.Context, items repository.ItemRepository, id int) int {
	item, err := items.GetByID(ctx, id)
	if err != nil {
		return 0
	}
	return item.Quantity
}
