package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"schoolhub-warehouse-api/internal/model"
	"schoolhub-warehouse-api/internal/service"
	"schoolhub-warehouse-api/pkg/apierror"
	"schoolhub-warehouse-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// WarehouseHandler handles item and transaction HTTP requests.
type WarehouseHandler struct {
	warehouse   *service.WarehouseService
	defaultUser string
}

// NewWarehouseHandler creates a new warehouse handler. defaultUser is the
// initiator label used when a request carries no X-User header.
func NewWarehouseHandler(warehouse *service.WarehouseService, defaultUser string) *WarehouseHandler {
	return &WarehouseHandler{
		warehouse:   warehouse,
		defaultUser: defaultUser,
	}
}

// itemRequest is the create/update payload for an item.
type itemRequest struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// transactionRequest is the create payload for a transaction.
type transactionRequest struct {
	Type  model.TransactionType          `json:"type"`
	Items []service.TransactionLineInput `json:"items"`
}

// ListItems handles GET /api/v1/items
func (h *WarehouseHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.ItemListOptions{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		SortBy:   q.Get("sort"),
		SortDir:  model.SortDirection(q.Get("dir")),
		Page:     queryInt(q.Get("page")),
		PerPage:  queryInt(q.Get("per_page")),
	}

	page, err := h.warehouse.ListItems(r.Context(), opts)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, page.Items, response.Meta{
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	})
}

// CreateItem handles POST /api/v1/items
func (h *WarehouseHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	item, err := h.warehouse.CreateItem(r.Context(), model.Item{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, item)
}

// UpdateItem handles PUT /api/v1/items/{id}
func (h *WarehouseHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid item id"))
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	item, err := h.warehouse.UpdateItem(r.Context(), model.Item{
		ID:       id,
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, item)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *WarehouseHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid item id"))
		return
	}

	if err := h.warehouse.DeleteItem(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Categories handles GET /api/v1/items/categories
func (h *WarehouseHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.warehouse.Categories(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, categories)
}

// ListTransactions handles GET /api/v1/transactions
func (h *WarehouseHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.TransactionListOptions{
		Status:  q.Get("status"),
		SortBy:  q.Get("sort"),
		SortDir: model.SortDirection(q.Get("dir")),
		Page:    queryInt(q.Get("page")),
		PerPage: queryInt(q.Get("per_page")),
	}

	page, err := h.warehouse.ListTransactions(r.Context(), opts)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, page.Transactions, response.Meta{
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	})
}

// CreateTransaction handles POST /api/v1/transactions
func (h *WarehouseHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	initiatedBy := r.Header.Get("X-User")
	if initiatedBy == "" {
		initiatedBy = h.defaultUser
	}

	tx, err := h.warehouse.CreateTransaction(r.Context(), req.Type, req.Items, initiatedBy)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, tx)
}

// ApproveTransaction handles POST /api/v1/transactions/{id}/approve
func (h *WarehouseHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.StatusApproved)
}

// RejectTransaction handles POST /api/v1/transactions/{id}/reject
func (h *WarehouseHandler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.StatusRejected)
}

func (h *WarehouseHandler) decide(w http.ResponseWriter, r *http.Request, decision model.TransactionStatus) {
	id, err := urlInt(r, "id")
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid transaction id"))
		return
	}

	tx, err := h.warehouse.DecideTransaction(r.Context(), id, decision)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, tx)
}

func urlInt(r *http.Request, param string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, param))
}

func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
