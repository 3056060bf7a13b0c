package handler

import (
	"net/http"

	"schoolhub-warehouse-api/internal/service"
	"schoolhub-warehouse-api/pkg/response"
)

// DashboardHandler serves the warehouse dashboard aggregates.
type DashboardHandler struct {
	warehouse *service.WarehouseService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(warehouse *service.WarehouseService) *DashboardHandler {
	return &DashboardHandler{warehouse: warehouse}
}

// Summary handles GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.warehouse.Summary(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summary)
}

// Flow handles GET /api/v1/dashboard/flow
func (h *DashboardHandler) Flow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.warehouse.MonthlyFlow(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, flow)
}
