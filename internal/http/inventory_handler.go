package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/service"
)

type addInventoryRequest struct {
	ProductID uuid.UUID             `json:"product_id" validate:"required"`
	Quantity  int                   `json:"quantity" validate:"gte=0"`
	Location  string                `json:"location" validate:"max=128"`
	Status    model.InventoryStatus `json:"status" validate:"omitempty,oneof=available reserved damaged returned"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type inventoryHandler struct {
	inventorySvc service.InventoryService
	res          *responder
}

func newInventoryHandler(inventorySvc service.InventoryService, res *responder) *inventoryHandler {
	return &inventoryHandler{inventorySvc: inventorySvc, res: res}
}

func (h *inventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addInventoryRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	if req.Location == "" {
		req.Location = "Main Warehouse"
	}
	if req.Status == "" {
		req.Status = model.InventoryStatusAvailable
	}

	item, err := h.inventorySvc.AddInventory(r.Context(), service.AddInventoryParams{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Location:  req.Location,
		Status:    req.Status,
	})
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, item)
}

func (h *inventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "itemID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	var req setQuantityRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	item, err := h.inventorySvc.SetQuantity(r.Context(), itemID, req.Quantity)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, item)
}

func (h *inventoryHandler) ListDueForRecount(w http.ResponseWriter, r *http.Request) {
	thresholdDays := queryInt(r, "threshold_days", 0)

	items, err := h.inventorySvc.DueForRecount(r.Context(), thresholdDays)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, items)
}
