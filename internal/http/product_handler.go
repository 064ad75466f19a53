package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polybooks/polybooks/internal/service"
)

type createProductRequest struct {
	Sku         string  `json:"sku" validate:"required,min=1,max=64"`
	Name        string  `json:"name" validate:"required,min=1,max=128"`
	Description string  `json:"description" validate:"max=1024"`
	Category    string  `json:"category" validate:"max=64"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	CostPrice   float64 `json:"cost_price" validate:"gte=0"`
}

type updateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=128"`
	Description string  `json:"description" validate:"max=1024"`
	Category    string  `json:"category" validate:"max=64"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	CostPrice   float64 `json:"cost_price" validate:"gte=0"`
}

type productHandler struct {
	productSvc   service.ProductService
	inventorySvc service.InventoryService
	res          *responder
}

func newProductHandler(productSvc service.ProductService, inventorySvc service.InventoryService, res *responder) *productHandler {
	return &productHandler{
		productSvc:   productSvc,
		inventorySvc: inventorySvc,
		res:          res,
	}
}

func (h *productHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)

	products, err := h.productSvc.ListProducts(r.Context(), offset, limit)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, products)
}

func (h *productHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Sku:         req.Sku,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		CostPrice:   req.CostPrice,
	})
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, product)
}

func (h *productHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), productID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) GetBySku(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	product, err := h.productSvc.GetProductBySku(r.Context(), sku)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	var req updateProductRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), productID, service.UpdateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		CostPrice:   req.CostPrice,
	})
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	if err := h.productSvc.DeleteProduct(r.Context(), productID); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusNoContent, nil)
}

func (h *productHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "productID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	items, err := h.inventorySvc.ListByProduct(r.Context(), productID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, items)
}
