package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/service"
)

type createTransactionItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64   `json:"unit_price" validate:"gte=0"`
}

type createTransactionRequest struct {
	Type            model.TransactionType          `json:"transaction_type" validate:"required,enum"`
	ReferenceNumber string                         `json:"reference_number" validate:"max=64"`
	CustomerID      *uuid.UUID                     `json:"customer_id"`
	VendorID        *uuid.UUID                     `json:"vendor_id"`
	TotalAmount     float64                        `json:"total_amount" validate:"gte=0"`
	Status          model.TransactionStatus        `json:"status" validate:"omitempty,enum"`
	Notes           string                         `json:"notes" validate:"max=1024"`
	Items           []createTransactionItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateTransactionStatusRequest struct {
	Status model.TransactionStatus `json:"status" validate:"required,enum"`
}

type createTransactionResponse struct {
	Transaction model.Transaction          `json:"transaction"`
	Allocations []service.AllocationResult `json:"allocations"`
}

type transactionHandler struct {
	transactionSvc service.TransactionService
	res            *responder
}

func newTransactionHandler(transactionSvc service.TransactionService, res *responder) *transactionHandler {
	return &transactionHandler{transactionSvc: transactionSvc, res: res}
}

func (h *transactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	if req.Status == "" {
		req.Status = model.TransactionStatusCompleted
	}

	items := make([]service.CreateTransactionItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateTransactionItemParams{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	result, err := h.transactionSvc.CreateTransaction(r.Context(), service.CreateTransactionParams{
		Type:            req.Type,
		ReferenceNumber: req.ReferenceNumber,
		CustomerID:      req.CustomerID,
		VendorID:        req.VendorID,
		TotalAmount:     req.TotalAmount,
		Status:          req.Status,
		Notes:           req.Notes,
		Items:           items,
	})
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, createTransactionResponse{
		Transaction: result.Transaction,
		Allocations: result.Allocations,
	})
}

func (h *transactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	transaction, err := h.transactionSvc.GetTransaction(r.Context(), transactionID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, transaction)
}

func (h *transactionHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionSvc.GetTransactionByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, transaction)
}

func (h *transactionHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)

	transactions, err := h.transactionSvc.ListTransactions(r.Context(), offset, limit)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, transactions)
}

func (h *transactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	var req updateTransactionStatusRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	transaction, err := h.transactionSvc.UpdateTransactionStatus(r.Context(), transactionID, req.Status)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, transaction)
}
