package http

import (
	"net/http"

	"github.com/polybooks/polybooks/internal/service"
)

type createPartyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=128"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address" validate:"max=256"`
}

func (r createPartyRequest) toParams() service.CreatePartyParams {
	return service.CreatePartyParams{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

type partyHandler struct {
	partySvc service.PartyService
	res      *responder
}

func newPartyHandler(partySvc service.PartyService, res *responder) *partyHandler {
	return &partyHandler{partySvc: partySvc, res: res}
}

func (h *partyHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	customer, err := h.partySvc.CreateCustomer(r.Context(), req.toParams())
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, customer)
}

func (h *partyHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathUUID(r, "customerID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	customer, err := h.partySvc.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, customer)
}

func (h *partyHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.partySvc.ListCustomers(r.Context(), queryInt(r, "offset", 0), queryInt(r, "limit", 50))
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, customers)
}

func (h *partyHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	vendor, err := h.partySvc.CreateVendor(r.Context(), req.toParams())
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, vendor)
}

func (h *partyHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathUUID(r, "vendorID")
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	vendor, err := h.partySvc.GetVendor(r.Context(), vendorID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, vendor)
}

func (h *partyHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.partySvc.ListVendors(r.Context(), queryInt(r, "offset", 0), queryInt(r, "limit", 50))
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, vendors)
}
