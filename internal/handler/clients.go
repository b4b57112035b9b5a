package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string          `json:"name" validate:"required"`
		Phone          string          `json:"phone"`
		Email          string          `json:"email" validate:"omitempty,email"`
		Location       string          `json:"location"`
		TimeShift      string          `json:"timeShift" validate:"required,oneof=AM PM"`
		PricePerLitre  decimal.Decimal `json:"pricePerLitre"`
		Quantity       decimal.Decimal `json:"quantity"`
		PriorityStatus bool            `json:"priorityStatus"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	client, err := domain.NewClient(req.Name, domain.Shift(req.TimeShift), req.PricePerLitre, req.Quantity)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	client.Phone = req.Phone
	client.Email = req.Email
	client.Location = req.Location
	client.PriorityStatus = req.PriorityStatus

	if err := h.store.CreateClient(r.Context(), client); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "client created", client)
}

func (h *Handler) GetAllClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.GetAllClients(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "clients loaded", clients)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)
	h.successResponse(w, r, "client loaded", client)
}

// UpdateClient applies a partial update. A new timeShift only affects working sets
// from now on; records already written keep the shift they were marked under.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)

	var req struct {
		Name           *string          `json:"name" validate:"omitempty,min=1"`
		Phone          *string          `json:"phone"`
		Email          *string          `json:"email" validate:"omitempty,email"`
		Location       *string          `json:"location"`
		TimeShift      *string          `json:"timeShift" validate:"omitempty,oneof=AM PM"`
		PricePerLitre  *decimal.Decimal `json:"pricePerLitre"`
		Quantity       *decimal.Decimal `json:"quantity"`
		PriorityStatus *bool            `json:"priorityStatus"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Location != nil {
		client.Location = *req.Location
	}
	if req.TimeShift != nil {
		client.TimeShift = domain.Shift(*req.TimeShift)
	}
	if req.PricePerLitre != nil {
		client.PricePerLitre = *req.PricePerLitre
	}
	if req.Quantity != nil {
		client.Quantity = *req.Quantity
	}
	if req.PriorityStatus != nil {
		client.PriorityStatus = *req.PriorityStatus
	}

	if err := client.Validate(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.store.UpdateClient(r.Context(), client); err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "client updated", client)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)

	if err := h.store.DeleteClient(r.Context(), client.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "client deleted", nil)
}

func (h *Handler) GetClientHistory(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)

	history, err := h.store.GetClientHistory(r.Context(), client.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "history loaded", history)
}
