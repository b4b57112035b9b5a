package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

type assignmentRequest struct {
	StaffID  int64 `json:"staffID" validate:"required,gt=0"`
	ClientID int64 `json:"clientID" validate:"required,gt=0"`
}

func (h *Handler) readAssignment(w http.ResponseWriter, r *http.Request) (*assignmentRequest, bool) {
	var req assignmentRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	return &req, true
}

func (h *Handler) GetAllAssignments(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.GetAllAssignments(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignments loaded", all)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readAssignment(w, r)
	if !ok {
		return
	}

	start := time.Now()
	a, err := h.index.Assign(r.Context(), req.StaffID, req.ClientID)
	h.metrics.Observe(r.Context(), "assign", err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAssigned) {
			h.metrics.AssignmentConflict()
		}
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "client assigned", a)
}

func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readAssignment(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := h.index.Unassign(r.Context(), req.StaffID, req.ClientID)
	h.metrics.Observe(r.Context(), "unassign", err == nil, time.Since(start))
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "client unassigned", nil)
}
