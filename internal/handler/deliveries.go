package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

func (h *Handler) GetWorkingSet(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	ws, err := h.ledger.GetWorkingSet(r.Context(), st.ID, date)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "deliveries loaded", ws)
}

type markRequest struct {
	Shift  string `json:"shift" validate:"omitempty,oneof=AM PM"`
	Reason string `json:"reason"`
}

func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, domain.StatusDelivered)
}

func (h *Handler) MarkNotDelivered(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, domain.StatusNotDelivered)
}

// mark rejects a request whose shift hint disagrees with the stored session. The body
// is optional.
func (h *Handler) mark(w http.ResponseWriter, r *http.Request, status domain.DeliveryStatus) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid client id")
		return
	}

	var req markRequest
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hint, _ := utils.ParseOptionalShift(req.Shift)
	if _, matches, err := h.sessions.Reconcile(r.Context(), st.ID, date, hint); err != nil {
		h.engineError(w, r, err)
		return
	} else if !matches {
		h.engineError(w, r, domain.ErrNotInWorkingSet)
		return
	}

	start := time.Now()
	var rec *domain.DeliveryRecord
	if status == domain.StatusDelivered {
		rec, err = h.ledger.MarkDelivered(r.Context(), st.ID, clientID, date)
	} else {
		rec, err = h.ledger.MarkNotDelivered(r.Context(), st.ID, clientID, date, req.Reason)
	}
	h.metrics.Observe(r.Context(), "mark", err == nil, time.Since(start))
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.metrics.DeliveryMarked(string(rec.Status), string(rec.Shift))

	h.successResponse(w, r, "delivery updated", rec)
}
