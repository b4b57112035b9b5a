package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (domain.Date, bool) {
	date, err := utils.ParseDay(chi.URLParam(r, "date"), h.today())
	if err != nil {
		h.badRequest(w, r, err)
		return domain.Date{}, false
	}
	return date, true
}

// GetSession returns the stored session for the date. ?hint=AM|PM reports whether a
// shift remembered on the device still agrees with the server.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	hint, err := utils.ParseOptionalShift(r.URL.Query().Get("hint"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	sess, matches, err := h.sessions.Reconcile(r.Context(), st.ID, date, hint)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "session loaded", map[string]any{
		"session":     sess,
		"hintMatches": matches,
	})
}

func (h *Handler) SelectShift(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(StaffInfoCtx).(*domain.Staff)
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Shift string `json:"shift" validate:"required,oneof=AM PM"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	start := time.Now()
	sel, err := h.sessions.SelectShift(r.Context(), st.ID, date, domain.Shift(req.Shift))
	h.metrics.Observe(r.Context(), "select_shift", err == nil, time.Since(start))
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	h.metrics.ShiftSelected(string(sel.Session.Shift), string(sel.Previous))

	if sel.Changed() {
		slog.Info("shift changed", "staffID", st.ID, "date", date, "from", sel.Previous, "to", sel.Session.Shift)
	}

	h.successResponse(w, r, "shift selected", sel)
}
