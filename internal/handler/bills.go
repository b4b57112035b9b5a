package handler

import (
	"net/http"

	"github.com/gaushala-dev/milk-delivery/backend/internal/billing"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

func (h *Handler) clientBill(w http.ResponseWriter, r *http.Request) (*domain.ClientBill, bool) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)

	q := r.URL.Query()
	start, end, err := utils.ParseBillingPeriod(q.Get("start"), q.Get("end"), q.Get("month"), h.today())
	if err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	history, err := h.store.GetClientHistory(r.Context(), client.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, false
	}

	bill := billing.ForClient(client, history, start, end)
	return &bill, true
}

// GetBill rebuilds the bill for ?start&end, ?month=YYYY-MM, or month to date.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := h.clientBill(w, r)
	if !ok {
		return
	}

	h.successResponse(w, r, "bill ready", bill)
}

func (h *Handler) SendBill(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)
	if client.Email == "" {
		h.errorResponse(w, r, "client has no email address")
		return
	}

	bill, ok := h.clientBill(w, r)
	if !ok {
		return
	}

	if err := h.mail.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeMonthlyBill,
		To:   client.Email,
		Data: domain.MonthlyBillMailData{
			BusinessName: h.config.Business.Name,
			Bill:         *bill,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "bill queued for sending", bill)
}
