package handler

import (
	"net/http"
	"strconv"

	"github.com/gaushala-dev/milk-delivery/backend/internal/billing"
	"github.com/gaushala-dev/milk-delivery/backend/internal/dashboard"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

type staffPerformance struct {
	StaffID   int64  `json:"staffID"`
	StaffName string `json:"staffName"`
	dashboard.Summary
}

type dashboardView struct {
	Date            domain.Date             `json:"date"`
	Shift           domain.Shift            `json:"shift,omitempty"`
	Summary         dashboard.Summary       `json:"summary"`
	MonthToDate     dashboard.Summary       `json:"monthToDate"`
	ByStaff         []staffPerformance      `json:"byStaff"`
	ByShift         []dashboard.Group       `json:"byShift"`
	Reasons         []dashboard.ReasonCount `json:"reasons"`
	PriorityClients []*domain.Client        `json:"priorityClients"`
	ClientCount     int                     `json:"clientCount"`
	StaffCount      int                     `json:"staffCount"`
}

// GetDashboard summarises ?date (default today), optionally for one ?shift.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := utils.ParseDay(q.Get("date"), h.today())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	shift, err := utils.ParseOptionalShift(q.Get("shift"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx := r.Context()
	records, err := h.store.ListDeliveryRecordsByDate(ctx, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	records = dashboard.FilterShift(records, shift)

	start, end := billing.MonthToDate(date)
	monthRecords, err := h.store.ListDeliveryRecordsBetween(ctx, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	clients, err := h.store.GetAllClients(ctx)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	staff, err := h.store.GetAllStaff(ctx)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	names := make(map[string]string, len(staff))
	for _, st := range staff {
		names[strconv.FormatInt(st.ID, 10)] = st.Name
	}

	view := dashboardView{
		Date:            date,
		Shift:           shift,
		Summary:         dashboard.Aggregate(records),
		MonthToDate:     dashboard.Aggregate(dashboard.FilterShift(monthRecords, shift)),
		ByShift:         dashboard.AggregateBy(records, dashboard.ByShift),
		Reasons:         dashboard.Reasons(records),
		PriorityClients: make([]*domain.Client, 0),
		ClientCount:     len(clients),
		StaffCount:      len(staff),
	}

	for _, g := range dashboard.AggregateBy(records, dashboard.ByStaff) {
		id, _ := strconv.ParseInt(g.Key, 10, 64)
		name, ok := names[g.Key]
		if !ok {
			name = "staff #" + g.Key
		}
		view.ByStaff = append(view.ByStaff, staffPerformance{StaffID: id, StaffName: name, Summary: g.Summary})
	}
	if view.ByStaff == nil {
		view.ByStaff = make([]staffPerformance, 0)
	}

	for _, c := range clients {
		if c.PriorityStatus {
			view.PriorityClients = append(view.PriorityClients, c)
		}
	}

	h.successResponse(w, r, "dashboard loaded", view)
}
