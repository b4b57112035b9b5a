package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryStatus string

const (
	StatusPending      DeliveryStatus = "Pending"
	StatusDelivered    DeliveryStatus = "Delivered"
	StatusNotDelivered DeliveryStatus = "Not Delivered"
)

// DeliveryRecord is the daily ledger row keyed by (StaffID, ClientID, Date). Shift,
// Quantity and PricePerLitre are copied from the session and client when the record is
// written, so later edits to the client do not rewrite past days.
type DeliveryRecord struct {
	StaffID       int64           `json:"staffID"`
	ClientID      int64           `json:"clientID"`
	Date          Date            `json:"date"`
	Shift         Shift           `json:"shift"`
	Status        DeliveryStatus  `json:"status"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerLitre decimal.Decimal `json:"pricePerLitre"`
	Reason        string          `json:"reason,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (r *DeliveryRecord) Validate() error {
	switch {
	case r.StaffID <= 0:
		return missingField("delivery record", "staffID")
	case r.ClientID <= 0:
		return missingField("delivery record", "clientID")
	case r.Date.IsZero():
		return missingField("delivery record", "date")
	case !r.Shift.Valid():
		return missingField("delivery record", "shift")
	case r.Status != StatusDelivered && r.Status != StatusNotDelivered:
		return missingField("delivery record", "status Delivered or Not Delivered")
	}
	return nil
}

// Revenue is quantity times price for delivered records and zero otherwise.
func (r *DeliveryRecord) Revenue() decimal.Decimal {
	if r.Status != StatusDelivered {
		return decimal.Zero
	}
	return r.Quantity.Mul(r.PricePerLitre)
}

// HistoryEvent is one entry of a client's append-only delivery history. Several events
// may share a date; readers resolve them by position.
type HistoryEvent struct {
	Date       Date            `json:"date"`
	Status     DeliveryStatus  `json:"status"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason,omitempty"`
	RecordedAt time.Time       `json:"recordedAt"`
}

func (r *DeliveryRecord) HistoryEvent() HistoryEvent {
	return HistoryEvent{
		Date:       r.Date,
		Status:     r.Status,
		Quantity:   r.Quantity,
		Reason:     r.Reason,
		RecordedAt: r.UpdatedAt,
	}
}
