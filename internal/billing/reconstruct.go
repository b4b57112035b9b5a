// Package billing rebuilds a day-by-day bill from a client's sparse delivery history.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

// Reconstruct returns one entry per calendar day in [start, end]. A day is charged
// only if the last history event for it is Delivered; every other day, including days
// with no event at all, is NotTaken. An inverted period yields an empty bill.
func Reconstruct(history []domain.HistoryEvent, start, end domain.Date, pricePerLitre decimal.Decimal) domain.Bill {
	bill := domain.Bill{
		Start:         start,
		End:           end,
		Entries:       []domain.BillEntry{},
		Total:         decimal.Zero,
		TotalQuantity: decimal.Zero,
	}
	if start.After(end) {
		return bill
	}

	slot := make(map[domain.Date]int)
	for d := start; !d.After(end); d = d.AddDays(1) {
		slot[d] = len(bill.Entries)
		bill.Entries = append(bill.Entries, domain.BillEntry{Date: d, NotTaken: true})
	}

	for _, ev := range history {
		i, ok := slot[ev.Date]
		if !ok {
			continue
		}
		if ev.Status == domain.StatusDelivered {
			bill.Entries[i] = domain.BillEntry{
				Date:          ev.Date,
				Quantity:      ev.Quantity,
				PricePerLitre: pricePerLitre,
				Subtotal:      ev.Quantity.Mul(pricePerLitre),
			}
		} else {
			bill.Entries[i] = domain.BillEntry{Date: ev.Date, NotTaken: true}
		}
	}

	for _, e := range bill.Entries {
		if e.NotTaken {
			continue
		}
		bill.DeliveredDays++
		bill.Total = bill.Total.Add(e.Subtotal)
		bill.TotalQuantity = bill.TotalQuantity.Add(e.Quantity)
	}
	return bill
}

// MonthToDate is the default billing period: the first of today's month through today.
func MonthToDate(today domain.Date) (start, end domain.Date) {
	return today.FirstOfMonth(), today
}

// Month is the full calendar month containing any day of it.
func Month(day domain.Date) (start, end domain.Date) {
	return day.FirstOfMonth(), day.LastOfMonth()
}

// ForClient wraps a reconstructed bill with the client details a document needs.
func ForClient(c *domain.Client, history []domain.HistoryEvent, start, end domain.Date) domain.ClientBill {
	return domain.ClientBill{
		ClientName:     c.Name,
		ClientLocation: c.Location,
		ClientPhone:    c.Phone,
		Bill:           Reconstruct(history, start, end, c.PricePerLitre),
	}
}
