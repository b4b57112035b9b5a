// Package dashboard folds daily delivery records into the admin console's figures.
package dashboard

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

type Summary struct {
	Delivered     int             `json:"delivered"`
	NotDelivered  int             `json:"notDelivered"`
	Total         int             `json:"totalDeliveries"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	SuccessRate   float64         `json:"successRate"` // percent, 0 when nothing was recorded
}

type GroupBy int

const (
	ByStaff GroupBy = iota
	ByShift
)

type Group struct {
	Key string `json:"key"`
	Summary
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Aggregate folds records into a single summary. Pending clients have no record and
// do not count. Quantity and revenue only accumulate over delivered records.
// Revenue uses the price stored on each record when it was marked, not the client's
// current price.
func Aggregate(records []*domain.DeliveryRecord) Summary {
	s := Summary{TotalQuantity: decimal.Zero, TotalRevenue: decimal.Zero}
	for _, r := range records {
		switch r.Status {
		case domain.StatusDelivered:
			s.Delivered++
			s.TotalQuantity = s.TotalQuantity.Add(r.Quantity)
			s.TotalRevenue = s.TotalRevenue.Add(r.Revenue())
		case domain.StatusNotDelivered:
			s.NotDelivered++
		}
	}
	s.Total = s.Delivered + s.NotDelivered
	s.SuccessRate = SuccessRate(s.Delivered, s.NotDelivered)
	return s
}

func SuccessRate(delivered, notDelivered int) float64 {
	total := delivered + notDelivered
	if total == 0 {
		return 0
	}
	return float64(delivered) / float64(total) * 100
}

// AggregateBy runs Aggregate per staff id or per shift. Groups are sorted by key.
func AggregateBy(records []*domain.DeliveryRecord, by GroupBy) []Group {
	buckets := make(map[string][]*domain.DeliveryRecord)
	for _, r := range records {
		buckets[groupKey(r, by)] = append(buckets[groupKey(r, by)], r)
	}

	groups := make([]Group, 0, len(buckets))
	for k, rs := range buckets {
		groups = append(groups, Group{Key: k, Summary: Aggregate(rs)})
	}
	slices.SortFunc(groups, func(a, b Group) int {
		if by == ByStaff {
			ai, _ := strconv.ParseInt(a.Key, 10, 64)
			bi, _ := strconv.ParseInt(b.Key, 10, 64)
			return cmp.Compare(ai, bi)
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return groups
}

func groupKey(r *domain.DeliveryRecord, by GroupBy) string {
	if by == ByShift {
		return string(r.Shift)
	}
	return strconv.FormatInt(r.StaffID, 10)
}

// FilterShift keeps records of the given shift. An empty shift keeps everything.
func FilterShift(records []*domain.DeliveryRecord, shift domain.Shift) []*domain.DeliveryRecord {
	if shift == "" {
		return records
	}
	out := make([]*domain.DeliveryRecord, 0, len(records))
	for _, r := range records {
		if r.Shift == shift {
			out = append(out, r)
		}
	}
	return out
}

// Reasons counts non-delivery reasons, most frequent first. Blank reasons are
// counted under "Unspecified".
func Reasons(records []*domain.DeliveryRecord) []ReasonCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Status != domain.StatusNotDelivered {
			continue
		}
		reason := r.Reason
		if reason == "" {
			reason = "Unspecified"
		}
		counts[reason]++
	}

	out := make([]ReasonCount, 0, len(counts))
	for reason, n := range counts {
		out = append(out, ReasonCount{Reason: reason, Count: n})
	}
	slices.SortFunc(out, func(a, b ReasonCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Reason, b.Reason)
	})
	return out
}
