package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

// MaxBillingDays bounds an explicit start/end range; one bill holds one slot per day.
const MaxBillingDays = 366

// ParseBillingPeriod reads the bill query. month (YYYY-MM) selects a whole calendar
// month; otherwise start and end are used, each defaulting to the month-to-date bounds.
// An inverted period is returned as is, the reconstructor turns it into an empty bill.
// A range longer than MaxBillingDays fails with domain.ErrInvalidDate.
func ParseBillingPeriod(start, end, month string, today domain.Date) (domain.Date, domain.Date, error) {
	if month != "" {
		if start != "" || end != "" {
			return domain.Date{}, domain.Date{}, errors.New("month cannot be combined with start or end")
		}
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return domain.Date{}, domain.Date{}, fmt.Errorf("%w: month %q", domain.ErrInvalidDate, month)
		}
		first := domain.DateOf(t)
		return first, first.LastOfMonth(), nil
	}

	from, to := today.FirstOfMonth(), today
	if start != "" {
		d, err := domain.ParseDate(start)
		if err != nil {
			return domain.Date{}, domain.Date{}, err
		}
		from = d
	}
	if end != "" {
		d, err := domain.ParseDate(end)
		if err != nil {
			return domain.Date{}, domain.Date{}, err
		}
		to = d
	}
	if from.AddDays(MaxBillingDays - 1).Before(to) {
		return domain.Date{}, domain.Date{}, fmt.Errorf("%w: period %s to %s is longer than %d days", domain.ErrInvalidDate, from, to, MaxBillingDays)
	}
	return from, to, nil
}

// ParseDay accepts YYYY-MM-DD or the word "today", resolved against today.
func ParseDay(s string, today domain.Date) (domain.Date, error) {
	if s == "" || s == "today" {
		return today, nil
	}
	return domain.ParseDate(s)
}

// ParseOptionalShift accepts an empty string as "no shift given".
func ParseOptionalShift(s string) (domain.Shift, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseShift(s)
}
