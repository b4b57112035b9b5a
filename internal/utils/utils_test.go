package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

var today = domain.Date{Year: 2024, Month: 3, Day: 17}

func TestParseBillingPeriod(t *testing.T) {
	tests := []struct {
		name              string
		start, end, month string
		wantStart         string
		wantEnd           string
	}{
		{"defaults to month to date", "", "", "", "2024-03-01", "2024-03-17"},
		{"explicit range", "2024-02-10", "2024-02-20", "", "2024-02-10", "2024-02-20"},
		{"open end", "2024-03-05", "", "", "2024-03-05", "2024-03-17"},
		{"whole month", "", "", "2024-02", "2024-02-01", "2024-02-29"},
		{"inverted kept", "2024-03-10", "2024-03-01", "", "2024-03-10", "2024-03-01"},
		{"inverted wide kept", "9999-12-31", "0001-01-01", "", "9999-12-31", "0001-01-01"},
		{"longest allowed", "2023-03-18", "2024-03-17", "", "2023-03-18", "2024-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseBillingPeriod(tt.start, tt.end, tt.month, today)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.String())
			assert.Equal(t, tt.wantEnd, end.String())
		})
	}
}

func TestParseBillingPeriodErrors(t *testing.T) {
	_, _, err := ParseBillingPeriod("", "", "2024-13", today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, _, err = ParseBillingPeriod("03/01/2024", "", "", today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, _, err = ParseBillingPeriod("2024-03-01", "", "2024-03", today)
	assert.Error(t, err)

	_, _, err = ParseBillingPeriod("2023-03-17", "2024-03-17", "", today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, _, err = ParseBillingPeriod("0001-01-01", "9999-12-31", "", today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("today", today)
	require.NoError(t, err)
	assert.Equal(t, today, d)

	d, err = ParseDay("2024-01-31", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())

	_, err = ParseDay("yesterday", today)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestParseOptionalShift(t *testing.T) {
	s, err := ParseOptionalShift("")
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = ParseOptionalShift("PM")
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftPM, s)

	_, err = ParseOptionalShift("pm")
	assert.ErrorIs(t, err, domain.ErrInvalidShift)
}

func TestGenerators(t *testing.T) {
	assert.Equal(t, 12, utf8.RuneCountInString(GenerateRandomPassword(12)))

	username := GenerateUsernameFromName("Ravi Sharma")
	assert.True(t, strings.HasPrefix(username, "ravi"), username)

	c := GenerateRandomClient()
	require.NoError(t, c.Validate())
	assert.True(t, strings.HasPrefix(GenerateRandomPhone(), "+91"))
}
