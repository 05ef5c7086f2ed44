package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidBookingDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"valid date", "2026-06-20", true},
		{"leap day", "2028-02-29", true},
		{"month out of range", "2026-13-01", false},
		{"day out of range", "2026-02-30", false},
		{"non-leap february 29", "2026-02-29", false},
		{"wrong separator", "2026/06/20", false},
		{"norwegian layout", "20.06.2026", false},
		{"missing zero padding", "2026-6-20", false},
		{"empty", "", false},
		{"too far out", time.Now().AddDate(2, 0, 1).Format("2006-01-02"), false},
		{"just inside the bound", time.Now().AddDate(1, 11, 0).Format("2006-01-02"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ValidBookingDate(tc.date), tc.date)
		})
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"kari@example.com", "post@bjorkvang.no", "a.b+c@sub.domain.org"}
	for _, email := range valid {
		require.True(t, ValidEmail(email), email)
	}

	invalid := []string{"", "plain", "@example.com", "kari@", "kari@example", "kari @example.com", "kari@example.c"}
	for _, email := range invalid {
		require.False(t, ValidEmail(email), email)
	}
}

func TestBookingTimeValidation(t *testing.T) {
	type form struct {
		Time string `validate:"required,bookingtime"`
	}

	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"00:00", true},
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"18:60", false},
		{"9:30", false},
		{"18.00", false},
		{"1800", false},
	} {
		errs := ValidateStruct(form{Time: tc.value})
		if tc.ok {
			require.Empty(t, errs, tc.value)
		} else {
			require.NotEmpty(t, errs, tc.value)
		}
	}
}

func TestFormatValidationErrors(t *testing.T) {
	require.Empty(t, FormatValidationErrors(nil))

	out := FormatValidationErrors(map[string]string{"Date": "Must be a valid date (YYYY-MM-DD) within 2 years"})
	require.Equal(t, "Date: Must be a valid date (YYYY-MM-DD) within 2 years", out)
}
