package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name      string
		spaces    []string
		attendees int
		want      int64
	}{
		{"peisestue", []string{"Peisestue"}, 0, 150000},
		{"salen", []string{"Salen"}, 0, 300000},
		{"hele lokalet", []string{"Hele lokalet"}, 0, 400000},
		{"bryllupspakke", []string{"Bryllupspakke"}, 0, 600000},
		{"small meeting per attendee", []string{"Små møter"}, 15, 45000},
		{"small meeting defaults to ten attendees", []string{"Små møter"}, 0, 30000},
		{"combined spaces sum", []string{"Peisestue", "Salen"}, 0, 450000},
		{"unknown space prices at zero", []string{"Kjelleren"}, 0, 0},
		{"unknown mixed with known", []string{"Kjelleren", "Peisestue"}, 0, 150000},
		{"no spaces", nil, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeAmount(tc.spaces, tc.attendees))
		})
	}
}
