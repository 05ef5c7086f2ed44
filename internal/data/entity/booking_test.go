package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPartitionKey(t *testing.T) {
	b := &Booking{Date: "2026-06-20"}
	require.Equal(t, "2026-06", b.PartitionKey())

	// A short date falls back to the current month rather than panicking
	short := &Booking{Date: "2026"}
	require.Equal(t, time.Now().UTC().Format("2006-01"), short.PartitionKey())
}

func TestOverlaps(t *testing.T) {
	base := &Booking{Date: "2026-06-20", Time: "18:00", Duration: 4}

	tests := []struct {
		name  string
		other *Booking
		want  bool
	}{
		{"same window", &Booking{Date: "2026-06-20", Time: "18:00", Duration: 4}, true},
		{"starts inside", &Booking{Date: "2026-06-20", Time: "20:00", Duration: 4}, true},
		{"ends inside", &Booking{Date: "2026-06-20", Time: "16:00", Duration: 4}, true},
		{"back to back after", &Booking{Date: "2026-06-20", Time: "22:00", Duration: 2}, false},
		{"back to back before", &Booking{Date: "2026-06-20", Time: "14:00", Duration: 4}, false},
		{"different day", &Booking{Date: "2026-06-21", Time: "18:00", Duration: 4}, false},
		{"zero duration defaults to four hours", &Booking{Date: "2026-06-20", Time: "21:00"}, true},
		{"unparseable time never overlaps", &Booking{Date: "2026-06-20", Time: "bogus"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, base.Overlaps(tc.other))
			require.Equal(t, tc.want, tc.other.Overlaps(base), "overlap is symmetric")
		})
	}
}

func TestClone(t *testing.T) {
	paidAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	original := &Booking{
		ID:     "bk-1",
		Date:   "2026-06-20",
		Spaces: []string{"Salen"},
		PaidAt: &paidAt,
		Contract: &Contract{
			Requester: &Signature{Role: RoleRequester, SignerName: "Kari"},
		},
	}

	clone := original.Clone()
	clone.Spaces[0] = "Peisestue"
	*clone.PaidAt = paidAt.Add(time.Hour)
	clone.Contract.Requester.SignerName = "Endret"

	require.Equal(t, "Salen", original.Spaces[0])
	require.Equal(t, paidAt, *original.PaidAt)
	require.Equal(t, "Kari", original.Contract.Requester.SignerName)

	var nilBooking *Booking
	require.Nil(t, nilBooking.Clone())
}
