package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
)

func sampleBooking() *entity.Booking {
	return &entity.Booking{
		ID:             "bk-1",
		Date:           "2026-06-20",
		Time:           "18:00",
		Duration:       4,
		RequesterName:  "Kari Nordmann",
		RequesterEmail: "kari@example.com",
		Phone:          "41234567",
		EventType:      "Bursdag",
		Spaces:         []string{"Salen"},
		Attendees:      40,
		PaymentAmount:  300000,
		Status:         entity.StatusApproved,
	}
}

func TestRenderAgreement(t *testing.T) {
	t.Run("renders an unsigned agreement", func(t *testing.T) {
		pdf, err := RenderAgreement(sampleBooking())
		require.NoError(t, err)
		require.True(t, len(pdf) > 1000)
		require.Equal(t, "%PDF", string(pdf[:4]))
	})

	t.Run("renders a fully signed agreement", func(t *testing.T) {
		booking := sampleBooking()
		signedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		booking.Contract = &entity.Contract{
			Requester: &entity.Signature{Role: entity.RoleRequester, SignerName: "Kari Nordmann", SignedAt: signedAt},
			Landlord:  &entity.Signature{Role: entity.RoleLandlord, SignerName: "Styret", SignedAt: signedAt},
		}

		pdf, err := RenderAgreement(booking)
		require.NoError(t, err)
		require.Equal(t, "%PDF", string(pdf[:4]))
	})

	t.Run("tolerates sparse bookings", func(t *testing.T) {
		booking := &entity.Booking{
			ID:             "bk-2",
			Date:           "2026-06-21",
			Time:           "12:00",
			RequesterName:  "Ola",
			RequesterEmail: "ola@example.com",
		}

		pdf, err := RenderAgreement(booking)
		require.NoError(t, err)
		require.Equal(t, "%PDF", string(pdf[:4]))
	})
}
