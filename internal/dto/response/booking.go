package response

import (
	"time"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
)

// CalendarEntry is the public view of a booking: availability only, no PII.
// An approved booking is displayed as "booked".
type CalendarEntry struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Status   string `json:"status"`
}

func ToCalendarEntry(b *entity.Booking) CalendarEntry {
	status := string(b.Status)
	if b.Status == entity.StatusApproved {
		status = "booked"
	}
	return CalendarEntry{
		ID:       b.ID,
		Date:     b.Date,
		Time:     b.Time,
		Duration: b.Duration,
		Status:   status,
	}
}

type CalendarResponse struct {
	Bookings []CalendarEntry `json:"bookings"`
}

type AdminCalendarResponse struct {
	Bookings []*entity.Booking `json:"bookings"`
}

type CreatedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SignResponse struct {
	SignedAt        time.Time `json:"signedAt"`
	BothSigned      bool      `json:"bothSigned"`
	PaymentRequired bool      `json:"paymentRequired"`
}

type VippsInitiateResponse struct {
	URL       string `json:"url"`
	OrderID   string `json:"orderId"`
	AmountNOK int64  `json:"amount"`
	BookingID string `json:"bookingId,omitempty"`
}

type VippsStatusResponse struct {
	Status string `json:"status"`
}
