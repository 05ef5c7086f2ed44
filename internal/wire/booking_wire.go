package wire

import (
	"github.com/go-chi/chi/v5"

	"github.com/oyvindfi/bjorkvang/internal/adaptor"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/booking - Submit a booking request (enters the approval queue)
	r.Post("/api/booking", bookingHandler.CreateBooking)

	// GET /api/booking/calendar - Availability calendar, no personal data
	r.Get("/api/booking/calendar", bookingHandler.Calendar)

	// GET /api/getBooking?id= - Full record for the contract page
	r.Get("/api/getBooking", bookingHandler.GetBooking)

	// POST /api/signBooking - Record a contract signature
	r.Post("/api/signBooking", bookingHandler.SignBooking)

	// GET /api/booking/contract?id= - Rental agreement as PDF
	r.Get("/api/booking/contract", bookingHandler.Contract)

	// ==================== BOARD ROUTES ====================
	// The approval links in the board email are plain GETs; the admin page
	// calls the same operations with POST.
	r.Get("/api/booking/approve", bookingHandler.Approve)
	r.Post("/api/booking/approve", bookingHandler.Approve)
	r.Get("/api/booking/reject", bookingHandler.Reject)
	r.Post("/api/booking/reject", bookingHandler.Reject)

	// GET /api/booking/admin - Full records for the admin calendar
	r.Get("/api/booking/admin", bookingHandler.Admin)

	// POST /api/booking/remind - Re-send the contract reminder
	r.Post("/api/booking/remind", bookingHandler.Remind)
}
