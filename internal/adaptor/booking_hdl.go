package adaptor

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/contract"
	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/internal/dto/response"
	"github.com/oyvindfi/bjorkvang/internal/usecase"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/booking. The request is accepted into the
// approval queue, so the success status is 202.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.RawJSON(w, http.StatusAccepted, response.CreatedResponse{
		ID:     booking.ID,
		Status: string(booking.Status),
	})
}

// Calendar handles GET /api/booking/calendar (public, availability only)
func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListPublic(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "calendar")
		return
	}

	utils.RawJSON(w, http.StatusOK, response.CalendarResponse{Bookings: entries})
}

// Admin handles GET /api/booking/admin (full records)
func (h *BookingHandler) Admin(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListAdmin(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "admin list")
		return
	}

	utils.RawJSON(w, http.StatusOK, response.AdminCalendarResponse{Bookings: bookings})
}

// Approve handles GET and POST /api/booking/approve?id=. GET serves the
// board's email link and answers with a small HTML page.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.decisionError(w, r, http.StatusBadRequest, "Booking ID is required")
		return
	}

	booking, err := h.service.Approve(r.Context(), id)
	if err != nil {
		h.decisionServiceError(w, r, err, "approve booking")
		return
	}

	if r.Method == http.MethodGet {
		utils.ResponseHTML(w, http.StatusOK, decisionPage(
			"Booking godkjent",
			fmt.Sprintf("Bookingen %s den %s kl %s er godkjent. Leietaker har fått beskjed på e-post.",
				booking.RequesterName, booking.Date, booking.Time),
		))
		return
	}
	utils.ResponseSuccess(w, "booking approved", response.ToCalendarEntry(booking))
}

// Reject handles GET and POST /api/booking/reject?id=. POST carries an
// optional reason that is forwarded to the requester.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.decisionError(w, r, http.StatusBadRequest, "Booking ID is required")
		return
	}

	var req request.RejectBookingRequest
	if r.Method == http.MethodPost && r.Body != nil {
		// The reason is optional; an empty or malformed body is not an error
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	booking, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.decisionServiceError(w, r, err, "reject booking")
		return
	}

	if r.Method == http.MethodGet {
		utils.ResponseHTML(w, http.StatusOK, decisionPage(
			"Booking avslått",
			fmt.Sprintf("Bookingen %s den %s kl %s er avslått. Leietaker har fått beskjed på e-post.",
				booking.RequesterName, booking.Date, booking.Time),
		))
		return
	}
	utils.ResponseSuccess(w, "booking rejected", response.ToCalendarEntry(booking))
}

// Remind handles POST /api/booking/remind
func (h *BookingHandler) Remind(w http.ResponseWriter, r *http.Request) {
	var req request.RemindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.ID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	if err := h.service.Remind(r.Context(), req.ID, req.Comment); err != nil {
		h.handleServiceError(w, err, "send reminder")
		return
	}

	utils.ResponseSuccess(w, "reminder sent", nil)
}

// GetBooking handles GET /api/getBooking?id= (contract page lookup)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.RawJSON(w, http.StatusOK, booking)
}

// SignBooking handles POST /api/signBooking
func (h *BookingHandler) SignBooking(w http.ResponseWriter, r *http.Request) {
	var req request.SignBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.RecordSignature(r.Context(), &req, usecase.SignatureMetadata{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.handleServiceError(w, err, "sign booking")
		return
	}

	utils.RawJSON(w, http.StatusOK, response.SignResponse{
		SignedAt:        result.SignedAt,
		BothSigned:      result.BothSigned,
		PaymentRequired: result.PaymentRequired,
	})
}

// Contract handles GET /api/booking/contract?id= and serves the rental
// agreement as PDF.
func (h *BookingHandler) Contract(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get contract")
		return
	}

	pdf, err := contract.RenderAgreement(booking)
	if err != nil {
		h.log.Error("Failed to render agreement", zap.Error(err), zap.String("booking_id", id))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=\"leieavtale-%s.pdf\"", booking.Date))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// handleServiceError maps the error taxonomy onto HTTP statuses. Internal
// detail never reaches the response body.
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case domain.IsValidation(err):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case domain.IsNotFound(err):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case domain.IsDelivery(err):
		h.log.Error(operation+" failed - delivery", zap.Error(err))
		utils.ResponseInternalError(w, "Failed to send email")

	default:
		h.log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decisionServiceError is handleServiceError for the approve/reject pair,
// which must answer email-link GETs with HTML.
func (h *BookingHandler) decisionServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if r.Method != http.MethodGet {
		h.handleServiceError(w, err, operation)
		return
	}
	switch {
	case domain.IsNotFound(err):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		h.decisionError(w, r, http.StatusNotFound, "Fant ikke bookingen. Den kan være slettet.")
	default:
		h.log.Error(operation+" failed", zap.Error(err))
		h.decisionError(w, r, http.StatusInternalServerError, "Noe gikk galt. Prøv igjen senere.")
	}
}

func (h *BookingHandler) decisionError(w http.ResponseWriter, r *http.Request, code int, message string) {
	if r.Method == http.MethodGet {
		utils.ResponseHTML(w, code, decisionPage("Feil", message))
		return
	}
	utils.ResponseJSON(w, code, false, message, nil, nil)
}

// decisionPage is the minimal HTML shown after clicking an email link.
// Body text can carry requester-supplied names, so everything is escaped.
func decisionPage(title, body string) string {
	title = html.EscapeString(title)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="no">
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family: sans-serif; max-width: 600px; margin: 40px auto; padding: 0 16px;">
<h1>%s</h1>
<p>%s</p>
<p>Du kan lukke denne siden.</p>
</body>
</html>`, title, title, html.EscapeString(body))
}

// clientIP prefers the proxy-forwarded address when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
