package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
	"github.com/oyvindfi/bjorkvang/internal/data/repository"
	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/internal/dto/response"
	"github.com/oyvindfi/bjorkvang/internal/mail"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

// SignatureMetadata carries request context captured with a signature.
type SignatureMetadata struct {
	IPAddress string
	UserAgent string
}

// SignResult reports the outcome of RecordSignature to the handler.
type SignResult struct {
	Booking         *entity.Booking
	SignedAt        time.Time
	BothSigned      bool
	PaymentRequired bool
}

// BookingService is the sole authority over booking state transitions.
// Mutations persist first; email is a best-effort side effect that is logged
// on failure and never rolls the state change back.
type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error)
	Approve(ctx context.Context, id string) (*entity.Booking, error)
	Reject(ctx context.Context, id, reason string) (*entity.Booking, error)
	RecordSignature(ctx context.Context, req *request.SignBookingRequest, meta SignatureMetadata) (*SignResult, error)
	MarkPaid(ctx context.Context, id, orderID string) (*entity.Booking, error)
	Remind(ctx context.Context, id, comment string) error
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
	ListPublic(ctx context.Context) ([]response.CalendarEntry, error)
	ListAdmin(ctx context.Context) ([]*entity.Booking, error)
}

type bookingService struct {
	repo   *repository.Repository
	sender mail.Sender
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewBookingService(repo *repository.Repository, sender mail.Sender, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		sender: sender,
		config: config,
		log:    log.With(zap.String("service", "booking")),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  utils.GenerateBookingID,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, domain.ValidationError{Msg: utils.FormatValidationErrors(errs)}
	}
	if !utils.ValidEmail(strings.TrimSpace(req.RequesterEmail)) {
		return nil, domain.ValidationError{Field: "requesterEmail", Msg: "invalid email format"}
	}

	now := s.now()
	booking := &entity.Booking{
		ID:             s.newID(),
		Date:           strings.TrimSpace(req.Date),
		Time:           strings.TrimSpace(req.Time),
		Duration:       req.Duration,
		RequesterName:  strings.TrimSpace(req.RequesterName),
		RequesterEmail: strings.TrimSpace(req.RequesterEmail),
		Phone:          strings.TrimSpace(req.Phone),
		EventType:      req.EventType,
		Spaces:         req.Spaces,
		Services:       req.Services,
		Attendees:      req.Attendees,
		Message:        strings.TrimSpace(req.Message),
		PaymentStatus:  entity.PaymentUnpaid,
		PaymentOrderID: req.PaymentOrderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if booking.Duration == 0 {
		booking.Duration = 4
	}

	// Price is fixed here from the published table; later capture must use
	// this stored amount, never a recomputation from mutated spaces.
	if len(booking.Spaces) > 0 {
		booking.PaymentAmount = ComputeAmount(booking.Spaces, booking.Attendees)
	}

	// Pre-paid Vipps bookings skip the approval queue.
	if req.PaymentStatus == string(entity.PaymentPaid) {
		booking.PaymentStatus = entity.PaymentPaid
		booking.PaidAt = &now
		booking.Status = entity.StatusApproved
	} else {
		booking.Status = entity.StatusPending
	}

	if overlap := s.findApprovedOverlap(ctx, booking); overlap != nil {
		// Advisory only: the board resolves conflicts by email, matching the
		// client-side calendar check.
		s.log.Warn("Booking overlaps an approved booking",
			zap.String("booking_id", booking.ID),
			zap.String("overlaps", overlap.ID),
			zap.String("date", booking.Date),
		)
	}

	if err := s.repo.Booking.Save(ctx, booking); err != nil {
		s.log.Error("Failed to save booking", zap.Error(err), zap.String("booking_id", booking.ID))
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("date", booking.Date),
		zap.String("status", string(booking.Status)),
		zap.Int64("payment_amount", booking.PaymentAmount),
	)

	s.notifyBoard(ctx, booking)
	s.notifyRequesterConfirmation(ctx, booking)

	return booking, nil
}

func (s *bookingService) findApprovedOverlap(ctx context.Context, booking *entity.Booking) *entity.Booking {
	existing, err := s.repo.Booking.List(ctx, repository.ListFilter{
		StartDate: booking.Date,
		EndDate:   booking.Date,
	})
	if err != nil {
		s.log.Warn("Overlap check skipped", zap.Error(err))
		return nil
	}
	for _, other := range existing {
		if other.ID == booking.ID || other.Status != entity.StatusApproved {
			continue
		}
		if booking.Overlaps(other) {
			return other
		}
	}
	return nil
}

func (s *bookingService) Approve(ctx context.Context, id string) (*entity.Booking, error) {
	booking, swapped, err := s.repo.Booking.UpdateStatusIf(ctx, id, "", entity.StatusPending, entity.StatusApproved)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: id}
	}

	if !swapped {
		// Already approved (or rejected): idempotent, no duplicate email
		s.log.Info("Approve was a no-op",
			zap.String("booking_id", id),
			zap.String("status", string(booking.Status)),
		)
		return booking, nil
	}

	s.log.Info("Booking approved", zap.String("booking_id", id))

	subject, text, html := mail.Approved(booking, s.contractLink(booking.ID))
	s.send(ctx, booking.RequesterEmail, subject, text, html)

	return booking, nil
}

func (s *bookingService) Reject(ctx context.Context, id, reason string) (*entity.Booking, error) {
	if len(reason) > 1000 {
		cut := 1000
		// Back up to a rune boundary so æ/ø/å are never split
		for cut > 0 && !utf8.RuneStart(reason[cut]) {
			cut--
		}
		reason = reason[:cut]
	}

	booking, swapped, err := s.repo.Booking.UpdateStatusIf(ctx, id, "", entity.StatusPending, entity.StatusRejected)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: id}
	}

	if !swapped && booking.Status == entity.StatusApproved {
		// Cancelling a previously approved booking
		booking, swapped, err = s.repo.Booking.UpdateStatusIf(ctx, id, "", entity.StatusApproved, entity.StatusRejected)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, domain.NotFoundError{Resource: "booking", ID: id}
		}
		if swapped && booking.PaymentStatus == entity.PaymentPaid {
			// No refund path exists; the board settles this manually.
			s.log.Warn("Rejected a paid booking, manual refund needed",
				zap.String("booking_id", id),
				zap.String("payment_order_id", booking.PaymentOrderID),
			)
		}
	}

	if !swapped {
		s.log.Info("Reject was a no-op",
			zap.String("booking_id", id),
			zap.String("status", string(booking.Status)),
		)
		return booking, nil
	}

	s.log.Info("Booking rejected", zap.String("booking_id", id), zap.Bool("has_reason", reason != ""))

	subject, text, html := mail.Rejected(booking, reason)
	s.send(ctx, booking.RequesterEmail, subject, text, html)

	return booking, nil
}

func (s *bookingService) RecordSignature(ctx context.Context, req *request.SignBookingRequest, meta SignatureMetadata) (*SignResult, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, domain.ValidationError{Msg: utils.FormatValidationErrors(errs)}
	}

	role := entity.SignerRole(req.Role)
	if req.Role == "" {
		// Older contract pages sign without a role
		role = entity.RoleRequester
	}
	if !role.Valid() {
		return nil, domain.ValidationError{Field: "role", Msg: fmt.Sprintf("unknown role %q", req.Role)}
	}

	before, err := s.repo.Booking.Get(ctx, req.ID, "")
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: req.ID}
	}
	wasBothSigned := before.Contract.BothSigned()

	signedAt := s.now()
	sig := entity.Signature{
		Role:          role,
		SignerName:    strings.TrimSpace(req.SignerName),
		SignatureData: req.SignatureData,
		SignedAt:      signedAt,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	}

	booking, err := s.repo.Booking.AddSignature(ctx, req.ID, before.PartitionKey(), sig)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: req.ID}
	}

	bothSigned := booking.Contract.BothSigned()
	paymentRequired := bothSigned && booking.PaymentStatus != entity.PaymentPaid

	s.log.Info("Contract signature recorded",
		zap.String("booking_id", booking.ID),
		zap.String("role", string(role)),
		zap.Bool("both_signed", bothSigned),
	)

	// Notify exactly on the not-both -> both transition; a re-signed role
	// with both already present must not re-notify.
	if paymentRequired && !wasBothSigned {
		subject, text, html := mail.PaymentRequest(booking, s.paymentLink(booking.ID))
		s.send(ctx, booking.RequesterEmail, subject, text, html)
	}

	return &SignResult{
		Booking:         booking,
		SignedAt:        signedAt,
		BothSigned:      bothSigned,
		PaymentRequired: paymentRequired,
	}, nil
}

func (s *bookingService) MarkPaid(ctx context.Context, id, orderID string) (*entity.Booking, error) {
	booking, marked, err := s.repo.Booking.MarkPaid(ctx, id, "", orderID, s.now())
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: id}
	}

	// Status polls and the provider callback both report the same capture;
	// only the first one confirms, like Approve and Reject no-ops.
	if !marked {
		s.log.Info("Mark paid was a no-op",
			zap.String("booking_id", id),
			zap.String("payment_order_id", booking.PaymentOrderID),
		)
		return booking, nil
	}

	// Payment resolves a pending approval (pre-approval payment path).
	if booking.Status == entity.StatusPending {
		promoted, swapped, err := s.repo.Booking.UpdateStatusIf(ctx, id, "", entity.StatusPending, entity.StatusApproved)
		if err != nil {
			return nil, err
		}
		if swapped {
			booking = promoted
			s.log.Info("Paid booking auto-approved", zap.String("booking_id", id))
		}
	}

	s.log.Info("Booking marked paid",
		zap.String("booking_id", id),
		zap.String("payment_order_id", orderID),
	)

	subject, text, html := mail.PaymentConfirmation(booking)
	s.send(ctx, booking.RequesterEmail, subject, text, html)

	return booking, nil
}

func (s *bookingService) Remind(ctx context.Context, id, comment string) error {
	booking, err := s.repo.Booking.Get(ctx, id, "")
	if err != nil {
		return err
	}
	if booking == nil {
		return domain.NotFoundError{Resource: "booking", ID: id}
	}

	subject, text, html := mail.Reminder(booking, comment, s.contractLink(booking.ID))
	if _, err := s.sender.Send(ctx, mail.Message{
		To:      booking.RequesterEmail,
		From:    s.config.Email.FromAddress,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}); err != nil {
		// Unlike transition side effects, a reminder IS the operation
		s.log.Error("Failed to send reminder", zap.Error(err), zap.String("booking_id", id))
		return err
	}

	s.log.Info("Reminder sent", zap.String("booking_id", id))
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	// No partition hint in the public URL; cross-partition lookup
	booking, err := s.repo.Booking.Get(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return booking, nil
}

func (s *bookingService) ListPublic(ctx context.Context) ([]response.CalendarEntry, error) {
	bookings, err := s.repo.Booking.List(ctx, repository.ListFilter{})
	if err != nil {
		return nil, err
	}

	entries := make([]response.CalendarEntry, 0, len(bookings))
	for _, booking := range bookings {
		entries = append(entries, response.ToCalendarEntry(booking))
	}
	return entries, nil
}

func (s *bookingService) ListAdmin(ctx context.Context) ([]*entity.Booking, error) {
	return s.repo.Booking.List(ctx, repository.ListFilter{})
}

// ==================== SIDE EFFECTS ====================

func (s *bookingService) notifyBoard(ctx context.Context, booking *entity.Booking) {
	to := s.config.Email.BoardTo
	if to == "" {
		s.log.Warn("BOARD_TO_ADDRESS is not set, skipping board notification")
		return
	}

	base := s.config.App.PublicBaseURL
	approveLink := fmt.Sprintf("%s/api/booking/approve?id=%s", base, booking.ID)
	rejectLink := fmt.Sprintf("%s/api/booking/reject?id=%s", base, booking.ID)

	subject, text, html := mail.BoardRequest(booking, approveLink, rejectLink)
	s.send(ctx, to, subject, text, html)
}

func (s *bookingService) notifyRequesterConfirmation(ctx context.Context, booking *entity.Booking) {
	subject, text, html := mail.RequesterConfirmation(booking)
	s.send(ctx, booking.RequesterEmail, subject, text, html)
}

// send delivers best-effort: failures are logged, never propagated, because
// the state change is already durable.
func (s *bookingService) send(ctx context.Context, to, subject, text, html string) {
	if _, err := s.sender.Send(ctx, mail.Message{
		To:      to,
		From:    s.config.Email.FromAddress,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}); err != nil {
		s.log.Error("Failed to send notification",
			zap.Error(err),
			zap.String("subject", subject),
		)
	}
}

func (s *bookingService) contractLink(id string) string {
	return fmt.Sprintf("%s/leieavtale?id=%s", s.config.App.PublicBaseURL, id)
}

func (s *bookingService) paymentLink(id string) string {
	return fmt.Sprintf("%s/complete-payment.html?bookingId=%s", s.config.App.PublicBaseURL, id)
}
