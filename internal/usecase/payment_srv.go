package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/internal/dto/response"
	"github.com/oyvindfi/bjorkvang/internal/payment"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

// PaymentService orchestrates the optional Vipps flow around bookings.
type PaymentService interface {
	// InitiateBooking starts a pre-payment for a new request; the booking
	// itself is created later by the return flow with paymentStatus=paid.
	InitiateBooking(ctx context.Context, req *request.VippsInitiateBookingRequest) (*response.VippsInitiateResponse, error)
	// CheckStatus polls the provider; a captured payment marks the booking
	// paid when a booking id accompanies the order.
	CheckStatus(ctx context.Context, req *request.VippsCheckStatusRequest) (*response.VippsStatusResponse, error)
	// InitiateContractPayment starts payment of the stored rental amount for
	// a fully signed, unpaid booking.
	InitiateContractPayment(ctx context.Context, req *request.VippsContractPaymentRequest) (*response.VippsInitiateResponse, error)
	// HandleCallback acknowledges a provider server callback.
	HandleCallback(ctx context.Context, orderID, transactionStatus string) error
}

type paymentService struct {
	booking BookingService
	gateway payment.Gateway
	config  *utils.Config
	log     *zap.Logger
}

func NewPaymentService(booking BookingService, gateway payment.Gateway, config *utils.Config, log *zap.Logger) PaymentService {
	return &paymentService{
		booking: booking,
		gateway: gateway,
		config:  config,
		log:     log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) InitiateBooking(ctx context.Context, req *request.VippsInitiateBookingRequest) (*response.VippsInitiateResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, domain.ValidationError{Msg: utils.FormatValidationErrors(errs)}
	}

	amount := ComputeAmount(req.Spaces, req.Attendees)
	if amount == 0 {
		return nil, domain.ValidationError{Field: "spaces", Msg: "no priced spaces selected"}
	}

	orderID := utils.GenerateOrderID(req.Date)
	returnURL := fmt.Sprintf("%s/booking?status=success&orderId=%s", s.config.App.PublicBaseURL, orderID)

	eventType := req.EventType
	if eventType == "" {
		eventType = "arrangement"
	}
	description := fmt.Sprintf("Booking %s - %s - %s kl %s",
		eventType, strings.Join(req.Spaces, ", "), req.Date, req.Time)

	initiated, err := s.gateway.Initiate(ctx, payment.InitiateRequest{
		AmountMinor: amount,
		PhoneNumber: req.PhoneNumber,
		ReturnURL:   returnURL,
		OrderID:     orderID,
		Description: description,
	})
	if err != nil {
		s.log.Error("Failed to initiate booking payment", zap.Error(err), zap.String("order_id", orderID))
		return nil, err
	}

	s.log.Info("Booking payment initiated",
		zap.String("order_id", orderID),
		zap.Int64("amount_minor", amount),
	)

	return &response.VippsInitiateResponse{
		URL:       initiated.RedirectURL,
		OrderID:   orderID,
		AmountNOK: amount / 100,
	}, nil
}

func (s *paymentService) CheckStatus(ctx context.Context, req *request.VippsCheckStatusRequest) (*response.VippsStatusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, domain.ValidationError{Msg: utils.FormatValidationErrors(errs)}
	}

	status, err := s.gateway.Status(ctx, req.OrderID)
	if err != nil {
		s.log.Error("Failed to check payment status", zap.Error(err), zap.String("order_id", req.OrderID))
		return nil, err
	}

	if status.State == payment.StateCaptured && req.BookingID != "" {
		if _, err := s.booking.MarkPaid(ctx, req.BookingID, req.OrderID); err != nil {
			if !domain.IsNotFound(err) {
				return nil, err
			}
			s.log.Warn("Captured payment references unknown booking",
				zap.String("order_id", req.OrderID),
				zap.String("booking_id", req.BookingID),
			)
		}
	}

	return &response.VippsStatusResponse{Status: status.State}, nil
}

func (s *paymentService) InitiateContractPayment(ctx context.Context, req *request.VippsContractPaymentRequest) (*response.VippsInitiateResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, domain.ValidationError{Msg: utils.FormatValidationErrors(errs)}
	}

	booking, err := s.booking.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Contract.BothSigned() {
		return nil, domain.ValidationError{Field: "contract", Msg: "contract must be fully signed before payment"}
	}
	if booking.PaymentStatus == entity.PaymentPaid {
		return nil, domain.ValidationError{Field: "paymentStatus", Msg: "this booking has already been paid"}
	}

	// The amount fixed at creation is authoritative; only legacy records
	// without one fall back to the price table.
	amount := booking.PaymentAmount
	if amount == 0 {
		s.log.Warn("Payment amount not stored, recalculating from spaces",
			zap.String("booking_id", booking.ID),
		)
		amount = ComputeAmount(booking.Spaces, booking.Attendees)
	}
	if amount == 0 {
		return nil, domain.ValidationError{Field: "paymentAmount", Msg: "unable to determine payment amount"}
	}

	orderID := utils.GenerateContractOrderID(booking.ID)
	returnURL := fmt.Sprintf("%s/complete-payment.html?status=success&bookingId=%s&orderId=%s",
		s.config.App.PublicBaseURL, booking.ID, orderID)

	description := fmt.Sprintf("Betaling for booking %s - %s",
		strings.ToUpper(booking.ID), strings.Join(booking.Spaces, ", "))

	initiated, err := s.gateway.Initiate(ctx, payment.InitiateRequest{
		AmountMinor: amount,
		PhoneNumber: req.PhoneNumber,
		ReturnURL:   returnURL,
		OrderID:     orderID,
		Description: description,
	})
	if err != nil {
		s.log.Error("Failed to initiate contract payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
		)
		return nil, err
	}

	return &response.VippsInitiateResponse{
		URL:       initiated.RedirectURL,
		OrderID:   orderID,
		AmountNOK: amount / 100,
		BookingID: booking.ID,
	}, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, orderID, transactionStatus string) error {
	s.log.Info("Vipps callback received",
		zap.String("order_id", orderID),
		zap.String("transaction_status", transactionStatus),
	)

	switch transactionStatus {
	case "RESERVED", "RESERVE", "SALE":
		// Contract-payment orders embed the booking id
		if bookingID, ok := bookingIDFromOrder(orderID); ok {
			if _, err := s.booking.MarkPaid(ctx, bookingID, orderID); err != nil {
				if domain.IsNotFound(err) {
					s.log.Warn("Callback references unknown booking",
						zap.String("order_id", orderID),
						zap.String("booking_id", bookingID),
					)
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// bookingIDFromOrder recovers the booking id from a contract-payment order id
// of the form contract-payment-<bookingID>-<millis>.
func bookingIDFromOrder(orderID string) (string, bool) {
	const prefix = "contract-payment-"
	if !strings.HasPrefix(orderID, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(orderID, prefix)
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 {
		return "", false
	}
	return rest[:idx], true
}
