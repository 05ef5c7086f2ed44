package usecase

import (
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/repository"
	"github.com/oyvindfi/bjorkvang/internal/mail"
	"github.com/oyvindfi/bjorkvang/internal/payment"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

// Service groups all services
type Service struct {
	Booking BookingService
	Payment PaymentService
}

func NewService(repo *repository.Repository, sender mail.Sender, gateway payment.Gateway, config *utils.Config, log *zap.Logger) *Service {
	booking := NewBookingService(repo, sender, config, log)
	return &Service{
		Booking: booking,
		Payment: NewPaymentService(booking, gateway, config, log),
	}
}
