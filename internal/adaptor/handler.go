package adaptor

import (
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/usecase"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

type Handler struct {
	Booking *BookingHandler
	Auth    *AuthHandler
	Vipps   *VippsHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Auth:    NewAuthHandler(config, log),
		Vipps:   NewVippsHandler(service.Payment, log),
	}
}
