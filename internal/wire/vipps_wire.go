package wire

import (
	"github.com/go-chi/chi/v5"

	"github.com/oyvindfi/bjorkvang/internal/adaptor"
)

func wireVipps(r chi.Router, vippsHandler *adaptor.VippsHandler) {
	// POST /api/vipps/initiate-booking - Pre-payment for a new request
	r.Post("/api/vipps/initiate-booking", vippsHandler.InitiateBooking)

	// POST /api/vipps/check-status - Poll after returning from the app
	r.Post("/api/vipps/check-status", vippsHandler.CheckStatus)

	// POST /api/vipps/initiate-contract-payment - Pay a signed contract
	r.Post("/api/vipps/initiate-contract-payment", vippsHandler.InitiateContractPayment)

	// POST /api/vipps/callback/v2/payments/{orderId} - Provider server callback
	r.Post("/api/vipps/callback/v2/payments/{orderId}", vippsHandler.Callback)
}
