package adaptor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/internal/usecase"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

type VippsHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewVippsHandler(service usecase.PaymentService, log *zap.Logger) *VippsHandler {
	return &VippsHandler{
		service: service,
		log:     log.With(zap.String("handler", "vipps")),
	}
}

// InitiateBooking handles POST /api/vipps/initiate-booking
func (h *VippsHandler) InitiateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.VippsInitiateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.InitiateBooking(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "initiate booking payment")
		return
	}

	utils.RawJSON(w, http.StatusOK, resp)
}

// CheckStatus handles POST /api/vipps/check-status
func (h *VippsHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	var req request.VippsCheckStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CheckStatus(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "check payment status")
		return
	}

	utils.RawJSON(w, http.StatusOK, resp)
}

// InitiateContractPayment handles POST /api/vipps/initiate-contract-payment
func (h *VippsHandler) InitiateContractPayment(w http.ResponseWriter, r *http.Request) {
	var req request.VippsContractPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.InitiateContractPayment(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "initiate contract payment")
		return
	}

	utils.RawJSON(w, http.StatusOK, resp)
}

// Callback handles POST /api/vipps/callback/v2/payments/{orderId}, the
// provider's server-to-server notification. The provider retries on non-2xx,
// so only processing errors on known orders answer with failure.
func (h *VippsHandler) Callback(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		utils.ResponseBadRequest(w, "Order ID is required", nil)
		return
	}

	var payload struct {
		TransactionInfo struct {
			Status string `json:"status"`
		} `json:"transactionInfo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.log.Warn("Unreadable callback payload", zap.Error(err), zap.String("order_id", orderID))
	}

	if err := h.service.HandleCallback(r.Context(), orderID, payload.TransactionInfo.Status); err != nil {
		h.log.Error("Callback processing failed", zap.Error(err), zap.String("order_id", orderID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "ok", nil)
}

func (h *VippsHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case domain.IsValidation(err):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case domain.IsNotFound(err):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case domain.IsConfiguration(err):
		h.log.Error(operation+" failed - payments not configured", zap.Error(err))
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Payments are not available", nil, nil)

	case domain.IsPayment(err):
		h.log.Error(operation+" failed - provider", zap.Error(err))
		utils.ResponseJSON(w, http.StatusBadGateway, false, "Payment provider error", nil, nil)

	default:
		h.log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
