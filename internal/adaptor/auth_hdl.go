package adaptor

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oyvindfi/bjorkvang/internal/dto/request"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

type AuthHandler struct {
	config *utils.Config
	log    *zap.Logger
}

func NewAuthHandler(config *utils.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		config: config,
		log:    log.With(zap.String("handler", "auth")),
	}
}

// VerifyAdmin handles POST /api/auth/verify-admin. The admin page keeps no
// session; every privileged action re-verifies the shared board password.
func (h *AuthHandler) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Password == "" {
		utils.ResponseBadRequest(w, "Password is required", nil)
		return
	}

	secret := h.config.Admin.Password
	if secret == "" {
		// Absence of the secret must never mean open access
		h.log.Error("ADMIN_PASSWORD is not configured")
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	if !verifyPassword(secret, req.Password) {
		h.log.Warn("Admin verification failed", zap.String("ip", clientIP(r)))
		utils.ResponseUnauthorized(w, "Invalid password")
		return
	}

	utils.ResponseSuccess(w, "authorized", nil)
}

// verifyPassword accepts either a bcrypt hash or, for older deployments, the
// plain secret compared in constant time.
func verifyPassword(secret, candidate string) bool {
	if strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$") || strings.HasPrefix(secret, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1
}
