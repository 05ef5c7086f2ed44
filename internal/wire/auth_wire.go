package wire

import (
	"github.com/go-chi/chi/v5"

	"github.com/oyvindfi/bjorkvang/internal/adaptor"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// POST /api/auth/verify-admin - Gate for the admin page
	r.Post("/api/auth/verify-admin", authHandler.VerifyAdmin)
}
