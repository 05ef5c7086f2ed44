package wire

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/adaptor"
	"github.com/oyvindfi/bjorkvang/internal/data/repository"
	"github.com/oyvindfi/bjorkvang/internal/mail"
	"github.com/oyvindfi/bjorkvang/internal/payment"
	"github.com/oyvindfi/bjorkvang/internal/usecase"
	"github.com/oyvindfi/bjorkvang/pkg/middleware"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

// App holds the assembled application
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, sender mail.Sender, gateway payment.Gateway, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, sender, gateway, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	// Apply routes
	wireBooking(r, handler.Booking)
	wireAuth(r, handler.Auth)
	wireVipps(r, handler.Vipps)

	// Health check with a route inventory, handy when the reverse proxy
	// swallows a path
	r.Get("/health", healthHandler(r))

	return r
}

func healthHandler(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes := make([]string, 0, 16)
		_ = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			routes = append(routes, method+" "+route)
			return nil
		})
		utils.RawJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"routes": routes,
		})
	}
}
