package handlers

import (
	"log/slog"
	"net/http"

	"donaplus/internal/config"
	"donaplus/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions то, что маршрутизатору нужно кроме обработчиков
type RouterOptions struct {
	APIKey      string
	CORSOrigins []string
	Routes      config.RoutesConfig
	Production  bool
	Sessions    *middleware.SessionBridge
	Logger      *slog.Logger
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.Metrics())
	if opts.Sessions != nil {
		r.Use(opts.Sessions.Middleware)
	}
	r.Use(middleware.Logging(opts.Logger))

	r.Get("/health", h.PingHandler)
	r.Get("/ready", h.ReadyHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard(opts.Routes, opts.Production))

		r.Post("/login", h.SignInHandler)
		r.Post("/signup", h.SignUpHandler)
		r.Post("/logout", h.SignOutHandler)
		r.Get("/dashboard", h.DashboardHandler)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.APIKey(opts.APIKey))

			r.Get("/profile", h.GetProfileHandler)
			r.Patch("/profile", h.UpdateProfileHandler)

			r.Route("/donations", func(r chi.Router) {
				r.Get("/", h.GetDonationsHandler)
				r.Post("/", h.CreateDonationHandler)
				r.Get("/{id}", h.GetDonationHandler)
				r.Patch("/{id}", h.EditDonationHandler)
				r.Delete("/{id}", h.DeleteDonationHandler)
				r.Put("/{id}/status", h.UpdateDonationStatusHandler)
			})

			r.Route("/centers", func(r chi.Router) {
				r.Get("/", h.GetCentersHandler)
				r.Post("/", h.CreateCenterHandler)
				r.Get("/{id}", h.GetCenterHandler)
				r.Patch("/{id}", h.EditCenterHandler)
				r.Delete("/{id}", h.DeleteCenterHandler)
			})

			r.Route("/deliveries", func(r chi.Router) {
				r.Get("/", h.GetDeliveriesHandler)
				r.Post("/", h.CreateDeliveryHandler)
				r.Get("/{id}", h.GetDeliveryHandler)
				r.Patch("/{id}", h.EditDeliveryHandler)
				r.Put("/{id}/status", h.UpdateDeliveryStatusHandler)
				r.Post("/{id}/advance", h.AdvanceDeliveryHandler)
			})

			r.Route("/beneficiaries", func(r chi.Router) {
				r.Get("/", h.GetBeneficiariesHandler)
				r.Post("/", h.CreateBeneficiaryHandler)
				r.Get("/{id}", h.GetBeneficiaryHandler)
				r.Patch("/{id}", h.EditBeneficiaryHandler)
				r.Post("/{id}/verify", h.VerifyBeneficiaryHandler)
			})

			r.Get("/categories", h.GetCategoriesHandler)
			r.Get("/stats", h.GetStatsHandler)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", h.GetConversationsHandler)
				r.Post("/", h.StartConversationHandler)
				r.Get("/{id}/messages", h.GetMessagesHandler)
				r.Post("/{id}/messages", h.SendMessageHandler)
			})
			r.Patch("/messages/{id}", h.EditMessageHandler)
			r.Post("/messages/{id}/read", h.MarkMessageReadHandler)

			r.Get("/realtime/{table}", h.RealtimeHandler)
		})
	})

	return r
}
