package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/handlers"
	custommiddleware "github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/middleware"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/config"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	rebalanceService *service.RebalanceService,
	sleeveService *service.SleeveService,
	restrictionService *service.RestrictionService,
	brokerSettingsService *service.BrokerSettingsService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/rebalance", func(r chi.Router) {
			rebalanceHandler := handlers.NewRebalanceHandler(rebalanceService)
			r.Post("/preview", rebalanceHandler.Preview)
			r.Post("/preview-all", rebalanceHandler.PreviewAll)
		})

		r.Route("/sleeves", func(r chi.Router) {
			sleeveHandler := handlers.NewSleeveHandler(sleeveService)
			r.Get("/", sleeveHandler.Sleeves)
			r.Post("/", sleeveHandler.CreateSleeve)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/securities", sleeveHandler.SetSleeveSecurity)
			})
		})

		r.Route("/restrictions", func(r chi.Router) {
			restrictionHandler := handlers.NewRestrictionHandler(restrictionService)
			r.Get("/", restrictionHandler.Restrictions)
			r.Post("/", restrictionHandler.CreateRestriction)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", restrictionHandler.DeleteRestriction)
			})
		})

		if brokerSettingsService != nil {
			r.Route("/settings", func(r chi.Router) {
				settingsHandler := handlers.NewSettingsHandler(brokerSettingsService)
				r.Put("/broker", settingsHandler.SetBroker)
			})
		}
	})

	return r
}
