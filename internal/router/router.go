package router

import (
	"net/http"

	"toolforge-rest-api/internal/handler"
	"toolforge-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	CatalogHandler  *handler.CatalogHandler
	PurchaseHandler *handler.PurchaseHandler
	ReviewHandler   *handler.ReviewHandler
	PaymentHandler  *handler.PaymentHandler
	RequireAuth     func(http.Handler) http.Handler
	RequireAdmin    func(http.Handler) http.Handler
}

// New creates and configures the HTTP router. Routes declare zero, one, or
// both auth gates; both must pass before the handler body executes.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/", cfg.Handler.Root)
		r.Get("/api/status", cfg.Handler.Status)
	}
	if cfg.AuthHandler != nil {
		r.Post("/getToken", cfg.AuthHandler.GetToken)
	}
	if cfg.UserHandler != nil {
		r.Patch("/user/{email}", cfg.UserHandler.UpsertUser)
		r.Get("/user", cfg.UserHandler.GetUser)
		r.Get("/admin/{email}", cfg.UserHandler.IsAdmin)
	}
	if cfg.PaymentHandler != nil {
		r.Post("/create-payment-intent", cfg.PaymentHandler.CreatePaymentIntent)
	}
	if cfg.CatalogHandler != nil {
		r.Get("/getTools", cfg.CatalogHandler.GetTools)
		r.Get("/getTool/{id}", cfg.CatalogHandler.GetTool)
	}
	if cfg.PurchaseHandler != nil {
		r.Patch("/purchasedSingle/{id}", cfg.PurchaseHandler.RecordPayment)
		r.Patch("/deliverConfirm/{id}", cfg.PurchaseHandler.ConfirmDelivery)
	}
	if cfg.ReviewHandler != nil {
		r.Get("/review", cfg.ReviewHandler.ListReviews)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.RequireAuth != nil {
			r.Use(cfg.RequireAuth)
		}

		if cfg.UserHandler != nil {
			r.Patch("/profile/{id}", cfg.UserHandler.UpdateProfile)
		}
		if cfg.PurchaseHandler != nil {
			r.Post("/purchased", cfg.PurchaseHandler.Checkout)
			r.Get("/purchased", cfg.PurchaseHandler.ListOwn)
			r.Delete("/purchasedSingle/{id}", cfg.PurchaseHandler.Delete)
		}
		if cfg.ReviewHandler != nil {
			r.Post("/review", cfg.ReviewHandler.AddReview)
		}

		// ADMIN routes (authenticated + privileged role)
		r.Group(func(r chi.Router) {
			if cfg.RequireAdmin != nil {
				r.Use(cfg.RequireAdmin)
			}

			if cfg.CatalogHandler != nil {
				r.Get("/adminGetTools", cfg.CatalogHandler.GetTools)
				r.Post("/addTool", cfg.CatalogHandler.AddTool)
				r.Patch("/updateTool/{id}", cfg.CatalogHandler.UpdateTool)
				r.Delete("/deleteTool/{id}", cfg.CatalogHandler.DeleteTool)
			}
			if cfg.PurchaseHandler != nil {
				r.Get("/adminPurchased", cfg.PurchaseHandler.AdminList)
			}
			if cfg.UserHandler != nil {
				r.Get("/allUsers", cfg.UserHandler.ListUsers)
			}
		})
	})

	return r
}
