package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/schooldesk/reservations-api/internal/auth"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	registrationHandler *RegistrationHandler,
	cancellationHandler *CancellationHandler,
	adminHandler *AdminHandler,
	paymentHandler *PaymentHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("School Reservations API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/google/login", authHandler.HandleLogin)
	r.Get("/auth/google/callback", authHandler.HandleCallback)

	// Public registration and cancellation
	huma.Post(api, "/events/{eventID}/registrations", registrationHandler.HandleRegister)
	huma.Post(api, "/events/{eventID}/cancellation-links", cancellationHandler.HandleCancellationLink)
	huma.Post(api, "/cancellations", cancellationHandler.HandleCancel)

	// Payment collaborator
	huma.Post(api, "/events/{eventID}/orders", paymentHandler.HandleCreateOrder)
	huma.Post(api, "/payments/callback", paymentHandler.HandleCallback, func(o *huma.Operation) {
		o.Security = []map[string][]string{{"apiKeyAuth": {}}}
	})

	// Admin routes, session cookie required
	cookieSecured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}
	huma.Post(api, "/admin/events", adminHandler.HandleCreateEvent, cookieSecured)
	huma.Post(api, "/admin/events/{eventID}/tables", adminHandler.HandleAddTable, cookieSecured)
	huma.Patch(api, "/admin/events/{eventID}/status", adminHandler.HandleSetEventStatus, cookieSecured)
	huma.Get(api, "/admin/events/{eventID}/waitlist", adminHandler.HandleWaitlist, cookieSecured)
	huma.Post(api, "/admin/events/{eventID}/reconcile", adminHandler.HandleReconcile, cookieSecured)
	huma.Patch(api, "/admin/registrations/{id}", adminHandler.HandleTransition, cookieSecured)
	huma.Delete(api, "/admin/registrations/{id}", adminHandler.HandleDelete, cookieSecured)

	huma.Post(api, "/admin/api-keys", apiKeyHandler.HandleCreate, cookieSecured)
	huma.Get(api, "/admin/api-keys", apiKeyHandler.HandleList, cookieSecured)
	huma.Delete(api, "/admin/api-keys/{id}", apiKeyHandler.HandleDelete, cookieSecured)
}
