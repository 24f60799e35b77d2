/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the booking frontend

ROUTE GROUPS:
  /api/occurrences/*   Pattern expansion preview
  /api/quotes/*        Price quoting and overrides
  /api/bookings        Series submission
  /api/zones/*         Existing bookings per zone
  /api/rules/*         Price rule management
  /api/holidays/*      Holiday calendar management

SECURITY NOTE:
  No authentication middleware; authentication is owned by the surrounding
  municipal platform, which fronts this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/occurrences", func(r chi.Router) {
			r.Post("/preview", h.PreviewOccurrences)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", h.CreateQuote)
			r.Post("/price", h.PriceBooking)
			r.Post("/override", h.OverridePrice)
		})

		r.Post("/bookings", h.SubmitBooking)
		r.Get("/zones/{id}/bookings", h.ListZoneBookings)

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.CreateRule)
			r.Get("/{id}", h.GetRule)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})
	})

	return r
}
