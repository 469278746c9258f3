/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the browser frontend

ROUTE GROUPS:
  /api/hotels/*        Hotel and room catalogue
  /api/rooms/*         Room detail, quotes, availability
  /api/availability    Search across rooms
  /api/bookings/*      Reservation lifecycle
  /api/guests/*        Guest dashboard
  /api/tariff          Active tariff definition (admin)
  /api/scenarios/*     Demo scenarios (dev)

SECURITY NOTE:
  No authentication middleware; identity delegation is an external
  collaborator's concern. Guest identity is carried explicitly in
  request payloads.

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
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Hotel catalogue
		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.ListHotels)
			r.Get("/{id}", h.GetHotel)
			r.Get("/{id}/rooms", h.ListHotelRooms)
		})

		// Rooms
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/{id}", h.GetRoom)
			r.Get("/{id}/quote", h.QuoteRoom)
			r.Get("/{id}/availability", h.CheckRoomAvailability)
		})

		// Search
		r.Get("/availability", h.SearchAvailability)

		// Bookings
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Get("/{reference}", h.GetBooking)
			r.Post("/{reference}/cancel", h.CancelBooking)
			r.Post("/{reference}/confirm-payment", h.ConfirmPayment)
		})

		// Guest dashboard
		r.Route("/guests", func(r chi.Router) {
			r.Get("/{id}/bookings", h.ListGuestBookings)
			r.Get("/{id}/stats", h.GetGuestStats)
		})

		// Tariff administration
		r.Route("/tariff", func(r chi.Router) {
			r.Get("/", h.GetTariff)
			r.Put("/", h.UpdateTariff)
		})

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
