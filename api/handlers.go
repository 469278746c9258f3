/*
handlers.go - HTTP API handlers for the booking engine

PURPOSE:
  Exposes the booking engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Hotels / Rooms:
    GET    /api/hotels                    List hotels
    GET    /api/hotels/{id}               Hotel detail
    GET    /api/hotels/{id}/rooms         Rooms of a hotel
    GET    /api/rooms/{id}                Room detail

  Search / Pricing:
    GET    /api/availability              Search available rooms + quotes
    GET    /api/rooms/{id}/quote          Price breakdown for a range
    GET    /api/rooms/{id}/availability   Availability + conflict count

  Bookings:
    POST   /api/bookings                  Create (authoritative commit)
    GET    /api/bookings/{reference}      Lookup by reference
    POST   /api/bookings/{reference}/cancel
    POST   /api/bookings/{reference}/confirm-payment

  Guests:
    GET    /api/guests/{id}/bookings      Booking history
    GET    /api/guests/{id}/stats         Dashboard stats

  Tariff (admin):
    GET    /api/tariff                    Active tariff definition
    PUT    /api/tariff                    Replace the active tariff

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid ranges, prices, guest counts
  - 404: Unknown room/hotel/booking reference
  - 409: Room no longer available, cancellation window closed
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karanyede/luxestay/booking"
	"github.com/karanyede/luxestay/factory"
	"github.com/karanyede/luxestay/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *booking.Service
	Tariffs *factory.RateFactory

	// JSON definition of the active tariff
	currentTariff string

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:         store,
		Service:       booking.NewService(store),
		Tariffs:       factory.NewRateFactory(),
		currentTariff: factory.DefaultTariffJSON(),
	}
}

// LoadTariff parses a JSON tariff definition and installs it as the active
// rate policy. Quotes computed afterwards use the new rates; committed
// reservations keep their price snapshots.
func (h *Handler) LoadTariff(configJSON string) error {
	policy, err := h.Tariffs.ParseRatePolicy(configJSON)
	if err != nil {
		return err
	}
	h.Service.Rates = *policy
	h.currentTariff = configJSON
	return nil
}

// =============================================================================
// HOTEL / ROOM HANDLERS
// =============================================================================

// ListHotels returns all hotels.
func (h *Handler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Store.ListHotels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hotels", err)
		return
	}

	dtos := make([]HotelDTO, len(hotels))
	for i, hotel := range hotels {
		dtos[i] = toHotelDTO(hotel)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHotel returns a single hotel.
func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request) {
	id := booking.HotelID(chi.URLParam(r, "id"))
	hotel, err := h.Store.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if hotel == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toHotelDTO(*hotel))
}

// ListHotelRooms returns the rooms of a hotel.
func (h *Handler) ListHotelRooms(w http.ResponseWriter, r *http.Request) {
	id := booking.HotelID(chi.URLParam(r, "id"))
	rooms, err := h.Store.ListRooms(r.Context(), booking.RoomFilter{HotelID: &id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, room := range rooms {
		dtos[i] = toRoomDTO(room)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRoom returns a single room.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := booking.RoomID(chi.URLParam(r, "id"))
	room, err := h.Store.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get room", err)
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "Room not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(*room))
}

// =============================================================================
// SEARCH / PRICING HANDLERS
// =============================================================================

// SearchAvailability returns available rooms with quotes for a date range.
// Query: check_in, check_out (YYYY-MM-DD), guests, room_type, hotel_id.
func (h *Handler) SearchAvailability(w http.ResponseWriter, r *http.Request) {
	stay, ok := stayFromQuery(w, r)
	if !ok {
		return
	}

	req := booking.SearchRequest{Stay: stay}
	if g := r.URL.Query().Get("guests"); g != "" {
		guests, err := strconv.Atoi(g)
		if err != nil || guests < 1 {
			writeError(w, http.StatusBadRequest, "Invalid guests parameter", err)
			return
		}
		req.Guests = guests
	}
	if rt := r.URL.Query().Get("room_type"); rt != "" && rt != "all" {
		category := booking.RoomCategory(rt)
		req.Category = &category
	}
	if hid := r.URL.Query().Get("hotel_id"); hid != "" {
		hotelID := booking.HotelID(hid)
		req.HotelID = &hotelID
	}

	offers, err := h.Service.Search(r.Context(), req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	dtos := make([]RoomOfferDTO, len(offers))
	for i, offer := range offers {
		dtos[i] = RoomOfferDTO{Room: toRoomDTO(offer.Room), Quote: toQuoteDTO(offer.Quote)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  dtos,
		"total": len(dtos),
	})
}

// QuoteRoom returns the price breakdown for one room over a range.
func (h *Handler) QuoteRoom(w http.ResponseWriter, r *http.Request) {
	stay, ok := stayFromQuery(w, r)
	if !ok {
		return
	}

	id := booking.RoomID(chi.URLParam(r, "id"))
	quote, err := h.Service.QuoteRoom(r.Context(), id, stay)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// CheckRoomAvailability returns availability + conflict count for one room.
func (h *Handler) CheckRoomAvailability(w http.ResponseWriter, r *http.Request) {
	stay, ok := stayFromQuery(w, r)
	if !ok {
		return
	}

	id := booking.RoomID(chi.URLParam(r, "id"))
	result, err := h.Service.CheckRoom(r.Context(), id, stay)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityDTO{
		Available: result.Available,
		Conflicts: result.Conflicts,
	})
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// CreateBooking commits a new reservation.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	checkIn, err := booking.ParseDate(req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_in", err)
		return
	}
	checkOut, err := booking.ParseDate(req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_out", err)
		return
	}

	result, err := h.Service.CreateBooking(r.Context(), booking.BookingRequest{
		RoomID:          booking.RoomID(req.RoomID),
		GuestID:         booking.GuestID(req.GuestID),
		Stay:            booking.NewStayRange(checkIn, checkOut),
		GuestCount:      req.Guests,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"reservation": toReservationDTO(result.Reservation, booking.Today()),
		"pricing":     toQuoteDTO(result.Quote),
	})
}

// GetBooking looks a reservation up by booking reference.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	reservation, err := h.Service.GetBooking(r.Context(), reference)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*reservation, booking.Today()))
}

// CancelBooking cancels a reservation, cutoff permitting.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var req CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Service.Cancel(r.Context(), reference, booking.GuestID(req.GuestID))
	if err != nil {
		writeBookingError(w, err)
		return
	}

	dto := CancellationDTO{Reservation: toReservationDTO(result.Reservation, booking.Today())}
	if result.Refund != nil {
		dto.Refund = &RefundDTO{
			ReservationID: string(result.Refund.ReservationID),
			PaymentID:     string(result.Refund.PaymentID),
			Amount:        result.Refund.Amount.String(),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ConfirmPayment records payment success, promoting pending to confirmed.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	reservation, err := h.Service.ConfirmPayment(r.Context(), reference)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*reservation, booking.Today()))
}

// =============================================================================
// GUEST HANDLERS
// =============================================================================

// ListGuestBookings returns a guest's reservation history, newest first.
func (h *Handler) ListGuestBookings(w http.ResponseWriter, r *http.Request) {
	guestID := booking.GuestID(chi.URLParam(r, "id"))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reservations, err := h.Service.ListBookings(r.Context(), guestID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	asOf := booking.Today()
	dtos := make([]ReservationDTO, len(reservations))
	for i, res := range reservations {
		dtos[i] = toReservationDTO(res, asOf)
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": dtos})
}

// GetGuestStats returns dashboard aggregates for a guest.
func (h *Handler) GetGuestStats(w http.ResponseWriter, r *http.Request) {
	guestID := booking.GuestID(chi.URLParam(r, "id"))
	stats, err := h.Service.Stats(r.Context(), guestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, GuestStatsDTO{
		TotalBookings:    stats.TotalBookings,
		TotalSpent:       stats.TotalSpent,
		UpcomingBookings: stats.UpcomingBookings,
	})
}

// =============================================================================
// TARIFF HANDLERS
// =============================================================================

// GetTariff returns the active tariff definition.
func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	var config factory.RatePolicyJSON
	json.Unmarshal([]byte(h.currentTariff), &config)

	writeJSON(w, http.StatusOK, TariffDTO{
		Name:   h.Service.Rates.Name,
		Config: config,
	})
}

// UpdateTariff replaces the active tariff. The definition is validated by
// parsing it through the factory before it takes effect.
func (h *Handler) UpdateTariff(w http.ResponseWriter, r *http.Request) {
	var req UpdateTariffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	configJSON, _ := json.Marshal(req.Config)
	if err := h.LoadTariff(string(configJSON)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tariff configuration", err)
		return
	}

	writeJSON(w, http.StatusOK, TariffDTO{
		Name:   h.Service.Rates.Name,
		Config: req.Config,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// stayFromQuery parses check_in/check_out query params into a StayRange.
// Writes a 400 and returns ok=false on malformed input.
func stayFromQuery(w http.ResponseWriter, r *http.Request) (booking.StayRange, bool) {
	checkIn, err := booking.ParseDate(r.URL.Query().Get("check_in"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_in (use YYYY-MM-DD)", err)
		return booking.StayRange{}, false
	}
	checkOut, err := booking.ParseDate(r.URL.Query().Get("check_out"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid check_out (use YYYY-MM-DD)", err)
		return booking.StayRange{}, false
	}
	return booking.NewStayRange(checkIn, checkOut), true
}

// writeBookingError maps engine errors onto HTTP statuses.
func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case booking.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case booking.IsConflict(err):
		writeError(w, http.StatusConflict, "Booking conflict", err)
	case booking.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
