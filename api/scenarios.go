/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates hotels, rooms and
	(sometimes) existing bookings that demonstrate specific features.

AVAILABLE SCENARIOS:

	city-hotel:      One downtown hotel, mixed categories, empty calendar
	resort-summer:   Beach resort with peak-season bookings on the books
	busy-weekend:    Small hotel nearly sold out over a weekend

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create hotels and rooms
 3. Optionally commit existing reservations to shape availability

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-weekend"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared JSON helpers
  - booking/service.go: The engine the demo data drives
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karanyede/luxestay/booking"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "city-hotel",
		Name:        "City Hotel",
		Description: "One downtown hotel with mixed room categories, empty calendar",
	},
	{
		ID:          "resort-summer",
		Name:        "Summer Resort",
		Description: "Beach resort with peak-season bookings already on the books",
	},
	{
		ID:          "busy-weekend",
		Name:        "Busy Weekend",
		Description: "Small hotel nearly sold out over the coming weekend",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "city-hotel":
		err = h.loadCityHotelScenario(ctx)
	case "resort-summer":
		err = h.loadResortSummerScenario(ctx)
	case "busy-weekend":
		err = h.loadBusyWeekendScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ScenarioID})
}

// ResetDatabase wipes everything (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadCityHotelScenario(ctx context.Context) error {
	hotel := booking.Hotel{
		ID:        "hotel-grand-central",
		Name:      "Grand Central Hotel",
		Address:   "1 Station Square, Metro City",
		Phone:     "+1-555-0100",
		Email:     "stay@grandcentral.example",
		Rating:    4.4,
		Amenities: []string{"wifi", "gym", "restaurant"},
		IsActive:  true,
	}
	if err := h.Store.SaveHotel(ctx, hotel); err != nil {
		return err
	}

	rooms := []booking.Room{
		room("room-gc-101", hotel.ID, "101", booking.CategoryStandard, 100, 2),
		room("room-gc-102", hotel.ID, "102", booking.CategoryStandard, 100, 2),
		room("room-gc-201", hotel.ID, "201", booking.CategoryDeluxe, 150, 3),
		room("room-gc-301", hotel.ID, "301", booking.CategorySuite, 250, 4),
		room("room-gc-401", hotel.ID, "401", booking.CategoryPresidential, 500, 6),
	}
	for _, r := range rooms {
		if err := h.Store.SaveRoom(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadResortSummerScenario(ctx context.Context) error {
	hotel := booking.Hotel{
		ID:        "hotel-azure-bay",
		Name:      "Azure Bay Resort",
		Address:   "99 Shoreline Drive, Azure Bay",
		Phone:     "+1-555-0199",
		Email:     "hello@azurebay.example",
		Rating:    4.8,
		Amenities: []string{"beach", "pool", "spa", "wifi"},
		IsActive:  true,
	}
	if err := h.Store.SaveHotel(ctx, hotel); err != nil {
		return err
	}

	rooms := []booking.Room{
		room("room-ab-1", hotel.ID, "Sea 1", booking.CategoryDeluxe, 180, 2),
		room("room-ab-2", hotel.ID, "Sea 2", booking.CategoryDeluxe, 180, 2),
		room("room-ab-v1", hotel.ID, "Villa 1", booking.CategoryVilla, 400, 6),
		room("room-ab-s1", hotel.ID, "Suite 1", booking.CategorySuite, 320, 4),
	}
	for _, r := range rooms {
		if err := h.Store.SaveRoom(ctx, r); err != nil {
			return err
		}
	}

	// July bookings on the deluxe rooms so peak-season searches show
	// realistic contention.
	july := time.Now().Year() + 1
	bookings := []struct {
		roomID   booking.RoomID
		checkIn  booking.Date
		checkOut booking.Date
		status   booking.ReservationStatus
	}{
		{"room-ab-1", booking.NewDate(july, time.July, 1), booking.NewDate(july, time.July, 5), booking.StatusConfirmed},
		{"room-ab-1", booking.NewDate(july, time.July, 10), booking.NewDate(july, time.July, 14), booking.StatusConfirmed},
		{"room-ab-2", booking.NewDate(july, time.July, 3), booking.NewDate(july, time.July, 8), booking.StatusPending},
	}
	for i, b := range bookings {
		if err := h.seedReservation(ctx, fmt.Sprintf("seed-resort-%d", i), b.roomID, b.checkIn, b.checkOut, b.status); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadBusyWeekendScenario(ctx context.Context) error {
	hotel := booking.Hotel{
		ID:       "hotel-old-mill",
		Name:     "Old Mill Inn",
		Address:  "7 River Lane, Milltown",
		Rating:   4.1,
		IsActive: true,
	}
	if err := h.Store.SaveHotel(ctx, hotel); err != nil {
		return err
	}

	rooms := []booking.Room{
		room("room-om-1", hotel.ID, "1", booking.CategoryStandard, 90, 2),
		room("room-om-2", hotel.ID, "2", booking.CategoryStandard, 90, 2),
		room("room-om-3", hotel.ID, "3", booking.CategoryDeluxe, 130, 3),
	}
	for _, r := range rooms {
		if err := h.Store.SaveRoom(ctx, r); err != nil {
			return err
		}
	}

	// Book everything except room 3 over the next Friday-Sunday.
	friday := nextWeekday(booking.Today(), time.Friday)
	sunday := friday.AddDays(2)
	if err := h.seedReservation(ctx, "seed-weekend-1", "room-om-1", friday, sunday, booking.StatusConfirmed); err != nil {
		return err
	}
	return h.seedReservation(ctx, "seed-weekend-2", "room-om-2", friday, sunday, booking.StatusConfirmed)
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func room(id booking.RoomID, hotelID booking.HotelID, number string, category booking.RoomCategory, basePrice int64, capacity int) booking.Room {
	return booking.Room{
		ID:         id,
		HotelID:    hotelID,
		RoomNumber: number,
		Category:   category,
		BasePrice:  decimal.NewFromInt(basePrice),
		Capacity:   capacity,
		IsActive:   true,
	}
}

func (h *Handler) seedReservation(ctx context.Context, id string, roomID booking.RoomID, checkIn, checkOut booking.Date, status booking.ReservationStatus) error {
	roomRec, err := h.Store.GetRoom(ctx, roomID)
	if err != nil || roomRec == nil {
		return fmt.Errorf("seed room %s missing: %w", roomID, err)
	}
	stay := booking.NewStayRange(checkIn, checkOut)
	quote, err := h.Service.Rates.Quote(*roomRec, stay)
	if err != nil {
		return err
	}

	return h.Store.CommitReservation(ctx, booking.Reservation{
		ID:               booking.ReservationID(id),
		BookingReference: booking.NewBookingReference(),
		RoomID:           roomID,
		GuestID:          "guest-demo",
		Stay:             stay,
		GuestCount:       2,
		TotalAmount:      quote.GrandTotal,
		Status:           status,
		GuestName:        "Demo Guest",
		GuestEmail:       "demo@example.com",
		CreatedAt:        time.Now().UTC(),
	})
}

// nextWeekday returns the next date with the given weekday, at least one
// day out.
func nextWeekday(from booking.Date, wd time.Weekday) booking.Date {
	d := from.AddDays(1)
	for d.Weekday() != wd {
		d = d.AddDays(1)
	}
	return d
}
