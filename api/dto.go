/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - booking/pricing.go: Quote, the source of QuoteDTO
*/
package api

import (
	"time"

	"github.com/karanyede/luxestay/booking"
	"github.com/karanyede/luxestay/factory"
)

// =============================================================================
// HOTEL / ROOM
// =============================================================================

type HotelDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Rating    float64  `json:"rating"`
	Amenities []string `json:"amenities,omitempty"`
}

type RoomDTO struct {
	ID          string   `json:"id"`
	HotelID     string   `json:"hotel_id"`
	RoomNumber  string   `json:"room_number"`
	Category    string   `json:"category"`
	BasePrice   string   `json:"base_price"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// =============================================================================
// PRICING
// =============================================================================

type NightPriceDTO struct {
	Date       string   `json:"date"`
	BasePrice  string   `json:"base_price"`
	FinalPrice string   `json:"final_price"`
	Factors    []string `json:"factors"`
}

type QuoteDTO struct {
	BasePrice     string          `json:"base_price"`
	Nights        int             `json:"nights"`
	Breakdown     []NightPriceDTO `json:"breakdown"`
	Subtotal      string          `json:"subtotal"`
	Taxes         string          `json:"taxes"`
	Fees          string          `json:"fees"`
	GrandTotal    string          `json:"grand_total"`
	PricePerNight string          `json:"price_per_night"`
}

// RoomOfferDTO is one search result: a free room with its quote.
type RoomOfferDTO struct {
	Room  RoomDTO  `json:"room"`
	Quote QuoteDTO `json:"pricing"`
}

type AvailabilityDTO struct {
	Available bool `json:"available"`
	Conflicts int  `json:"conflicts"`
}

// =============================================================================
// BOOKINGS
// =============================================================================

// CreateBookingRequest is the request to commit a reservation.
type CreateBookingRequest struct {
	RoomID          string `json:"room_id"`
	GuestID         string `json:"guest_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Guests          int    `json:"guests"`
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// CancelBookingRequest identifies the cancelling guest.
type CancelBookingRequest struct {
	GuestID string `json:"guest_id"`
}

type ReservationDTO struct {
	ID               string `json:"id"`
	BookingReference string `json:"booking_reference"`
	RoomID           string `json:"room_id"`
	GuestID          string `json:"guest_id"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Nights           int    `json:"nights"`
	Guests           int    `json:"guests"`
	TotalAmount      string `json:"total_amount"`
	Status           string `json:"status"`
	GuestName        string `json:"guest_name,omitempty"`
	GuestEmail       string `json:"guest_email,omitempty"`
	SpecialRequests  string `json:"special_requests,omitempty"`
	CreatedAt        string `json:"created_at"`
	CancelledAt      string `json:"cancelled_at,omitempty"`
}

type CancellationDTO struct {
	Reservation ReservationDTO `json:"reservation"`
	Refund      *RefundDTO     `json:"refund,omitempty"`
}

// RefundDTO mirrors booking.RefundInstruction for the payment collaborator.
type RefundDTO struct {
	ReservationID string `json:"reservation_id"`
	PaymentID     string `json:"payment_id"`
	Amount        string `json:"amount"`
}

type GuestStatsDTO struct {
	TotalBookings    int    `json:"total_bookings"`
	TotalSpent       string `json:"total_spent"`
	UpcomingBookings int    `json:"upcoming_bookings"`
}

// =============================================================================
// TARIFF
// =============================================================================

type TariffDTO struct {
	Name   string                 `json:"name"`
	Config factory.RatePolicyJSON `json:"config"`
}

type UpdateTariffRequest struct {
	Config factory.RatePolicyJSON `json:"config"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toHotelDTO(h booking.Hotel) HotelDTO {
	return HotelDTO{
		ID:        string(h.ID),
		Name:      h.Name,
		Address:   h.Address,
		Phone:     h.Phone,
		Email:     h.Email,
		Rating:    h.Rating,
		Amenities: h.Amenities,
	}
}

func toRoomDTO(r booking.Room) RoomDTO {
	return RoomDTO{
		ID:          string(r.ID),
		HotelID:     string(r.HotelID),
		RoomNumber:  r.RoomNumber,
		Category:    string(r.Category),
		BasePrice:   r.BasePrice.String(),
		Capacity:    r.Capacity,
		Description: r.Description,
		Amenities:   r.Amenities,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

func toQuoteDTO(q *booking.Quote) QuoteDTO {
	breakdown := make([]NightPriceDTO, len(q.Breakdown))
	for i, n := range q.Breakdown {
		breakdown[i] = NightPriceDTO{
			Date:       n.Date.String(),
			BasePrice:  n.BasePrice.String(),
			FinalPrice: n.FinalPrice.String(),
			Factors:    n.Factors,
		}
	}
	return QuoteDTO{
		BasePrice:     q.BasePrice.String(),
		Nights:        q.Nights,
		Breakdown:     breakdown,
		Subtotal:      q.Subtotal.String(),
		Taxes:         q.Taxes.String(),
		Fees:          q.Fees.String(),
		GrandTotal:    q.GrandTotal.String(),
		PricePerNight: q.PricePerNight.String(),
	}
}

func toReservationDTO(r booking.Reservation, asOf booking.Date) ReservationDTO {
	dto := ReservationDTO{
		ID:               string(r.ID),
		BookingReference: r.BookingReference,
		RoomID:           string(r.RoomID),
		GuestID:          string(r.GuestID),
		CheckIn:          r.Stay.CheckIn.String(),
		CheckOut:         r.Stay.CheckOut.String(),
		Nights:           r.Stay.Nights(),
		Guests:           r.GuestCount,
		TotalAmount:      r.TotalAmount.String(),
		Status:           r.DisplayStatus(asOf),
		GuestName:        r.GuestName,
		GuestEmail:       r.GuestEmail,
		SpecialRequests:  r.SpecialRequests,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.CancelledAt != nil {
		dto.CancelledAt = r.CancelledAt.Format(time.RFC3339)
	}
	return dto
}
