/*
Package booking provides the core hotel reservation engine.

PURPOSE:
  This package contains the domain types and algorithms for pricing stays
  and deciding room availability: nightly rate computation with stacked
  modifiers, interval-overlap conflict detection, and the reservation
  lifecycle (pending -> confirmed -> cancelled).

KEY CONCEPTS IN THIS FILE (types.go):
  - Hotel/Room: What is being booked (rooms carry the base nightly price)
  - Reservation: A stay held or committed for a guest (append-only record)
  - Payment: The payment record tracked alongside a reservation
  - RefundInstruction: Contract emitted toward the payment collaborator

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money - no float64 currency
  2. Purity: Pricing and overlap checks are pure functions of their inputs
  3. Auditability: Reservations are never deleted, only status-transitioned
  4. Explicitness: Guest identity is passed per call, never ambient state

USAGE:
  room := booking.Room{ID: "room-101", Category: booking.CategoryDeluxe,
      BasePrice: decimal.NewFromInt(100), Capacity: 2, IsActive: true}
  stay := booking.NewStayRange(checkIn, checkOut)
  quote, err := booking.DefaultRatePolicy().Quote(room, stay)

SEE ALSO:
  - pricing.go: RatePolicy and quote computation
  - availability.go: Overlap and conflict counting
  - service.go: Reservation lifecycle orchestration
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type HotelID string
type RoomID string
type ReservationID string
type PaymentID string
type GuestID string

// =============================================================================
// HOTEL / ROOM
// =============================================================================

// RoomCategory classifies rooms. Premium categories attract a rate surcharge.
type RoomCategory string

const (
	CategoryStandard     RoomCategory = "Standard"
	CategoryDeluxe       RoomCategory = "Deluxe"
	CategorySuite        RoomCategory = "Suite"
	CategoryBusiness     RoomCategory = "Business"
	CategoryVilla        RoomCategory = "Villa"
	CategoryPremium      RoomCategory = "Premium"
	CategoryPresidential RoomCategory = "Presidential"
)

type Hotel struct {
	ID        HotelID
	Name      string
	Address   string
	Phone     string
	Email     string
	Rating    float64
	Amenities []string
	IsActive  bool
	CreatedAt time.Time
}

// Room is a bookable unit. Immutable for pricing purposes within one
// calculation: the engine prices against a snapshot.
type Room struct {
	ID          RoomID
	HotelID     HotelID
	RoomNumber  string
	Category    RoomCategory
	BasePrice   decimal.Decimal
	Capacity    int
	Description string
	Amenities   []string
	ImageURL    string
	IsActive    bool
	CreatedAt   time.Time
}

// =============================================================================
// RESERVATION - Append-only stay record
// =============================================================================

// ReservationStatus is the stored lifecycle state.
// "Completed" is a display state derived at read time, never stored.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// DisplayCompleted is the derived read-time state for a confirmed
// reservation whose check-out is in the past.
const DisplayCompleted = "completed"

// Reservation records a stay. Reservations are never deleted; corrections
// happen through status transitions, preserving the audit trail.
type Reservation struct {
	ID               ReservationID
	BookingReference string
	RoomID           RoomID
	GuestID          GuestID
	Stay             StayRange
	GuestCount       int
	TotalAmount      decimal.Decimal
	Status           ReservationStatus

	// Guest contact captured at booking time
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string

	CreatedAt   time.Time
	CancelledAt *time.Time
}

// Blocks reports whether this reservation removes its nights from
// availability. Cancelled reservations never block.
func (r Reservation) Blocks() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// DisplayStatus derives the user-visible status as of a given date.
// A confirmed stay whose check-out has passed reads as completed.
func (r Reservation) DisplayStatus(asOf Date) string {
	if r.Status == StatusConfirmed && !asOf.Before(r.Stay.CheckOut) {
		return DisplayCompleted
	}
	return string(r.Status)
}

// =============================================================================
// PAYMENT - Tracked record; processing is an external collaborator
// =============================================================================

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentExpired   PaymentStatus = "expired"
)

type Payment struct {
	ID            PaymentID
	ReservationID ReservationID
	Amount        decimal.Decimal
	Status        PaymentStatus
	Method        string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// RefundInstruction is the contract emitted toward the external payment
// collaborator on successful cancellation: mark the associated payment
// refunded. The engine does not process refunds itself.
type RefundInstruction struct {
	ReservationID ReservationID
	PaymentID     PaymentID
	Amount        decimal.Decimal
}
