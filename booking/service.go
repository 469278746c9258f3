/*
service.go - Reservation lifecycle orchestration

PURPOSE:
  Ties pricing, availability and persistence into the booking flows:
  1. Search: filter rooms by capacity/category, drop conflicting ones,
     price the rest
  2. Create: advisory quote, then authoritative commit (store re-checks
     availability inside its transaction)
  3. Confirm: payment success promotes pending -> confirmed
  4. Cancel: cutoff-checked transition to cancelled + refund instruction

BOOKING FLOW:
  Search (advisory check)            Commit (authoritative check)
        |                                  |
        v                                  v
  quote each free room  -->  CreateBooking --> store.CommitReservation
                                               conflict? first commit won,
                                               ErrRoomNotAvailable

CANCELLATION CUTOFF:
  Cancellation is permitted only strictly more than 24 hours before the
  reservation's check-in, with check-in treated as start of day (UTC).
  Inside the window the reservation is left untouched. A successful
  cancellation emits a RefundInstruction for the payment collaborator.

CLOCK INJECTION:
  The service takes its notion of "now" from the Now field so the cutoff
  boundary is testable to the minute.

SEE ALSO:
  - pricing.go: Quote computation
  - availability.go: Conflict counting
  - store.go: CommitReservation contract
*/
package booking

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCancellationCutoff is how long before check-in cancellation closes.
const DefaultCancellationCutoff = 24 * time.Hour

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates the booking lifecycle over a Store.
type Service struct {
	Store Store
	Rates RatePolicy

	// CancellationCutoff is the pre-check-in window after which
	// cancellation is refused. Defaults to 24 hours.
	CancellationCutoff time.Duration

	// Now supplies the current time. Defaults to time.Now; tests pin it.
	Now func() time.Time
}

// NewService creates a Service with the default tariff and cutoff.
func NewService(store Store) *Service {
	return &Service{
		Store:              store,
		Rates:              DefaultRatePolicy(),
		CancellationCutoff: DefaultCancellationCutoff,
		Now:                time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// =============================================================================
// SEARCH - Advisory availability + pricing
// =============================================================================

// SearchRequest asks for available rooms over a stay.
type SearchRequest struct {
	Stay     StayRange
	Guests   int
	Category *RoomCategory
	HotelID  *HotelID
}

// RoomOffer is an available room with its computed quote.
type RoomOffer struct {
	Room  Room
	Quote *Quote
}

// Search returns the rooms available for the request, each with a price
// breakdown. The availability here is advisory; CreateBooking re-verifies.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]RoomOffer, error) {
	if err := req.Stay.Validate(); err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		req.Guests = 1
	}

	rooms, err := s.Store.ListRooms(ctx, RoomFilter{
		HotelID:     req.HotelID,
		Category:    req.Category,
		MinCapacity: req.Guests,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	offers := make([]RoomOffer, 0, len(rooms))
	for _, room := range rooms {
		existing, err := s.Store.ListReservationsByRoom(ctx, room.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reservations for room %s: %w", room.ID, err)
		}
		if CountConflicts(req.Stay, existing) > 0 {
			continue
		}

		quote, err := s.Rates.Quote(room, req.Stay)
		if err != nil {
			return nil, err
		}
		offers = append(offers, RoomOffer{Room: room, Quote: quote})
	}

	return offers, nil
}

// CheckRoom evaluates availability for one specific room.
func (s *Service) CheckRoom(ctx context.Context, roomID RoomID, stay StayRange) (AvailabilityResult, error) {
	if err := stay.Validate(); err != nil {
		return AvailabilityResult{}, err
	}
	if _, err := s.mustGetRoom(ctx, roomID); err != nil {
		return AvailabilityResult{}, err
	}
	existing, err := s.Store.ListReservationsByRoom(ctx, roomID)
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("failed to load reservations: %w", err)
	}
	return CheckAvailability(stay, existing)
}

// QuoteRoom prices one specific room over a stay.
func (s *Service) QuoteRoom(ctx context.Context, roomID RoomID, stay StayRange) (*Quote, error) {
	room, err := s.mustGetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.Rates.Quote(*room, stay)
}

// =============================================================================
// CREATE - Authoritative commit
// =============================================================================

// BookingRequest carries everything needed to commit a reservation.
// Guest identity is explicit; there is no ambient session.
type BookingRequest struct {
	RoomID          RoomID
	GuestID         GuestID
	Stay            StayRange
	GuestCount      int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

// BookingResult is a committed reservation with its quote.
type BookingResult struct {
	Reservation Reservation
	Quote       *Quote
}

// CreateBooking validates the request, prices the stay, and commits the
// reservation. The store re-checks availability atomically with the
// insert; if another booking won the race, ErrRoomNotAvailable comes back
// and nothing is persisted. A pending payment record is created alongside.
func (s *Service) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := req.Stay.Validate(); err != nil {
		return nil, err
	}
	if req.Stay.CheckIn.Before(DateOf(s.now())) {
		return nil, fmt.Errorf("check-in %s is in the past: %w", req.Stay.CheckIn, ErrInvalidRange)
	}

	room, err := s.mustGetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, fmt.Errorf("room %s: %w", room.ID, ErrRoomInactive)
	}
	if req.GuestCount < 1 {
		req.GuestCount = 1
	}
	if req.GuestCount > room.Capacity {
		return nil, fmt.Errorf("room %s holds %d, requested %d: %w",
			room.ID, room.Capacity, req.GuestCount, ErrCapacityExceeded)
	}

	quote, err := s.Rates.Quote(*room, req.Stay)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reservation := Reservation{
		ID:               newReservationID(),
		BookingReference: NewBookingReference(),
		RoomID:           room.ID,
		GuestID:          req.GuestID,
		Stay:             req.Stay,
		GuestCount:       req.GuestCount,
		TotalAmount:      quote.GrandTotal,
		Status:           StatusPending,
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		GuestPhone:       req.GuestPhone,
		SpecialRequests:  req.SpecialRequests,
		CreatedAt:        now,
	}

	if err := s.Store.CommitReservation(ctx, reservation); err != nil {
		return nil, err
	}

	payment := Payment{
		ID:            newPaymentID(),
		ReservationID: reservation.ID,
		Amount:        quote.GrandTotal,
		Status:        PaymentPending,
		Method:        "credit_card",
		CreatedAt:     now,
	}
	if err := s.Store.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("reservation %s committed but payment record failed: %w",
			reservation.ID, err)
	}

	return &BookingResult{Reservation: reservation, Quote: quote}, nil
}

// =============================================================================
// CONFIRM - Payment success notification
// =============================================================================

// ConfirmPayment promotes a pending reservation to confirmed after the
// external payment collaborator reports success.
func (s *Service) ConfirmPayment(ctx context.Context, reference string) (*Reservation, error) {
	reservation, err := s.mustGetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if reservation.Status != StatusPending {
		return nil, fmt.Errorf("reservation %s is %s: %w",
			reservation.ID, reservation.Status, ErrInvalidStatus)
	}

	now := s.now()
	if err := s.Store.UpdateReservationStatus(ctx, reservation.ID, StatusPending, StatusConfirmed, nil); err != nil {
		return nil, err
	}
	payment, err := s.Store.GetPaymentByReservation(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("confirmed but failed to load payment record: %w", err)
	}
	if payment != nil {
		if err := s.Store.UpdatePaymentStatus(ctx, payment.ID, PaymentCompleted, &now); err != nil {
			return nil, fmt.Errorf("failed to mark payment completed: %w", err)
		}
	}

	reservation.Status = StatusConfirmed
	return reservation, nil
}

// =============================================================================
// CANCEL - Cutoff-checked transition + refund trigger
// =============================================================================

// CancellationResult reports the cancelled reservation and the refund
// instruction to forward to the payment collaborator.
type CancellationResult struct {
	Reservation Reservation
	Refund      *RefundInstruction
}

// Cancel cancels a pending or confirmed reservation owned by the guest.
// Refused inside the cutoff window; the reservation is left unchanged.
func (s *Service) Cancel(ctx context.Context, reference string, guestID GuestID) (*CancellationResult, error) {
	reservation, err := s.mustGetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	// Ownership is part of the lookup contract: a foreign reference
	// behaves exactly like a missing one.
	if reservation.GuestID != guestID {
		return nil, fmt.Errorf("booking %s for guest %s: %w", reference, guestID, ErrNotFound)
	}
	if reservation.Status == StatusCancelled {
		return nil, fmt.Errorf("reservation %s already cancelled: %w", reservation.ID, ErrInvalidStatus)
	}

	now := s.now()
	untilCheckIn := reservation.Stay.CheckIn.StartOfDay().Sub(now)
	if untilCheckIn <= s.cutoff() {
		return nil, &CancellationWindowError{
			ReservationID: reservation.ID,
			CheckIn:       reservation.Stay.CheckIn,
			UntilCheckIn:  untilCheckIn.Round(time.Minute).String(),
		}
	}

	if err := s.Store.UpdateReservationStatus(ctx, reservation.ID, reservation.Status, StatusCancelled, &now); err != nil {
		return nil, err
	}

	result := &CancellationResult{}
	reservation.Status = StatusCancelled
	reservation.CancelledAt = &now
	result.Reservation = *reservation

	payment, err := s.Store.GetPaymentByReservation(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("cancelled but failed to load payment record: %w", err)
	}
	if payment != nil {
		if err := s.Store.UpdatePaymentStatus(ctx, payment.ID, PaymentRefunded, &now); err != nil {
			return nil, fmt.Errorf("cancelled but failed to mark payment refunded: %w", err)
		}
		result.Refund = &RefundInstruction{
			ReservationID: reservation.ID,
			PaymentID:     payment.ID,
			Amount:        payment.Amount,
		}
	}

	return result, nil
}

func (s *Service) cutoff() time.Duration {
	if s.CancellationCutoff > 0 {
		return s.CancellationCutoff
	}
	return DefaultCancellationCutoff
}

// =============================================================================
// GUEST DASHBOARD
// =============================================================================

// GuestStats aggregates a guest's booking history for the dashboard.
type GuestStats struct {
	TotalBookings    int
	TotalSpent       string // decimal string
	UpcomingBookings int
}

// ListBookings returns a guest's reservations, newest first.
func (s *Service) ListBookings(ctx context.Context, guestID GuestID, limit, offset int) ([]Reservation, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Store.ListReservationsByGuest(ctx, guestID, limit, offset)
}

// statsPageSize is how many reservations Stats reads per store round trip.
const statsPageSize = 500

// Stats computes dashboard aggregates. Cancelled stays count toward total
// bookings but not toward spend or upcoming. The history is walked page by
// page so long histories are fully counted.
func (s *Service) Stats(ctx context.Context, guestID GuestID) (*GuestStats, error) {
	stats := &GuestStats{}
	spent := decimal.Zero
	today := DateOf(s.now())

	for offset := 0; ; offset += statsPageSize {
		page, err := s.Store.ListReservationsByGuest(ctx, guestID, statsPageSize, offset)
		if err != nil {
			return nil, err
		}
		stats.TotalBookings += len(page)
		for _, r := range page {
			if r.Status == StatusCancelled {
				continue
			}
			spent = spent.Add(r.TotalAmount)
			if r.Stay.CheckIn.After(today) {
				stats.UpcomingBookings++
			}
		}
		if len(page) < statsPageSize {
			break
		}
	}

	stats.TotalSpent = spent.String()
	return stats, nil
}

// =============================================================================
// LOOKUPS / HELPERS
// =============================================================================

// GetBooking looks a reservation up by its booking reference.
func (s *Service) GetBooking(ctx context.Context, reference string) (*Reservation, error) {
	return s.mustGetByReference(ctx, reference)
}

func (s *Service) mustGetRoom(ctx context.Context, id RoomID) (*Room, error) {
	room, err := s.Store.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", id, err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return room, nil
}

func (s *Service) mustGetByReference(ctx context.Context, reference string) (*Reservation, error) {
	reservation, err := s.Store.GetReservationByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", reference, err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("booking %s: %w", reference, ErrNotFound)
	}
	return reservation, nil
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingReference generates a "LUX"-prefixed reference: the last six
// digits of the unix-millisecond clock plus three random characters.
// Uniqueness is ultimately enforced by the store's unique index.
func NewBookingReference() string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	var sb strings.Builder
	sb.WriteString("LUX")
	sb.WriteString(ms)
	for i := 0; i < 3; i++ {
		sb.WriteByte(referenceAlphabet[rand.Intn(len(referenceAlphabet))])
	}
	return sb.String()
}

func newReservationID() ReservationID {
	return ReservationID(fmt.Sprintf("res-%d", time.Now().UnixNano()))
}

func newPaymentID() PaymentID {
	return PaymentID(fmt.Sprintf("pay-%d", time.Now().UnixNano()))
}
