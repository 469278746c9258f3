/*
store.go - Persistence interfaces for hotels, rooms, reservations, payments

PURPOSE:
  Defines the boundary between the booking engine and the datastore.
  Implementations: store/sqlite (production) and booking/store (in-memory,
  tests and dev runs).

AUTHORITATIVE COMMIT:
  CommitReservation is the one write that MUST re-verify availability
  inside the same storage transaction that inserts the row. An
  application-level check-then-insert without a storage-level guard is
  vulnerable to the race between check and insert; implementations
  serialize the check and the insert (mutex + SQL transaction, or a
  database overlap constraint).

STATUS TRANSITIONS:
  Reservations are never deleted. UpdateReservationStatus is a guarded
  compare-and-swap: the transition only happens if the stored status
  still matches the expected one.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - booking/store/memory.go: In-memory implementation
*/
package booking

import (
	"context"
	"time"
)

// =============================================================================
// ROOM / HOTEL READ SIDE
// =============================================================================

// RoomFilter narrows room searches.
type RoomFilter struct {
	HotelID     *HotelID
	Category    *RoomCategory
	MinCapacity int
	ActiveOnly  bool
}

type HotelStore interface {
	SaveHotel(ctx context.Context, h Hotel) error
	GetHotel(ctx context.Context, id HotelID) (*Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
}

type RoomStore interface {
	SaveRoom(ctx context.Context, r Room) error
	GetRoom(ctx context.Context, id RoomID) (*Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
}

// =============================================================================
// RESERVATION STORE
// =============================================================================

type ReservationStore interface {
	// CommitReservation inserts a reservation iff no pending/confirmed
	// reservation for the same room overlaps its stay. The overlap check
	// and the insert happen atomically; on conflict it returns
	// ErrRoomNotAvailable (wrapped in AvailabilityConflictError) and
	// persists nothing.
	CommitReservation(ctx context.Context, r Reservation) error

	GetReservation(ctx context.Context, id ReservationID) (*Reservation, error)
	GetReservationByReference(ctx context.Context, ref string) (*Reservation, error)

	// ListReservationsByRoom returns a room's reservations ordered by check-in.
	ListReservationsByRoom(ctx context.Context, roomID RoomID) ([]Reservation, error)

	// ListReservationsByGuest returns a guest's reservations, newest first.
	ListReservationsByGuest(ctx context.Context, guestID GuestID, limit, offset int) ([]Reservation, error)

	// ListPendingCreatedBefore returns pending reservations created before
	// the cutoff timestamp. Used by the hold sweeper.
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]Reservation, error)

	// UpdateReservationStatus transitions a reservation from one status to
	// another. Fails with ErrInvalidStatus if the stored status no longer
	// matches from. cancelledAt is recorded on transitions to cancelled.
	UpdateReservationStatus(ctx context.Context, id ReservationID, from, to ReservationStatus, cancelledAt *time.Time) error
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

type PaymentStore interface {
	SavePayment(ctx context.Context, p Payment) error
	GetPaymentByReservation(ctx context.Context, reservationID ReservationID) (*Payment, error)

	// UpdatePaymentStatus transitions a payment record. processedAt is
	// recorded when the new status is terminal for processing
	// (completed/refunded/expired).
	UpdatePaymentStatus(ctx context.Context, id PaymentID, status PaymentStatus, processedAt *time.Time) error
}

// Store bundles everything the booking service needs.
type Store interface {
	HotelStore
	RoomStore
	ReservationStore
	PaymentStore
}
