/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP handlers, stores) wrap these with additional context.

ERROR CATEGORIES:
  1. Input errors - Malformed ranges, prices, guest counts
  2. Conflict errors - Availability lost between search and commit
  3. Policy errors - Cancellation cutoff violations
  4. Lookup errors - Unknown rooms/reservations

USAGE:
  Propagation is typed failures to the immediate caller. No silent
  recovery, no retries inside the engine:

    if errors.Is(err, booking.ErrRoomNotAvailable) {
        // 409 to the client; the first committed booking won
    }

SEE ALSO:
  - service.go: Primary producer of these errors
  - store/sqlite: Maps storage-level conflicts onto these sentinels
*/
package booking

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when check-out is not strictly after check-in.
	ErrInvalidRange = errors.New("invalid stay range: check-out must be after check-in")

	// ErrInvalidPrice is returned when a room's base price is not positive.
	ErrInvalidPrice = errors.New("invalid base price: must be positive")

	// ErrRoomNotAvailable is returned when the authoritative commit-time check
	// finds a conflicting reservation. The earlier search-time check is
	// advisory; this one is final. First committed booking wins.
	ErrRoomNotAvailable = errors.New("room is no longer available for selected dates")

	// ErrCancellationWindowClosed is returned when cancellation is requested
	// inside the 24-hour pre-check-in window. The reservation is unchanged.
	ErrCancellationWindowClosed = errors.New("cancellation not allowed within 24 hours of check-in")

	// ErrNotFound is returned for unknown room/reservation references.
	ErrNotFound = errors.New("not found")

	// ErrRoomInactive is returned when booking a room that is not active.
	ErrRoomInactive = errors.New("room is not active")

	// ErrCapacityExceeded is returned when guest count exceeds room capacity.
	ErrCapacityExceeded = errors.New("guest count exceeds room capacity")

	// ErrInvalidStatus is returned on a disallowed status transition
	// (e.g. confirming payment on a cancelled reservation).
	ErrInvalidStatus = errors.New("invalid reservation status for this operation")

	// ErrDuplicateReference is returned when a booking reference collides.
	ErrDuplicateReference = errors.New("duplicate booking reference")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError carries the offending range.
type InvalidRangeError struct {
	CheckIn  Date
	CheckOut Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid stay range: check-in %s, check-out %s", e.CheckIn, e.CheckOut)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// AvailabilityConflictError reports how many active reservations block a stay.
type AvailabilityConflictError struct {
	RoomID    RoomID
	Stay      StayRange
	Conflicts int
}

func (e *AvailabilityConflictError) Error() string {
	return fmt.Sprintf("room %s unavailable for %s: %d conflicting reservation(s)",
		e.RoomID, e.Stay, e.Conflicts)
}

func (e *AvailabilityConflictError) Unwrap() error { return ErrRoomNotAvailable }

// CancellationWindowError reports how close to check-in the request came.
type CancellationWindowError struct {
	ReservationID ReservationID
	CheckIn       Date
	UntilCheckIn  string // human-readable remaining time
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("reservation %s: cancellation window closed (%s until check-in %s)",
		e.ReservationID, e.UntilCheckIn, e.CheckIn)
}

func (e *CancellationWindowError) Unwrap() error { return ErrCancellationWindowClosed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrRoomInactive)
}

// IsConflict returns true if the error maps to a booking conflict
// (HTTP 409 territory).
func IsConflict(err error) bool {
	return errors.Is(err, ErrRoomNotAvailable) ||
		errors.Is(err, ErrCancellationWindowClosed) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrDuplicateReference)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
