/*
availability.go - Interval-overlap conflict detection

PURPOSE:
  Decides whether a room is free for a requested stay given its existing
  reservations. Two stays conflict when their half-open ranges share at
  least one night; cancelled reservations never block.

ADVISORY vs AUTHORITATIVE:
  This check is advisory at search time - it may race with a concurrent
  booking. The store repeats it inside the commit transaction, and that
  second check is the one that counts (first committed booking wins).
  See ReservationStore.CommitReservation.

SEE ALSO:
  - date.go: StayRange.Overlaps (the overlap rule itself)
  - service.go: Search path that filters rooms through this check
*/
package booking

// AvailabilityResult is the outcome of an availability check.
type AvailabilityResult struct {
	Available bool
	Conflicts int
}

// CountConflicts returns how many of the given reservations block the stay.
// Only pending and confirmed reservations block; cancelled ones never do.
// Callers pass the reservations of a single room.
func CountConflicts(stay StayRange, existing []Reservation) int {
	conflicts := 0
	for _, r := range existing {
		if r.Blocks() && r.Stay.Overlaps(stay) {
			conflicts++
		}
	}
	return conflicts
}

// CheckAvailability evaluates a stay against a room's existing reservations.
func CheckAvailability(stay StayRange, existing []Reservation) (AvailabilityResult, error) {
	if err := stay.Validate(); err != nil {
		return AvailabilityResult{}, err
	}
	conflicts := CountConflicts(stay, existing)
	return AvailabilityResult{Available: conflicts == 0, Conflicts: conflicts}, nil
}
