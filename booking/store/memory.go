// Package store provides an in-memory booking.Store implementation
// (tests and dev runs).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/karanyede/luxestay/booking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	hotels       map[booking.HotelID]booking.Hotel
	rooms        map[booking.RoomID]booking.Room
	reservations map[booking.ReservationID]booking.Reservation
	payments     map[booking.PaymentID]booking.Payment
	references   map[string]booking.ReservationID
}

func NewMemory() *Memory {
	return &Memory{
		hotels:       make(map[booking.HotelID]booking.Hotel),
		rooms:        make(map[booking.RoomID]booking.Room),
		reservations: make(map[booking.ReservationID]booking.Reservation),
		payments:     make(map[booking.PaymentID]booking.Payment),
		references:   make(map[string]booking.ReservationID),
	}
}

// =============================================================================
// HOTELS / ROOMS
// =============================================================================

func (m *Memory) SaveHotel(_ context.Context, h booking.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels[h.ID] = h
	return nil
}

func (m *Memory) GetHotel(_ context.Context, id booking.HotelID) (*booking.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.hotels[id]; ok {
		return &h, nil
	}
	return nil, nil
}

func (m *Memory) ListHotels(_ context.Context) ([]booking.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hotels := make([]booking.Hotel, 0, len(m.hotels))
	for _, h := range m.hotels {
		hotels = append(hotels, h)
	}
	sort.Slice(hotels, func(i, j int) bool { return hotels[i].ID < hotels[j].ID })
	return hotels, nil
}

func (m *Memory) SaveRoom(_ context.Context, r booking.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
	return nil
}

func (m *Memory) GetRoom(_ context.Context, id booking.RoomID) (*booking.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) ListRooms(_ context.Context, filter booking.RoomFilter) ([]booking.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rooms []booking.Room
	for _, r := range m.rooms {
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		if filter.HotelID != nil && r.HotelID != *filter.HotelID {
			continue
		}
		if filter.Category != nil && r.Category != *filter.Category {
			continue
		}
		if filter.MinCapacity > 0 && r.Capacity < filter.MinCapacity {
			continue
		}
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// CommitReservation performs the authoritative overlap check and the insert
// under one lock, so no double-booking survives a successful commit.
func (m *Memory) CommitReservation(_ context.Context, r booking.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.references[r.BookingReference]; exists {
		return booking.ErrDuplicateReference
	}

	conflicts := 0
	for _, existing := range m.reservations {
		if existing.RoomID == r.RoomID && existing.Blocks() && existing.Stay.Overlaps(r.Stay) {
			conflicts++
		}
	}
	if conflicts > 0 {
		return &booking.AvailabilityConflictError{RoomID: r.RoomID, Stay: r.Stay, Conflicts: conflicts}
	}

	m.reservations[r.ID] = r
	m.references[r.BookingReference] = r.ID
	return nil
}

func (m *Memory) GetReservation(_ context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reservations[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) GetReservationByReference(_ context.Context, ref string) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.references[ref]; ok {
		if r, ok := m.reservations[id]; ok {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListReservationsByRoom(_ context.Context, roomID booking.RoomID) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []booking.Reservation
	for _, r := range m.reservations {
		if r.RoomID == roomID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Stay.CheckIn.Before(result[j].Stay.CheckIn)
	})
	return result, nil
}

func (m *Memory) ListReservationsByGuest(_ context.Context, guestID booking.GuestID, limit, offset int) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []booking.Reservation
	for _, r := range m.reservations {
		if r.GuestID == guestID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return []booking.Reservation{}, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *Memory) ListPendingCreatedBefore(_ context.Context, cutoff time.Time) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []booking.Reservation
	for _, r := range m.reservations {
		if r.Status == booking.StatusPending && r.CreatedAt.Before(cutoff) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) UpdateReservationStatus(_ context.Context, id booking.ReservationID, from, to booking.ReservationStatus, cancelledAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return booking.ErrNotFound
	}
	if r.Status != from {
		return booking.ErrInvalidStatus
	}
	r.Status = to
	if to == booking.StatusCancelled {
		r.CancelledAt = cancelledAt
	}
	m.reservations[id] = r
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) SavePayment(_ context.Context, p booking.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *Memory) GetPaymentByReservation(_ context.Context, reservationID booking.ReservationID) (*booking.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ReservationID == reservationID {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdatePaymentStatus(_ context.Context, id booking.PaymentID, status booking.PaymentStatus, processedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return booking.ErrNotFound
	}
	p.Status = status
	p.ProcessedAt = processedAt
	m.payments[id] = p
	return nil
}
