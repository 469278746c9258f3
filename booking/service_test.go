package booking_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanyede/luxestay/booking"
	memstore "github.com/karanyede/luxestay/booking/store"
	"github.com/karanyede/luxestay/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*booking.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := booking.NewService(store)
	return svc, store
}

// pinNow fixes the service clock so cutoff tests are deterministic.
func pinNow(svc *booking.Service, at time.Time) {
	svc.Now = func() time.Time { return at }
}

func seedRoom(t *testing.T, store *sqlite.Store, id booking.RoomID, category booking.RoomCategory, base int64, capacity int) {
	t.Helper()
	ctx := context.Background()

	hotel, err := store.GetHotel(ctx, "hotel-1")
	require.NoError(t, err)
	if hotel == nil {
		require.NoError(t, store.SaveHotel(ctx, booking.Hotel{
			ID:       "hotel-1",
			Name:     "Test Hotel",
			IsActive: true,
		}))
	}

	require.NoError(t, store.SaveRoom(ctx, booking.Room{
		ID:        id,
		HotelID:   "hotel-1",
		Category:  category,
		BasePrice: decimal.NewFromInt(base),
		Capacity:  capacity,
		IsActive:  true,
	}))
}

func bookingRequest(roomID booking.RoomID, sr booking.StayRange) booking.BookingRequest {
	return booking.BookingRequest{
		RoomID:     roomID,
		GuestID:    "guest-1",
		Stay:       sr,
		GuestCount: 2,
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
	}
}

// =============================================================================
// BOOKING LIFECYCLE
// =============================================================================

func TestCreateBooking_PendingWithPriceSnapshot(t *testing.T) {
	// GIVEN: An available standard room at 100/night
	// WHEN: Booking Friday to Sunday
	// THEN: Reservation is pending, total snapshot matches the quote,
	//       and a pending payment record exists

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	result, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17)))
	require.NoError(t, err)

	assert.Equal(t, booking.StatusPending, result.Reservation.Status)
	assert.True(t, result.Reservation.TotalAmount.Equal(decimal.NewFromInt(316)),
		"expected total 316, got %s", result.Reservation.TotalAmount)
	assert.Regexp(t, `^LUX[0-9A-Z]+$`, result.Reservation.BookingReference)

	payment, err := store.GetPaymentByReservation(ctx, result.Reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, booking.PaymentPending, payment.Status)
	assert.True(t, payment.Amount.Equal(result.Reservation.TotalAmount))
}

func TestConfirmPayment_PendingBecomesConfirmed(t *testing.T) {
	// GIVEN: A pending booking
	// WHEN: Payment is confirmed
	// THEN: Reservation is confirmed and the payment completed

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	result, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17)))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmPayment(ctx, result.Reservation.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, confirmed.Status)

	payment, err := store.GetPaymentByReservation(ctx, result.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentCompleted, payment.Status)

	// Confirming twice is refused
	_, err = svc.ConfirmPayment(ctx, result.Reservation.BookingReference)
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}

func TestCreateBooking_PastCheckIn_Rejected(t *testing.T) {
	// GIVEN: The clock reads March 20
	// WHEN: Booking a stay starting March 15
	// THEN: The booking is refused as a range error

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	_, err := svc.CreateBooking(context.Background(), bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17)))
	assert.ErrorIs(t, err, booking.ErrInvalidRange)
}

func TestCreateBooking_CapacityAndInactiveChecks(t *testing.T) {
	// GIVEN: A 2-person room and an inactive room
	// WHEN: Booking 4 guests, then booking the inactive room
	// THEN: Capacity and inactive errors come back respectively

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()

	req := bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17))
	req.GuestCount = 4
	_, err := svc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)

	require.NoError(t, store.SaveRoom(ctx, booking.Room{
		ID:        "room-102",
		HotelID:   "hotel-1",
		Category:  booking.CategoryStandard,
		BasePrice: decimal.NewFromInt(100),
		Capacity:  2,
		IsActive:  false,
	}))
	_, err = svc.CreateBooking(ctx, bookingRequest("room-102", stay(2024, time.March, 15, 2024, time.March, 17)))
	assert.ErrorIs(t, err, booking.ErrRoomInactive)
}

// =============================================================================
// DOUBLE-BOOKING PREVENTION
// =============================================================================

func TestCreateBooking_SecondOverlappingBooking_Rejected(t *testing.T) {
	// GIVEN: A committed booking Jun 10-15
	// WHEN: A second guest books Jun 14-20 on the same room
	// THEN: The second commit fails with a conflict and nothing is stored

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	first, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)

	second := bookingRequest("room-101", stay(2024, time.June, 14, 2024, time.June, 20))
	second.GuestID = "guest-2"
	_, err = svc.CreateBooking(ctx, second)

	assert.ErrorIs(t, err, booking.ErrRoomNotAvailable)
	var conflictErr *booking.AvailabilityConflictError
	assert.ErrorAs(t, err, &conflictErr)

	// Only the first reservation exists
	all, err := store.ListReservationsByRoom(ctx, "room-101")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.Reservation.ID, all[0].ID)
}

func TestCreateBooking_BackToBack_Allowed(t *testing.T) {
	// GIVEN: A booking checking out Jun 15
	// WHEN: Another guest books checking in Jun 15
	// THEN: Both bookings commit

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	_, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)

	second := bookingRequest("room-101", stay(2024, time.June, 15, 2024, time.June, 18))
	second.GuestID = "guest-2"
	_, err = svc.CreateBooking(ctx, second)
	assert.NoError(t, err)
}

func TestCreateBooking_AfterCancellation_Allowed(t *testing.T) {
	// GIVEN: A cancelled booking over the requested nights
	// WHEN: A new guest books the same range
	// THEN: The cancelled record does not block the commit

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	first, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, first.Reservation.BookingReference, "guest-1")
	require.NoError(t, err)

	second := bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15))
	second.GuestID = "guest-2"
	result, err := svc.CreateBooking(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, result.Reservation.Status)
}

// =============================================================================
// CANCELLATION WINDOW
// =============================================================================

func TestCancel_OutsideWindow_RefundIssued(t *testing.T) {
	// GIVEN: A confirmed booking with check-in more than 24h away
	// WHEN: The owning guest cancels
	// THEN: Cancellation succeeds with a refund instruction and the
	//       payment is marked refunded

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, created.Reservation.BookingReference)
	require.NoError(t, err)

	result, err := svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")
	require.NoError(t, err)

	assert.Equal(t, booking.StatusCancelled, result.Reservation.Status)
	require.NotNil(t, result.Refund)
	assert.True(t, result.Refund.Amount.Equal(created.Reservation.TotalAmount))

	payment, err := store.GetPaymentByReservation(ctx, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, payment.Status)
}

func TestCancel_WindowBoundary(t *testing.T) {
	// GIVEN: Check-in Jun 10 at start of day UTC
	// WHEN: Cancelling 24h01m before, then 23h59m before
	// THEN: The first succeeds, the second is refused with window details

	checkIn := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	t.Run("just outside window succeeds", func(t *testing.T) {
		svc, store := newTestService(t)
		pinNow(svc, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
		seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

		ctx := context.Background()
		created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
		require.NoError(t, err)

		pinNow(svc, checkIn.Add(-24*time.Hour-time.Minute))
		_, err = svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")
		assert.NoError(t, err)
	})

	t.Run("inside window refused", func(t *testing.T) {
		svc, store := newTestService(t)
		pinNow(svc, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
		seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

		ctx := context.Background()
		created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
		require.NoError(t, err)

		pinNow(svc, checkIn.Add(-24*time.Hour+time.Minute))
		_, err = svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")

		assert.ErrorIs(t, err, booking.ErrCancellationWindowClosed)
		var windowErr *booking.CancellationWindowError
		require.ErrorAs(t, err, &windowErr)
		assert.Equal(t, created.Reservation.ID, windowErr.ReservationID)

		// Reservation unchanged
		after, err := svc.GetBooking(ctx, created.Reservation.BookingReference)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPending, after.Status)
	})
}

func TestCancel_OwnershipAndIdempotency(t *testing.T) {
	// GIVEN: A booking owned by guest-1
	// WHEN: guest-2 cancels, then guest-1 cancels twice
	// THEN: Foreign cancel reads as not found; the second own cancel is
	//       refused as an invalid transition

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, created.Reservation.BookingReference, "guest-2")
	assert.ErrorIs(t, err, booking.ErrNotFound)

	_, err = svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}

// =============================================================================
// SEARCH AND STATS
// =============================================================================

func TestSearch_FiltersBookedAndSmallRooms(t *testing.T) {
	// GIVEN: Two standard rooms (one booked for the range) and a suite
	// WHEN: Searching the range for 3 guests
	// THEN: Only the free rooms with enough capacity come back, priced

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)
	seedRoom(t, store, "room-102", booking.CategoryStandard, 100, 4)
	seedRoom(t, store, "room-301", booking.CategorySuite, 250, 4)

	ctx := context.Background()
	_, err := svc.CreateBooking(ctx, bookingRequest("room-102", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)

	offers, err := svc.Search(ctx, booking.SearchRequest{
		Stay:   stay(2024, time.June, 12, 2024, time.June, 14),
		Guests: 3,
	})
	require.NoError(t, err)

	// room-101 too small, room-102 booked, only the suite remains
	require.Len(t, offers, 1)
	assert.Equal(t, booking.RoomID("room-301"), offers[0].Room.ID)
	require.NotNil(t, offers[0].Quote)
	assert.Equal(t, 2, offers[0].Quote.Nights)
}

func TestStats_CancelledCountsBookingsNotSpend(t *testing.T) {
	// GIVEN: One confirmed future booking and one cancelled booking
	// WHEN: Computing guest stats
	// THEN: Total bookings is 2, spend and upcoming only count the live one

	svc, store := newTestService(t)
	pinNow(svc, time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)
	seedRoom(t, store, "room-102", booking.CategoryStandard, 100, 2)

	ctx := context.Background()
	kept, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.June, 10, 2024, time.June, 15)))
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, kept.Reservation.BookingReference)
	require.NoError(t, err)

	dropped, err := svc.CreateBooking(ctx, bookingRequest("room-102", stay(2024, time.June, 20, 2024, time.June, 22)))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, dropped.Reservation.BookingReference, "guest-1")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "guest-1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalBookings)
	assert.Equal(t, 1, stats.UpcomingBookings)
	assert.Equal(t, kept.Reservation.TotalAmount.String(), stats.TotalSpent)
}

func TestGetBooking_UnknownReference(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Looking up a reference that was never issued
	// THEN: Not found

	svc, _ := newTestService(t)
	_, err := svc.GetBooking(context.Background(), "LUX000000XXX")
	assert.True(t, errors.Is(err, booking.ErrNotFound))
}

// =============================================================================
// STORE FAULT PROPAGATION
// =============================================================================

// paymentLookupFailStore wraps a Store and fails payment lookups, standing
// in for a storage fault between the status transition and the payment
// follow-up.
type paymentLookupFailStore struct {
	booking.Store
	err error
}

func (s *paymentLookupFailStore) GetPaymentByReservation(context.Context, booking.ReservationID) (*booking.Payment, error) {
	return nil, s.err
}

func TestConfirmPayment_PaymentLookupFailure_Propagated(t *testing.T) {
	// GIVEN: A pending booking whose payment record can no longer be loaded
	// WHEN: Confirming payment
	// THEN: The storage failure surfaces instead of a silent success

	svc, store := newTestService(t)
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)
	pinNow(svc, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))

	ctx := context.Background()
	created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17)))
	require.NoError(t, err)

	boom := errors.New("payments table unavailable")
	svc.Store = &paymentLookupFailStore{Store: store, err: boom}

	_, err = svc.ConfirmPayment(ctx, created.Reservation.BookingReference)
	require.ErrorIs(t, err, boom)
}

func TestCancel_PaymentLookupFailure_Propagated(t *testing.T) {
	// GIVEN: A confirmed booking whose payment record can no longer be loaded
	// WHEN: Cancelling well outside the cutoff window
	// THEN: The storage failure surfaces; no refund instruction is fabricated

	svc, store := newTestService(t)
	seedRoom(t, store, "room-101", booking.CategoryStandard, 100, 2)
	pinNow(svc, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))

	ctx := context.Background()
	created, err := svc.CreateBooking(ctx, bookingRequest("room-101", stay(2024, time.March, 15, 2024, time.March, 17)))
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, created.Reservation.BookingReference)
	require.NoError(t, err)

	boom := errors.New("payments table unavailable")
	svc.Store = &paymentLookupFailStore{Store: store, err: boom}

	result, err := svc.Cancel(ctx, created.Reservation.BookingReference, "guest-1")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, result)
}

// =============================================================================
// LONG HISTORIES
// =============================================================================

func TestStats_LongHistoryFullyCounted(t *testing.T) {
	// GIVEN: A guest with more reservations than one listing page holds
	// WHEN: Computing dashboard stats
	// THEN: Every reservation contributes to the aggregates

	mem := memstore.NewMemory()
	svc := booking.NewService(mem)
	pinNow(svc, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	const total = 501
	start := booking.NewDate(2030, time.January, 1)
	for i := 0; i < total; i++ {
		checkIn := start.AddDays(i * 2)
		require.NoError(t, mem.CommitReservation(ctx, booking.Reservation{
			ID:               booking.ReservationID(fmt.Sprintf("res-%04d", i)),
			BookingReference: fmt.Sprintf("LUX%06dAAA", i),
			RoomID:           "room-101",
			GuestID:          "guest-long",
			Stay:             booking.NewStayRange(checkIn, checkIn.AddDays(1)),
			GuestCount:       1,
			TotalAmount:      decimal.NewFromInt(100),
			Status:           booking.StatusConfirmed,
			CreatedAt:        time.Date(2024, time.January, 1, 0, 0, i, 0, time.UTC),
		}))
	}

	stats, err := svc.Stats(ctx, "guest-long")
	require.NoError(t, err)

	assert.Equal(t, total, stats.TotalBookings)
	assert.Equal(t, total, stats.UpcomingBookings)
	assert.Equal(t, decimal.NewFromInt(total*100).String(), stats.TotalSpent)
}
