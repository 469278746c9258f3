package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanyede/luxestay/booking"
	"github.com/karanyede/luxestay/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SaveHotel(ctx, booking.Hotel{
		ID:       "hotel-1",
		Name:     "Test Hotel",
		IsActive: true,
	}))
	require.NoError(t, store.SaveRoom(ctx, booking.Room{
		ID:        "room-101",
		HotelID:   "hotel-1",
		Category:  booking.CategoryStandard,
		BasePrice: decimal.NewFromInt(100),
		Capacity:  2,
		IsActive:  true,
	}))
	return store
}

func testReservation(id, reference string, status booking.ReservationStatus, checkIn, checkOut booking.Date) booking.Reservation {
	return booking.Reservation{
		ID:               booking.ReservationID(id),
		BookingReference: reference,
		RoomID:           "room-101",
		GuestID:          "guest-1",
		Stay:             booking.NewStayRange(checkIn, checkOut),
		GuestCount:       2,
		TotalAmount:      decimal.NewFromInt(500),
		Status:           status,
		GuestName:        "Test Guest",
		GuestEmail:       "guest@example.com",
		CreatedAt:        time.Now().UTC(),
	}
}

func june(day int) booking.Date {
	return booking.NewDate(2024, time.June, day)
}

// =============================================================================
// ATOMIC COMMIT
// =============================================================================

func TestCommitReservation_OverlapRejectedAtomically(t *testing.T) {
	// GIVEN: A committed pending reservation Jun 10-15
	// WHEN: Committing an overlapping reservation Jun 14-20
	// THEN: The commit fails with conflict details and stores nothing

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusPending, june(10), june(15))))

	err := store.CommitReservation(ctx, testReservation("res-2", "LUX000002BBB", booking.StatusPending, june(14), june(20)))
	assert.ErrorIs(t, err, booking.ErrRoomNotAvailable)

	var conflictErr *booking.AvailabilityConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, booking.RoomID("room-101"), conflictErr.RoomID)

	all, err := store.ListReservationsByRoom(ctx, "room-101")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCommitReservation_CancelledDoesNotBlock(t *testing.T) {
	// GIVEN: A cancelled reservation covering Jun 10-15
	// WHEN: Committing a new reservation over the same nights
	// THEN: The commit succeeds

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusCancelled, june(10), june(15))))
	assert.NoError(t, store.CommitReservation(ctx, testReservation("res-2", "LUX000002BBB", booking.StatusPending, june(10), june(15))))
}

func TestCommitReservation_BackToBackAllowed(t *testing.T) {
	// GIVEN: A confirmed reservation checking out Jun 15
	// WHEN: Committing one checking in Jun 15
	// THEN: The commit succeeds

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusConfirmed, june(10), june(15))))
	assert.NoError(t, store.CommitReservation(ctx, testReservation("res-2", "LUX000002BBB", booking.StatusPending, june(15), june(18))))
}

func TestCommitReservation_DuplicateReference(t *testing.T) {
	// GIVEN: A committed reservation with reference LUX000001AAA
	// WHEN: Committing another with the same reference on free dates
	// THEN: The duplicate is rejected

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusPending, june(10), june(15))))

	err := store.CommitReservation(ctx, testReservation("res-2", "LUX000001AAA", booking.StatusPending, june(20), june(22)))
	assert.ErrorIs(t, err, booking.ErrDuplicateReference)
}

// =============================================================================
// COMPARE-AND-SWAP STATUS UPDATES
// =============================================================================

func TestUpdateReservationStatus_CAS(t *testing.T) {
	// GIVEN: A pending reservation
	// WHEN: Transitioning pending->confirmed, then pending->cancelled
	// THEN: The first succeeds; the second fails because the stored
	//       status is no longer pending

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusPending, june(10), june(15))))

	require.NoError(t, store.UpdateReservationStatus(ctx, "res-1", booking.StatusPending, booking.StatusConfirmed, nil))

	now := time.Now().UTC()
	err := store.UpdateReservationStatus(ctx, "res-1", booking.StatusPending, booking.StatusCancelled, &now)
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)

	got, err := store.GetReservation(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, got.Status)
}

func TestUpdateReservationStatus_Missing(t *testing.T) {
	// GIVEN: No reservation with the given id
	// WHEN: Updating its status
	// THEN: Not found, not an invalid transition

	store := newTestStore(t)
	err := store.UpdateReservationStatus(context.Background(), "res-missing", booking.StatusPending, booking.StatusConfirmed, nil)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestUpdateReservationStatus_RecordsCancelledAt(t *testing.T) {
	// GIVEN: A confirmed reservation
	// WHEN: Cancelling with a timestamp
	// THEN: The stored record carries the cancellation time

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusConfirmed, june(10), june(15))))

	cancelledAt := time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateReservationStatus(ctx, "res-1", booking.StatusConfirmed, booking.StatusCancelled, &cancelledAt))

	got, err := store.GetReservation(ctx, "res-1")
	require.NoError(t, err)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(cancelledAt))
}

// =============================================================================
// LOOKUPS AND LISTINGS
// =============================================================================

func TestGetReservationByReference(t *testing.T) {
	// GIVEN: A stored reservation
	// WHEN: Looking it up by reference
	// THEN: The full record round-trips; unknown references return nil

	store := newTestStore(t)
	ctx := context.Background()

	saved := testReservation("res-1", "LUX000001AAA", booking.StatusPending, june(10), june(15))
	require.NoError(t, store.CommitReservation(ctx, saved))

	got, err := store.GetReservationByReference(ctx, "LUX000001AAA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.GuestEmail, got.GuestEmail)
	assert.True(t, got.Stay.CheckIn.Equal(june(10)))
	assert.True(t, got.Stay.CheckOut.Equal(june(15)))
	assert.True(t, got.TotalAmount.Equal(saved.TotalAmount))

	missing, err := store.GetReservationByReference(ctx, "LUX999999ZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListPendingCreatedBefore(t *testing.T) {
	// GIVEN: An old pending hold, a fresh pending hold, and an old
	//        confirmed reservation
	// WHEN: Listing pending reservations created before the cutoff
	// THEN: Only the old hold comes back

	store := newTestStore(t)
	ctx := context.Background()

	old := testReservation("res-old", "LUX000001AAA", booking.StatusPending, june(10), june(12))
	old.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, store.CommitReservation(ctx, old))

	fresh := testReservation("res-new", "LUX000002BBB", booking.StatusPending, june(14), june(16))
	require.NoError(t, store.CommitReservation(ctx, fresh))

	confirmed := testReservation("res-paid", "LUX000003CCC", booking.StatusConfirmed, june(18), june(20))
	confirmed.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, store.CommitReservation(ctx, confirmed))

	stale, err := store.ListPendingCreatedBefore(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, booking.ReservationID("res-old"), stale[0].ID)
}

func TestListRooms_Filter(t *testing.T) {
	// GIVEN: Rooms across categories, one inactive
	// WHEN: Filtering by category, capacity, and active flag
	// THEN: The filters compose

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, booking.Room{
		ID: "room-301", HotelID: "hotel-1", Category: booking.CategorySuite,
		BasePrice: decimal.NewFromInt(250), Capacity: 4, IsActive: true,
	}))
	require.NoError(t, store.SaveRoom(ctx, booking.Room{
		ID: "room-401", HotelID: "hotel-1", Category: booking.CategorySuite,
		BasePrice: decimal.NewFromInt(300), Capacity: 4, IsActive: false,
	}))

	suite := booking.CategorySuite
	rooms, err := store.ListRooms(ctx, booking.RoomFilter{
		Category:    &suite,
		MinCapacity: 3,
		ActiveOnly:  true,
	})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, booking.RoomID("room-301"), rooms[0].ID)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPayments_RoundTripAndStatus(t *testing.T) {
	// GIVEN: A reservation with a pending payment
	// WHEN: Marking the payment refunded
	// THEN: The stored record reflects the new status and timestamp

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitReservation(ctx, testReservation("res-1", "LUX000001AAA", booking.StatusPending, june(10), june(15))))
	require.NoError(t, store.SavePayment(ctx, booking.Payment{
		ID:            "pay-1",
		ReservationID: "res-1",
		Amount:        decimal.NewFromInt(500),
		Method:        "credit_card",
		Status:        booking.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}))

	processedAt := time.Now().UTC()
	require.NoError(t, store.UpdatePaymentStatus(ctx, "pay-1", booking.PaymentRefunded, &processedAt))

	payment, err := store.GetPaymentByReservation(ctx, "res-1")
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, booking.PaymentRefunded, payment.Status)
	require.NotNil(t, payment.ProcessedAt)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(500)))
}
