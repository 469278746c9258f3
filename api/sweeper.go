/*
sweeper.go - Pending-hold sweeper

PURPOSE:

	A pending reservation holds nights on the calendar while the guest
	completes payment. If payment never arrives the hold must be released,
	or the room sits blocked forever. The sweeper periodically cancels
	pending reservations older than the hold duration and expires their
	payments.

DESIGN:
  - Runs a background goroutine with configurable sweep interval
  - Uses the store's compare-and-swap status update so a sweep never
    clobbers a reservation confirmed between listing and update
  - Cancelled holds stay in the database (reservations are append-only);
    they simply stop blocking availability

CONFIGURATION:
  - SweepInterval: How often to sweep (default: 5 minutes)
  - HoldDuration:  How long a pending hold lives (default: 30 minutes)
  - Enabled:       Whether the sweeper is active (default: true)

USAGE:

	sweeper := NewHoldSweeper(store)
	sweeper.Start()
	// ... later
	sweeper.Stop()

SEE ALSO:
  - booking/service.go: Creates the pending holds and confirms payments
  - store/sqlite: ListPendingCreatedBefore, UpdateReservationStatus
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/karanyede/luxestay/booking"
	"github.com/karanyede/luxestay/store/sqlite"
)

// HoldSweeper releases pending reservations whose payment window lapsed.
type HoldSweeper struct {
	Store         *sqlite.Store
	SweepInterval time.Duration
	HoldDuration  time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewHoldSweeper creates a sweeper with default intervals.
func NewHoldSweeper(store *sqlite.Store) *HoldSweeper {
	return &HoldSweeper{
		Store:         store,
		SweepInterval: 5 * time.Minute,
		HoldDuration:  30 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (hs *HoldSweeper) Start() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if !hs.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	hs.ticker = time.NewTicker(hs.SweepInterval)
	hs.wg.Add(1)

	go hs.run()

	log.Printf("[Sweeper] Started with sweep interval: %v, hold duration: %v", hs.SweepInterval, hs.HoldDuration)
}

// Stop stops the sweeper.
func (hs *HoldSweeper) Stop() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.ticker != nil {
		hs.ticker.Stop()
		close(hs.stop)
		hs.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (hs *HoldSweeper) run() {
	defer hs.wg.Done()

	// Run immediately on start
	hs.sweep()

	for {
		select {
		case <-hs.ticker.C:
			hs.sweep()
		case <-hs.stop:
			return
		}
	}
}

func (hs *HoldSweeper) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-hs.HoldDuration)

	stale, err := hs.Store.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Sweeper] Error listing stale holds: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	releasedCount := 0
	skippedCount := 0

	for _, res := range stale {
		cancelledAt := now
		err := hs.Store.UpdateReservationStatus(ctx, res.ID, booking.StatusPending, booking.StatusCancelled, &cancelledAt)
		if err != nil {
			// Confirmed between listing and update; leave it alone.
			if errors.Is(err, booking.ErrInvalidStatus) {
				skippedCount++
				continue
			}
			log.Printf("[Sweeper] Error releasing hold %s: %v", res.ID, err)
			continue
		}

		if err := hs.expirePayment(ctx, res.ID, now); err != nil {
			log.Printf("[Sweeper] Error expiring payment for %s: %v", res.ID, err)
		}
		releasedCount++
	}

	log.Printf("[Sweeper] Completed: %d released, %d skipped (paid in the meantime)", releasedCount, skippedCount)
}

func (hs *HoldSweeper) expirePayment(ctx context.Context, reservationID booking.ReservationID, now time.Time) error {
	payment, err := hs.Store.GetPaymentByReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if payment == nil || payment.Status != booking.PaymentPending {
		return nil
	}
	return hs.Store.UpdatePaymentStatus(ctx, payment.ID, booking.PaymentExpired, &now)
}

// RunNow triggers an immediate sweep (for testing/admin).
func (hs *HoldSweeper) RunNow() {
	hs.sweep()
}
