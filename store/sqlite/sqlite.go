/*
Package sqlite provides a SQLite-backed implementation of booking.Store.

PURPOSE:
  Implements all persistence interfaces (HotelStore, RoomStore,
  ReservationStore, PaymentStore) using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  hotels:        Hotel records
  rooms:         Bookable units with base price and capacity
  reservations:  Stay records; never deleted, only status-transitioned
  payments:      Payment records tracked alongside reservations

DOUBLE-BOOKING GUARD:
  CommitReservation runs the conflict count and the insert inside ONE SQL
  transaction, serialized by a write mutex. A pure check-then-insert
  without this guard is vulnerable to the race between check and insert;
  here the overlap re-check is authoritative and first-committed wins.

STATUS TRANSITIONS:
  Reservation updates are compare-and-swap:
    UPDATE reservations SET status=? WHERE id=? AND status=?
  Zero rows affected means the stored status moved underneath the caller
  and the transition is refused (booking.ErrInvalidStatus).

INDEXES:
  - idx_reservations_room_dates: Hot path for overlap checks
  - idx_reservations_guest: Guest dashboard queries
  - idx_reservations_reference (unique): Booking reference lookups
  - idx_reservations_status: Pending-hold sweeper scans

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/luxestay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/store.go: Interface definitions and commit contract
  - booking/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/karanyede/luxestay/booking"
)

// Store implements booking.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hotels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		rating REAL DEFAULT 4.0,
		amenities_json TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		hotel_id TEXT NOT NULL REFERENCES hotels(id),
		room_number TEXT NOT NULL,
		category TEXT NOT NULL,
		base_price TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		description TEXT,
		amenities_json TEXT,
		image_url TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rooms_hotel ON rooms(hotel_id);
	CREATE INDEX IF NOT EXISTS idx_rooms_category ON rooms(category);

	-- Reservations: append-only except for status transitions.
	-- No DELETE statements exist for this table.
	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		booking_reference TEXT NOT NULL,
		room_id TEXT NOT NULL REFERENCES rooms(id),
		guest_id TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		guest_count INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		guest_name TEXT,
		guest_email TEXT,
		guest_phone TEXT,
		special_requests TEXT,
		created_at TEXT NOT NULL,
		cancelled_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_reference
		ON reservations(booking_reference);

	-- Hot path for overlap checks at commit time
	CREATE INDEX IF NOT EXISTS idx_reservations_room_dates
		ON reservations(room_id, check_in, check_out);

	CREATE INDEX IF NOT EXISTS idx_reservations_guest
		ON reservations(guest_id, created_at DESC);

	CREATE INDEX IF NOT EXISTS idx_reservations_status
		ON reservations(status, created_at);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL REFERENCES reservations(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		method TEXT,
		created_at TEXT NOT NULL,
		processed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payments_reservation
		ON payments(reservation_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HOTELS
// =============================================================================

func (s *Store) SaveHotel(ctx context.Context, h booking.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amenitiesJSON, _ := json.Marshal(h.Amenities)
	query := `
		INSERT INTO hotels (id, name, address, phone, email, rating, amenities_json, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, address=excluded.address, phone=excluded.phone,
			email=excluded.email, rating=excluded.rating,
			amenities_json=excluded.amenities_json, is_active=excluded.is_active
	`
	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, query,
		h.ID, h.Name, h.Address, h.Phone, h.Email, h.Rating,
		string(amenitiesJSON), h.IsActive, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save hotel: %w", err)
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id booking.HotelID) (*booking.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, phone, email, rating, amenities_json, is_active, created_at
		FROM hotels WHERE id = ?`, id)

	hotel, err := scanHotel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return hotel, err
}

func (s *Store) ListHotels(ctx context.Context) ([]booking.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, email, rating, amenities_json, is_active, created_at
		FROM hotels ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []booking.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, *h)
	}
	return hotels, rows.Err()
}

func scanHotel(row scanner) (*booking.Hotel, error) {
	var h booking.Hotel
	var phone, email, amenitiesJSON sql.NullString
	var createdAt string

	err := row.Scan(&h.ID, &h.Name, &h.Address, &phone, &email, &h.Rating,
		&amenitiesJSON, &h.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}

	h.Phone = phone.String
	h.Email = email.String
	if amenitiesJSON.Valid && amenitiesJSON.String != "" {
		json.Unmarshal([]byte(amenitiesJSON.String), &h.Amenities)
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &h, nil
}

// =============================================================================
// ROOMS
// =============================================================================

func (s *Store) SaveRoom(ctx context.Context, r booking.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amenitiesJSON, _ := json.Marshal(r.Amenities)
	query := `
		INSERT INTO rooms (id, hotel_id, room_number, category, base_price, capacity,
			description, amenities_json, image_url, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hotel_id=excluded.hotel_id, room_number=excluded.room_number,
			category=excluded.category, base_price=excluded.base_price,
			capacity=excluded.capacity, description=excluded.description,
			amenities_json=excluded.amenities_json, image_url=excluded.image_url,
			is_active=excluded.is_active
	`
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.HotelID, r.RoomNumber, r.Category, r.BasePrice.String(), r.Capacity,
		nullString(r.Description), string(amenitiesJSON), nullString(r.ImageURL),
		r.IsActive, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id booking.RoomID) (*booking.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hotel_id, room_number, category, base_price, capacity,
		       description, amenities_json, image_url, is_active, created_at
		FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return room, err
}

func (s *Store) ListRooms(ctx context.Context, filter booking.RoomFilter) ([]booking.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, hotel_id, room_number, category, base_price, capacity,
		       description, amenities_json, image_url, is_active, created_at
		FROM rooms WHERE 1=1`
	var args []any

	if filter.HotelID != nil {
		query += " AND hotel_id = ?"
		args = append(args, *filter.HotelID)
	}
	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, *filter.Category)
	}
	if filter.MinCapacity > 0 {
		query += " AND capacity >= ?"
		args = append(args, filter.MinCapacity)
	}
	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY hotel_id, room_number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []booking.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func scanRoom(row scanner) (*booking.Room, error) {
	var r booking.Room
	var basePrice, createdAt string
	var description, amenitiesJSON, imageURL sql.NullString

	err := row.Scan(&r.ID, &r.HotelID, &r.RoomNumber, &r.Category, &basePrice,
		&r.Capacity, &description, &amenitiesJSON, &imageURL, &r.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}

	r.BasePrice = mustDecimal(basePrice)
	r.Description = description.String
	r.ImageURL = imageURL.String
	if amenitiesJSON.Valid && amenitiesJSON.String != "" {
		json.Unmarshal([]byte(amenitiesJSON.String), &r.Amenities)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// CommitReservation re-checks availability and inserts, atomically.
// The conflict count and the INSERT share one SQL transaction under the
// write mutex; first committed booking wins.
func (s *Store) CommitReservation(ctx context.Context, r booking.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Authoritative overlap check: half-open [check_in, check_out).
	var conflicts int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE room_id = ?
		  AND status IN ('pending', 'confirmed')
		  AND check_in < ? AND ? < check_out`,
		r.RoomID, r.Stay.CheckOut.String(), r.Stay.CheckIn.String(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflicts > 0 {
		return &booking.AvailabilityConflictError{
			RoomID:    r.RoomID,
			Stay:      r.Stay,
			Conflicts: conflicts,
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations
		(id, booking_reference, room_id, guest_id, check_in, check_out, guest_count,
		 total_amount, status, guest_name, guest_email, guest_phone, special_requests,
		 created_at, cancelled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		r.ID, r.BookingReference, r.RoomID, r.GuestID,
		r.Stay.CheckIn.String(), r.Stay.CheckOut.String(), r.GuestCount,
		r.TotalAmount.String(), r.Status,
		nullString(r.GuestName), nullString(r.GuestEmail), nullString(r.GuestPhone),
		nullString(r.SpecialRequests),
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return booking.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getReservationWhere(ctx, "id = ?", id)
}

func (s *Store) GetReservationByReference(ctx context.Context, ref string) (*booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getReservationWhere(ctx, "booking_reference = ?", ref)
}

func (s *Store) getReservationWhere(ctx context.Context, where string, arg any) (*booking.Reservation, error) {
	row := s.db.QueryRowContext(ctx, reservationSelect+" WHERE "+where, arg)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *Store) ListReservationsByRoom(ctx context.Context, roomID booking.RoomID) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryReservations(ctx,
		reservationSelect+" WHERE room_id = ? ORDER BY check_in ASC", roomID)
}

func (s *Store) ListReservationsByGuest(ctx context.Context, guestID booking.GuestID, limit, offset int) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	return s.queryReservations(ctx,
		reservationSelect+" WHERE guest_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		guestID, limit, offset)
}

func (s *Store) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryReservations(ctx,
		reservationSelect+" WHERE status = 'pending' AND created_at < ? ORDER BY created_at ASC",
		cutoff.UTC().Format(time.RFC3339))
}

// UpdateReservationStatus is a compare-and-swap on the stored status.
func (s *Store) UpdateReservationStatus(ctx context.Context, id booking.ReservationID, from, to booking.ReservationStatus, cancelledAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cancelled sql.NullString
	if cancelledAt != nil {
		cancelled = sql.NullString{String: cancelledAt.UTC().Format(time.RFC3339), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reservations SET status = ?, cancelled_at = COALESCE(?, cancelled_at)
		WHERE id = ? AND status = ?`,
		to, cancelled, id, from)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the reservation is missing or its status moved.
		existing, err := s.getReservationWhere(ctx, "id = ?", id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
		}
		return fmt.Errorf("reservation %s is %s, expected %s: %w",
			id, existing.Status, from, booking.ErrInvalidStatus)
	}
	return nil
}

const reservationSelect = `
	SELECT id, booking_reference, room_id, guest_id, check_in, check_out,
	       guest_count, total_amount, status, guest_name, guest_email,
	       guest_phone, special_requests, created_at, cancelled_at
	FROM reservations`

func (s *Store) queryReservations(ctx context.Context, query string, args ...any) ([]booking.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var result []booking.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

func scanReservation(row scanner) (*booking.Reservation, error) {
	var r booking.Reservation
	var checkIn, checkOut, totalAmount, createdAt string
	var guestName, guestEmail, guestPhone, specialRequests, cancelledAt sql.NullString

	err := row.Scan(&r.ID, &r.BookingReference, &r.RoomID, &r.GuestID,
		&checkIn, &checkOut, &r.GuestCount, &totalAmount, &r.Status,
		&guestName, &guestEmail, &guestPhone, &specialRequests,
		&createdAt, &cancelledAt)
	if err != nil {
		return nil, err
	}

	in, err := booking.ParseDate(checkIn)
	if err != nil {
		return nil, fmt.Errorf("corrupt check_in for %s: %w", r.ID, err)
	}
	out, err := booking.ParseDate(checkOut)
	if err != nil {
		return nil, fmt.Errorf("corrupt check_out for %s: %w", r.ID, err)
	}
	r.Stay = booking.NewStayRange(in, out)
	r.TotalAmount = mustDecimal(totalAmount)
	r.GuestName = guestName.String
	r.GuestEmail = guestEmail.String
	r.GuestPhone = guestPhone.String
	r.SpecialRequests = specialRequests.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if cancelledAt.Valid {
		t, _ := time.Parse(time.RFC3339, cancelledAt.String)
		r.CancelledAt = &t
	}
	return &r, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) SavePayment(ctx context.Context, p booking.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var processedAt sql.NullString
	if p.ProcessedAt != nil {
		processedAt = sql.NullString{String: p.ProcessedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, reservation_id, amount, status, method, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ReservationID, p.Amount.String(), p.Status, nullString(p.Method),
		createdAt.Format(time.RFC3339), processedAt)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *Store) GetPaymentByReservation(ctx context.Context, reservationID booking.ReservationID) (*booking.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, reservation_id, amount, status, method, created_at, processed_at
		FROM payments WHERE reservation_id = ?
		ORDER BY created_at DESC LIMIT 1`, reservationID)

	var p booking.Payment
	var amount, createdAt string
	var method, processedAt sql.NullString

	err := row.Scan(&p.ID, &p.ReservationID, &amount, &p.Status, &method, &createdAt, &processedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Amount = mustDecimal(amount)
	p.Method = method.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if processedAt.Valid {
		t, _ := time.Parse(time.RFC3339, processedAt.String)
		p.ProcessedAt = &t
	}
	return &p, nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id booking.PaymentID, status booking.PaymentStatus, processedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var processed sql.NullString
	if processedAt != nil {
		processed = sql.NullString{String: processedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE payments SET status = ?, processed_at = COALESCE(?, processed_at)
		WHERE id = ?`, status, processed, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("payment %s: %w", id, booking.ErrNotFound)
	}
	return nil
}

// =============================================================================
// ADMIN / DEV
// =============================================================================

// Reset wipes all tables. Dev and scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payments", "reservations", "rooms", "hotels"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
