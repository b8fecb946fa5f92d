package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every query in this package runs against it, so the same SQL
// serves both plain calls and calls inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is the storage contract the booking service and handlers are
// written against.  The MySQL Store implements it; tests swap in an
// in-memory implementation.  All timestamps are UTC.
type Tx interface {
	// users
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	// AddLoyaltyPoints adjusts the stored balance by delta.  It
	// fails with ErrInsufficientPoints instead of ever storing a
	// negative balance.
	AddLoyaltyPoints(ctx context.Context, userID uint64, delta int64) error

	// parking bays
	CreateBay(ctx context.Context, b *model.ParkingBay) error
	UpdateBay(ctx context.Context, b *model.ParkingBay) error
	DeleteBay(ctx context.Context, id uint64) error
	SetBayAvailability(ctx context.Context, id uint64, available bool) error
	BayByID(ctx context.Context, id uint64) (*model.ParkingBay, error)
	ListBays(ctx context.Context) ([]model.ParkingBay, error)
	SearchBays(ctx context.Context, query string) ([]model.ParkingBay, error)

	// reservations
	InsertReservation(ctx context.Context, r *model.Reservation) error
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uint64, status string) error
	// OverlappingReservations counts reservations for the bay whose
	// [start_time, end_time) interval overlaps [start, end).  With
	// occupyingOnly it considers only active and checked-in rows;
	// without, every reservation regardless of status.
	OverlappingReservations(ctx context.Context, bayID uint64, start, end time.Time, occupyingOnly bool) (int, error)
	ActiveReservationsOn(ctx context.Context, bayID uint64, day time.Time) ([]model.Reservation, error)
	RecentReservationsByUser(ctx context.Context, userID uint64, limit int) ([]model.Reservation, error)
	ActiveReservationByPlate(ctx context.Context, plate string, at time.Time) (*model.Reservation, error)

	// ledger
	InsertTransaction(ctx context.Context, t *model.Transaction) error
	// ChargeByReservation returns the original (positive, non-refund)
	// payment entry for the reservation, or ErrNoTransaction.
	ChargeByReservation(ctx context.Context, reservationID uint64) (*model.Transaction, error)
	AppendAdminAction(ctx context.Context, a *model.AdminAction) error

	// slot locks
	InsertSlotLock(ctx context.Context, l *model.SlotLock) error
	OverlappingSlotLocks(ctx context.Context, bayID uint64, start, end, now time.Time) (int, error)
	PurgeExpiredSlotLocks(ctx context.Context, bayID uint64, now time.Time) error
}

// Store is the MySQL-backed implementation of Tx.  Multi-step
// sequences (create, refund, cancel) go through Atomic so every
// partial write rolls back together.
type Store struct {
	queries
	sdb *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{queries: queries{db: db}, sdb: db}
}

// DB exposes the underlying handle for wiring (token repository,
// schema setup).
func (s *Store) DB() *sql.DB { return s.sdb }

// Atomic runs fn within a single database transaction.  When fn
// returns an error, every write it performed is rolled back; when it
// returns nil, the transaction is committed.  The rollback is also
// taken on panic via the deferred cleanup.
func (s *Store) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.sdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// queries carries the actual SQL.  It is embedded in Store for plain
// calls and instantiated over a *sql.Tx inside Atomic, so every
// method works identically in both modes.  The per-entity methods
// live in the *_store.go files of this package.
type queries struct {
	db DBTX
}
