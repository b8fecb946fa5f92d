package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// newTestService seeds one customer (id 1) and one available bay
// (id 1, $2.00/hour) and pins the clock to 2026-09-01 07:00 UTC.
func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	ctx := context.Background()

	u := &model.User{Email: "driver@example.com", PasswordHash: "x", FullName: "Test Driver",
		PhoneNumber: "+6591234567", CarPlate: "SGP1234A", Role: model.RoleCustomer}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	b := &model.ParkingBay{Title: "Bay A1", Latitude: 1.3521, Longitude: 103.8198,
		PriceCents: 200, Available: true}
	if err := store.CreateBay(ctx, b); err != nil {
		t.Fatalf("seed bay: %v", err)
	}

	svc := New(store)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC) }
	return svc, store
}

func mustCreate(t *testing.T, svc *Service, start, end time.Time) *model.Reservation {
	t.Helper()
	res, _, err := svc.CreateReservation(context.Background(), CreateInput{
		UserID: 1, ParkingBayID: 1, StartTime: start, EndTime: end, CarPlate: "SGP1234A",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	return res
}

func TestCreateReservation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, pay, err := svc.CreateReservation(ctx, CreateInput{
		UserID: 1, ParkingBayID: 1,
		StartTime: ts(9, 0), EndTime: ts(10, 30),
		CarPlate: "SGP1234A",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if res.ID == 0 || res.Status != model.StatusActive {
		t.Fatalf("reservation = %+v, want generated ID and active status", res)
	}
	if pay.AmountCents != 400 {
		t.Fatalf("charge = %d cents, want 400 (1h30m rounded to 2h at 200/h)", pay.AmountCents)
	}
	if pay.PaymentMethod != DefaultPaymentMethod || pay.Status != model.TxStatusCompleted {
		t.Fatalf("payment = %+v, want default method and completed status", pay)
	}

	u, err := store.UserByID(ctx, 1)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	// $4 charge -> base 4 points plus a random bonus of at most 10%.
	if u.LoyaltyPoints < 4 || u.LoyaltyPoints > 4+4/10 {
		t.Fatalf("loyalty = %d, want in [4, 4]", u.LoyaltyPoints)
	}
}

func TestCreateReservationOverlapRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, ts(9, 0), ts(11, 0))
	before := store.transactionCount()

	_, _, err := svc.CreateReservation(ctx, CreateInput{
		UserID: 1, ParkingBayID: 1,
		StartTime: ts(10, 0), EndTime: ts(12, 0),
		CarPlate: "SGP1234A",
	})
	if !errors.Is(err, repository.ErrSlotConflict) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}
	if got := store.transactionCount(); got != before {
		t.Fatalf("ledger grew to %d entries on a failed booking, want %d", got, before)
	}
}

func TestCreateReservationBoundaryTouchAllowed(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, ts(9, 0), ts(10, 0))
	// [10:00, 11:00) starts exactly when the first ends.
	mustCreate(t, svc, ts(10, 0), ts(11, 0))
}

func TestCreateReservationBayUnavailable(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := store.SetBayAvailability(ctx, 1, false); err != nil {
		t.Fatalf("SetBayAvailability: %v", err)
	}
	_, _, err := svc.CreateReservation(ctx, CreateInput{
		UserID: 1, ParkingBayID: 1,
		StartTime: ts(9, 0), EndTime: ts(10, 0),
		CarPlate: "SGP1234A",
	})
	if !errors.Is(err, repository.ErrBayUnavailable) {
		t.Fatalf("err = %v, want ErrBayUnavailable", err)
	}
}

func TestCreateReservationInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.CreateReservation(context.Background(), CreateInput{
		UserID: 1, ParkingBayID: 1,
		StartTime: ts(10, 0), EndTime: ts(9, 0), // end before start
		CarPlate: "sgp-lower",
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *model.ValidationError", err)
	}
}

func TestCreateReservationMissingBay(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.CreateReservation(context.Background(), CreateInput{
		UserID: 1, ParkingBayID: 42,
		StartTime: ts(9, 0), EndTime: ts(10, 0),
		CarPlate: "SGP1234A",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentCreatesOneWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const racers = 10
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CreateReservation(ctx, CreateInput{
				UserID: 1, ParkingBayID: 1,
				StartTime: ts(9, 0), EndTime: ts(10, 0),
				CarPlate: "SGP1234A",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != racers-1 {
		t.Fatalf("wins = %d, conflicts = %d; want exactly one winner", wins, conflicts)
	}
}

func TestRefundReservation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res := mustCreate(t, svc, ts(9, 0), ts(11, 0))

	refund, err := svc.RefundReservation(ctx, res.ID, 99)
	if err != nil {
		t.Fatalf("RefundReservation: %v", err)
	}
	if refund.AmountCents != -400 || refund.PaymentMethod != model.PaymentMethodRefund {
		t.Fatalf("refund = %+v, want -400 cents via refund method", refund)
	}

	got, err := store.ReservationByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if got.Status != model.StatusRefunded {
		t.Fatalf("status = %q, want refunded", got.Status)
	}
	if store.adminActionCount() != 1 {
		t.Fatalf("admin actions = %d, want 1", store.adminActionCount())
	}
}

func TestRefundReservationTwiceRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res := mustCreate(t, svc, ts(9, 0), ts(10, 0))
	if _, err := svc.RefundReservation(ctx, res.ID, 99); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	ledgerBefore := store.transactionCount()

	_, err := svc.RefundReservation(ctx, res.ID, 99)
	if !errors.Is(err, repository.ErrAlreadyRefunded) {
		t.Fatalf("err = %v, want ErrAlreadyRefunded", err)
	}
	if store.transactionCount() != ledgerBefore {
		t.Fatal("second refund attempt wrote a ledger entry")
	}
	if store.adminActionCount() != 1 {
		t.Fatalf("admin actions = %d, want 1", store.adminActionCount())
	}
}

func TestRefundWithoutChargeRollsBack(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// A reservation inserted without a payment record cannot be
	// refunded, and the failed attempt must not flip its status.
	r := &model.Reservation{UserID: 1, ParkingBayID: 1,
		StartTime: ts(9, 0), EndTime: ts(10, 0),
		Status: model.StatusActive, CarPlate: "SGP1234A"}
	if err := store.InsertReservation(ctx, r); err != nil {
		t.Fatalf("InsertReservation: %v", err)
	}

	_, err := svc.RefundReservation(ctx, r.ID, 99)
	if !errors.Is(err, repository.ErrNoTransaction) {
		t.Fatalf("err = %v, want ErrNoTransaction", err)
	}
	got, err := store.ReservationByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if got.Status != model.StatusActive {
		t.Fatalf("status = %q after rolled-back refund, want active", got.Status)
	}
}

func TestCancelReservationFreesSlot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res := mustCreate(t, svc, ts(9, 0), ts(10, 0))
	if err := svc.CancelReservation(ctx, res.ID, 99); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	got, _ := store.ReservationByID(ctx, res.ID)
	if got.Status != model.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
	if store.adminActionCount() != 1 {
		t.Fatalf("admin actions = %d, want 1", store.adminActionCount())
	}

	// The cancelled interval no longer occupies the bay.
	mustCreate(t, svc, ts(9, 0), ts(10, 0))
}

func TestCheckInCheckOut(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res := mustCreate(t, svc, ts(9, 0), ts(10, 0))

	if err := svc.CheckOut(ctx, 1, res.ID); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("check-out before check-in: err = %v, want ErrConflict", err)
	}
	if err := svc.CheckIn(ctx, 2, res.ID); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("check-in by stranger: err = %v, want ErrForbidden", err)
	}
	if err := svc.CheckIn(ctx, 1, res.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	got, _ := store.ReservationByID(ctx, res.ID)
	if got.Status != model.StatusCheckedIn {
		t.Fatalf("status = %q, want checked-in", got.Status)
	}
	if err := svc.CheckOut(ctx, 1, res.ID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	got, _ = store.ReservationByID(ctx, res.ID)
	if got.Status != model.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
}

func TestUpdateLoyaltyPoints(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.UpdateLoyaltyPoints(ctx, 1, 30); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := svc.UpdateLoyaltyPoints(ctx, 1, -50); !errors.Is(err, repository.ErrInsufficientPoints) {
		t.Fatalf("overdraw: err = %v, want ErrInsufficientPoints", err)
	}
	u, _ := store.UserByID(ctx, 1)
	if u.LoyaltyPoints != 30 {
		t.Fatalf("balance = %d after rejected overdraw, want 30", u.LoyaltyPoints)
	}
	if err := svc.UpdateLoyaltyPoints(ctx, 1, -30); err != nil {
		t.Fatalf("spend to zero: %v", err)
	}
}

func TestAvailableTimeSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, ts(9, 0), ts(10, 0))
	mustCreate(t, svc, ts(13, 0), ts(14, 0))

	slots, err := svc.AvailableTimeSlots(ctx, 1, ts(0, 0))
	if err != nil {
		t.Fatalf("AvailableTimeSlots: %v", err)
	}
	want := []Slot{{ts(8, 0), ts(9, 0)}, {ts(10, 0), ts(13, 0)}, {ts(14, 0), ts(17, 0)}}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(want))
	}
	for i := range slots {
		if !slots[i].Start.Equal(want[i].Start) || !slots[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d = %v-%v, want %v-%v",
				i, slots[i].Start, slots[i].End, want[i].Start, want[i].End)
		}
	}

	if _, err := svc.AvailableTimeSlots(ctx, 42, ts(0, 0)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown bay: err = %v, want ErrNotFound", err)
	}
}

func TestCheckTimeSlotAvailability(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, ts(9, 0), ts(10, 0))

	free, err := svc.CheckTimeSlotAvailability(ctx, 1, ts(9, 30), ts(10, 30))
	if err != nil {
		t.Fatalf("CheckTimeSlotAvailability: %v", err)
	}
	if free {
		t.Fatal("overlapping interval reported free")
	}
	free, err = svc.CheckTimeSlotAvailability(ctx, 1, ts(10, 0), ts(11, 0))
	if err != nil {
		t.Fatalf("CheckTimeSlotAvailability: %v", err)
	}
	if !free {
		t.Fatal("adjacent interval reported busy")
	}
}

func TestCheckAndLockTimeSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sl, err := svc.CheckAndLockTimeSlot(ctx, 1, ts(9, 0), ts(10, 0))
	if err != nil {
		t.Fatalf("CheckAndLockTimeSlot: %v", err)
	}
	if sl.ID == 0 || !sl.LockExpiration.Equal(svc.now().Add(model.SlotLockTTL)) {
		t.Fatalf("lock = %+v, want generated ID and TTL expiration", sl)
	}

	// A second hold on an overlapping interval is refused while the
	// first is alive.
	if _, err := svc.CheckAndLockTimeSlot(ctx, 1, ts(9, 30), ts(10, 30)); !errors.Is(err, repository.ErrSlotConflict) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}

	// After the TTL passes the expired hold is purged and the
	// interval can be locked again.
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC).Add(model.SlotLockTTL + time.Second)
	}
	if _, err := svc.CheckAndLockTimeSlot(ctx, 1, ts(9, 30), ts(10, 30)); err != nil {
		t.Fatalf("re-lock after expiry: %v", err)
	}
}

func TestCheckAndLockTimeSlotSeesAnyStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := mustCreate(t, svc, ts(9, 0), ts(10, 0))
	if err := svc.CancelReservation(ctx, res.ID, 99); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}

	// The payment-flow lock is conservative: even a cancelled
	// reservation on the interval blocks a new hold.
	if _, err := svc.CheckAndLockTimeSlot(ctx, 1, ts(9, 0), ts(10, 0)); !errors.Is(err, repository.ErrSlotConflict) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}
}

func TestRecentReservations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for h := 8; h < 15; h++ {
		mustCreate(t, svc, ts(h, 0), ts(h+1, 0))
	}

	got, err := svc.RecentReservations(ctx, 1, 0)
	if err != nil {
		t.Fatalf("RecentReservations: %v", err)
	}
	if len(got) != recentLimit {
		t.Fatalf("got %d reservations, want default limit %d", len(got), recentLimit)
	}
	// Newest first.
	if !got[0].StartTime.Equal(ts(14, 0)) {
		t.Fatalf("first = %v, want latest booking", got[0].StartTime)
	}
}

func TestCheckCarReservation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.now = func() time.Time { return ts(9, 30) }
	mustCreate(t, svc, ts(9, 0), ts(10, 0))

	got, err := svc.CheckCarReservation(ctx, "SGP1234A")
	if err != nil {
		t.Fatalf("CheckCarReservation: %v", err)
	}
	if got == nil || got.CarPlate != "SGP1234A" {
		t.Fatalf("reservation = %+v, want the active booking", got)
	}

	got, err = svc.CheckCarReservation(ctx, "SGP9999Z")
	if err != nil || got != nil {
		t.Fatalf("unknown plate: (%+v, %v), want (nil, nil)", got, err)
	}

	if _, err := svc.CheckCarReservation(ctx, "bad plate"); err == nil {
		t.Fatal("malformed plate accepted")
	}
}
