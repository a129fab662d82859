package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/cart"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/queue"
    "github.com/iliyamo/hotel-reservation/internal/repository"
)

type fakeRooms map[string]*model.Room

func (f fakeRooms) GetByID(_ context.Context, _ policy.Caller, id string) (*model.Room, error) {
    if rm, ok := f[id]; ok {
        cp := *rm
        return &cp, nil
    }
    return nil, repository.ErrNotFound
}

func (f fakeRooms) GetMany(_ context.Context, _ policy.Caller, ids []string) (map[string]*model.Room, error) {
    out := map[string]*model.Room{}
    for _, id := range ids {
        if rm, ok := f[id]; ok {
            cp := *rm
            out[id] = &cp
        }
    }
    return out, nil
}

type fakeReservations struct {
    rows      map[string]*model.Reservation
    createErr error
    updates   int
    seq       int
}

func newFakeReservations() *fakeReservations {
    return &fakeReservations{rows: map[string]*model.Reservation{}}
}

func (f *fakeReservations) Create(_ context.Context, caller policy.Caller, res *model.Reservation) error {
    if err := policy.InsertReservation(caller, res.UserID); err != nil {
        return err
    }
    if f.createErr != nil {
        return f.createErr
    }
    ids := []string{"3f2a9c1b-aaaa-4bbb-8ccc-000000000001", "7d0e4b22-aaaa-4bbb-8ccc-000000000002"}
    res.ID = ids[f.seq%len(ids)]
    f.seq++
    cp := *res
    f.rows[res.ID] = &cp
    return nil
}

func (f *fakeReservations) GetByID(_ context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    res, ok := f.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    if err := policy.ReadReservation(caller, res.UserID); err != nil {
        return nil, err
    }
    cp := *res
    return &cp, nil
}

func (f *fakeReservations) ListByUser(_ context.Context, caller policy.Caller) ([]*model.Reservation, error) {
    var out []*model.Reservation
    for _, r := range f.rows {
        if r.UserID == caller.UserID {
            out = append(out, r)
        }
    }
    return out, nil
}

func (f *fakeReservations) ListAll(_ context.Context, caller policy.Caller, status string) ([]*model.Reservation, error) {
    if err := policy.ListAllReservations(caller); err != nil {
        return nil, err
    }
    var out []*model.Reservation
    for _, r := range f.rows {
        if status == "" || r.Status == status {
            out = append(out, r)
        }
    }
    return out, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, caller policy.Caller, ownerID, id, status string) error {
    if err := policy.UpdateReservation(caller, ownerID); err != nil {
        return err
    }
    f.updates++
    f.rows[id].Status = status
    return nil
}

type recordingPublisher struct{ events []queue.ReservationEvent }

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
    p.events = append(p.events, ev)
    return errors.New("broker down")
}

var (
    ctx      = context.Background()
    customer = policy.Caller{UserID: "user-1", Role: model.RoleCustomer}
    other    = policy.Caller{UserID: "user-2", Role: model.RoleCustomer}
    admin    = policy.Caller{UserID: "admin-1", Role: model.RoleAdmin}
    now      = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
    guest    = model.GuestData{FirstName: "Ana", LastName: "Diaz", Email: "Ana@Example.com ", Phone: "5551234567", Document: "X12345"}
)

type fixture struct {
    rooms   fakeRooms
    store   *fakeReservations
    carts   *cart.MemoryStore
    events  *recordingPublisher
    svc     *ReservationService
    cartSvc *CartService
}

func newFixture() *fixture {
    f := &fixture{
        rooms: fakeRooms{
            "a": {ID: "a", Name: "A", Type: "double", Capacity: 2, PriceCents: 10000, Status: model.RoomAvailable},
            "b": {ID: "b", Name: "B", Type: "double", Capacity: 2, PriceCents: 15000, Status: model.RoomAvailable},
            "m": {ID: "m", Name: "M", Type: "single", Capacity: 1, PriceCents: 5000, Status: model.RoomMaintenance},
        },
        store:  newFakeReservations(),
        carts:  cart.NewMemoryStore(),
        events: &recordingPublisher{},
    }
    f.svc = NewReservationService(f.rooms, f.store, f.carts, f.events, nil).WithClock(func() time.Time { return now })
    f.cartSvc = NewCartService(f.rooms, f.carts)
    return f
}

func (f *fixture) fillCart(t *testing.T, ids ...string) {
    for _, id := range ids {
        _, err := f.cartSvc.AddRoom(ctx, customer, id)
        require.NoError(t, err)
    }
}

func stay(in, out string, guests int) StayRequest {
    return StayRequest{CheckIn: in, CheckOut: out, Guests: guests, Guest: guest}
}

func TestCreateComputesTotalAndClearsCart(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b")

    res, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-04", 3))
    require.NoError(t, err)
    assert.Equal(t, model.StatusPending, res.Status)
    assert.Equal(t, int64(75000), res.TotalPriceCents)
    assert.Equal(t, []string{"a", "b"}, res.RoomIDs)
    assert.Equal(t, "ana@example.com", res.Guest.Email)
    assert.Equal(t, "user-1", res.UserID)

    c, _ := f.carts.Load(ctx, "user-1")
    assert.Equal(t, 0, c.Len())

    require.Len(t, f.events.events, 1)
    assert.Equal(t, queue.TypeCreated, f.events.events[0].Type)
    assert.Equal(t, "3F2A9C1B", f.events.events[0].ConfirmationNumber)
}

func TestCreateUsesCurrentCatalogPrice(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "a")
    f.rooms["a"].PriceCents = 12000

    res, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-03", 2))
    require.NoError(t, err)
    assert.Equal(t, int64(2*2*12000), res.TotalPriceCents)
    assert.Equal(t, []string{"a", "a"}, res.RoomIDs)
}

func TestCreateCapacityExceeded(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b")

    _, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-04", 5))
    var ce *booking.CapacityExceededError
    require.ErrorAs(t, err, &ce)
    assert.Equal(t, 4, ce.Max)
    assert.Contains(t, err.Error(), "4")
    assert.Empty(t, f.store.rows)

    c, _ := f.carts.Load(ctx, "user-1")
    assert.Equal(t, 2, c.Len())
}

func TestCreateReversedDates(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a")
    _, err := f.svc.Create(ctx, customer, stay("2025-03-04", "2025-03-01", 1))
    assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
}

func TestCreateValidatesGuestAndInput(t *testing.T) {
    f := newFixture()

    _, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-02", 1))
    assert.ErrorIs(t, err, booking.ErrEmptyCart)

    f.fillCart(t, "a")
    req := stay("2025-03-01", "2025-03-02", 1)
    req.Guest.Email = "nope"
    _, err = f.svc.Create(ctx, customer, req)
    var ve *booking.ValidationError
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "email", ve.Field)

    _, err = f.svc.Create(ctx, customer, stay("03/01/2025", "2025-03-02", 1))
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "check_in", ve.Field)

    _, err = f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-02", 0))
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "guests", ve.Field)
}

func TestCreateDoesNotRejectPastCheckIn(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a")
    _, err := f.svc.Create(ctx, customer, stay("2024-12-01", "2024-12-03", 1))
    assert.NoError(t, err)
}

func TestCreateFailureKeepsCart(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b")
    f.store.createErr = errors.New("db down")

    _, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-04", 3))
    require.Error(t, err)
    c, _ := f.carts.Load(ctx, "user-1")
    assert.Equal(t, 2, c.Len())
    assert.Empty(t, f.events.events)
}

func TestCreateRoomDeletedFromCatalog(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b")
    delete(f.rooms, "b")

    _, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-04", 3))
    var ve *booking.ValidationError
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "room_ids", ve.Field)
}

func TestQuote(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b")

    q, err := f.svc.Quote(ctx, customer, stay("2025-03-01", "2025-03-04", 3))
    require.NoError(t, err)
    assert.Equal(t, 3, q.Nights)
    assert.Equal(t, int64(25000), q.NightlyRateCents)
    assert.Equal(t, int64(75000), q.TotalCents)
    assert.Equal(t, 4, q.Capacity)

    _, err = f.svc.Quote(ctx, customer, stay("2025-01-15", "2025-01-18", 2))
    assert.ErrorIs(t, err, booking.ErrCheckInPast)

    c, _ := f.carts.Load(ctx, "user-1")
    assert.Equal(t, 2, c.Len())
    assert.Empty(t, f.store.rows)
}

func seed(f *fixture, id, owner, status, checkIn string) {
    in, _ := time.Parse(booking.DateLayout, checkIn)
    f.store.rows[id] = &model.Reservation{ID: id, UserID: owner, RoomIDs: []string{"a"}, CheckIn: in,
        CheckOut: in.AddDate(0, 0, 2), Guests: 1, TotalPriceCents: 20000, Status: status}
}

func TestCustomerCancelAlreadyStarted(t *testing.T) {
    f := newFixture()
    f.svc.WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })
    seed(f, "r1", "user-1", model.StatusPending, "2025-01-01")

    _, err := f.svc.CancelByCustomer(ctx, customer, "r1")
    assert.ErrorIs(t, err, booking.ErrAlreadyStarted)
    assert.Equal(t, model.StatusPending, f.store.rows["r1"].Status)
    assert.Zero(t, f.store.updates)
}

func TestCustomerCancelStartedTakesPrecedenceOverStatus(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusCompleted, "2025-01-01")
    _, err := f.svc.CancelByCustomer(ctx, customer, "r1")
    assert.ErrorIs(t, err, booking.ErrAlreadyStarted)
}

func TestCustomerCancelPendingFuture(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2025-03-01")

    res, err := f.svc.CancelByCustomer(ctx, customer, "r1")
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)
    assert.Equal(t, model.StatusCancelled, f.store.rows["r1"].Status)
    require.Len(t, f.events.events, 1)
    assert.Equal(t, queue.TypeCancelled, f.events.events[0].Type)
    assert.Equal(t, model.StatusPending, f.events.events[0].PreviousStatus)
}

func TestCustomerCancelConfirmedRejected(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusConfirmed, "2025-03-01")

    _, err := f.svc.CancelByCustomer(ctx, customer, "r1")
    var ite *booking.InvalidTransitionError
    require.ErrorAs(t, err, &ite)
    assert.Equal(t, model.StatusConfirmed, f.store.rows["r1"].Status)
}

func TestCustomerCancelOthersReservation(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2025-03-01")
    _, err := f.svc.CancelByCustomer(ctx, other, "r1")
    assert.ErrorIs(t, err, policy.ErrForbidden)

    _, err = f.svc.CancelByCustomer(ctx, admin, "r1")
    assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestAdminLifecycle(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2024-01-01")

    res, err := f.svc.Confirm(ctx, admin, "r1")
    require.NoError(t, err)
    assert.Equal(t, model.StatusConfirmed, res.Status)

    _, err = f.svc.CancelByAdmin(ctx, admin, "r1")
    var ite *booking.InvalidTransitionError
    require.ErrorAs(t, err, &ite)
    assert.Equal(t, model.StatusConfirmed, f.store.rows["r1"].Status)

    res, err = f.svc.Complete(ctx, admin, "r1")
    require.NoError(t, err)
    assert.Equal(t, model.StatusCompleted, res.Status)

    for _, fn := range []func(context.Context, policy.Caller, string) (*model.Reservation, error){
        f.svc.Confirm, f.svc.CancelByAdmin, f.svc.Complete,
    } {
        _, err := fn(ctx, admin, "r1")
        require.ErrorAs(t, err, &ite)
    }
    assert.Equal(t, model.StatusCompleted, f.store.rows["r1"].Status)
    assert.Equal(t, 2, f.store.updates)
}

func TestAdminCancelPending(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2024-01-01")
    res, err := f.svc.CancelByAdmin(ctx, admin, "r1")
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)
}

func TestAdminTransitionsRequireAdmin(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2025-03-01")
    _, err := f.svc.Confirm(ctx, customer, "r1")
    assert.ErrorIs(t, err, policy.ErrForbidden)
    _, err = f.svc.Complete(ctx, policy.Caller{}, "r1")
    assert.ErrorIs(t, err, policy.ErrUnauthenticated)
    assert.Equal(t, model.StatusPending, f.store.rows["r1"].Status)
}

func TestListAllValidatesStatus(t *testing.T) {
    f := newFixture()
    seed(f, "r1", "user-1", model.StatusPending, "2025-03-01")
    seed(f, "r2", "user-2", model.StatusConfirmed, "2025-03-01")

    _, err := f.svc.ListAll(ctx, admin, "bogus")
    var ve *booking.ValidationError
    require.ErrorAs(t, err, &ve)

    list, err := f.svc.ListAll(ctx, admin, model.StatusConfirmed)
    require.NoError(t, err)
    assert.Len(t, list, 1)

    _, err = f.svc.ListAll(ctx, customer, "")
    assert.ErrorIs(t, err, policy.ErrForbidden)

    mine, err := f.svc.ListMine(ctx, customer)
    require.NoError(t, err)
    assert.Len(t, mine, 1)
}

func TestCartAddUnavailableLeavesCartUnchanged(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a")

    _, err := f.cartSvc.AddRoom(ctx, customer, "m")
    var ue *booking.UnavailableError
    require.ErrorAs(t, err, &ue)
    assert.Equal(t, model.RoomMaintenance, ue.Status)

    c, err := f.cartSvc.Get(ctx, customer)
    require.NoError(t, err)
    assert.Equal(t, []string{"a"}, c.RoomIDs())
}

func TestCartRemoveAndClear(t *testing.T) {
    f := newFixture()
    f.fillCart(t, "a", "b", "a")

    c, err := f.cartSvc.RemoveRoom(ctx, customer, 1)
    require.NoError(t, err)
    assert.Equal(t, []string{"a", "a"}, c.RoomIDs())

    c, err = f.cartSvc.RemoveRoom(ctx, customer, 9)
    require.NoError(t, err)
    assert.Equal(t, 2, c.Len())

    _, err = f.cartSvc.AddRoom(ctx, customer, "missing")
    assert.ErrorIs(t, err, repository.ErrNotFound)

    require.NoError(t, f.cartSvc.Clear(ctx, customer))
    c, _ = f.cartSvc.Get(ctx, customer)
    assert.Equal(t, 0, c.Len())
}

func TestPublishFailureLoggedOnce(t *testing.T) {
    core, logs := observer.New(zapcore.DebugLevel)
    f := newFixture()
    f.svc = NewReservationService(f.rooms, f.store, f.carts, f.events, zap.New(core)).WithClock(func() time.Time { return now })
    f.fillCart(t, "a")

    res, err := f.svc.Create(ctx, customer, stay("2025-03-01", "2025-03-02", 1))
    require.NoError(t, err)
    assert.Equal(t, model.StatusPending, res.Status)

    entries := logs.FilterMessage("lifecycle event not published").All()
    require.Len(t, entries, 1)
    assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
    assert.Equal(t, 1, logs.Len())
}
