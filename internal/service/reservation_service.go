// Package service coordinates the booking rules in package booking with
// storage, the cart store and the event stream.
package service

import (
    "context"
    "fmt"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/cart"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/queue"
)

// RoomReader is the part of the room catalog the booking flow reads.
type RoomReader interface {
    GetByID(ctx context.Context, caller policy.Caller, id string) (*model.Room, error)
    GetMany(ctx context.Context, caller policy.Caller, ids []string) (map[string]*model.Room, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
    Create(ctx context.Context, caller policy.Caller, res *model.Reservation) error
    GetByID(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error)
    ListByUser(ctx context.Context, caller policy.Caller) ([]*model.Reservation, error)
    ListAll(ctx context.Context, caller policy.Caller, status string) ([]*model.Reservation, error)
    UpdateStatus(ctx context.Context, caller policy.Caller, ownerID, id, status string) error
}

// EventPublisher receives lifecycle events.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// StayRequest is the stay and guest data submitted at checkout.
type StayRequest struct {
    CheckIn  string
    CheckOut string
    Guests   int
    Guest    model.GuestData
}

type ReservationService struct {
    rooms        RoomReader
    reservations ReservationStore
    carts        cart.Store
    events       EventPublisher
    log          *zap.Logger
    now          func() time.Time
}

func NewReservationService(rooms RoomReader, reservations ReservationStore, carts cart.Store, events EventPublisher, log *zap.Logger) *ReservationService {
    if events == nil {
        events = queue.NopPublisher{}
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &ReservationService{
        rooms:        rooms,
        reservations: reservations,
        carts:        carts,
        events:       events,
        log:          log,
        now:          func() time.Time { return time.Now().UTC() },
    }
}

// WithClock replaces the time source.  Tests use it to pin "now".
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
    s.now = now
    return s
}

// Quote prices the caller's cart for the requested stay.  Unlike Create it
// also rejects a check-in date in the past.
func (s *ReservationService) Quote(ctx context.Context, caller policy.Caller, req StayRequest) (booking.Quote, error) {
    c, err := s.currentCart(ctx, caller)
    if err != nil {
        return booking.Quote{}, err
    }
    stay, err := parseStay(req)
    if err != nil {
        return booking.Quote{}, err
    }
    q, err := booking.NewQuote(c, stay)
    if err != nil {
        return booking.Quote{}, err
    }
    if err := stay.ValidateNotPast(s.now()); err != nil {
        return booking.Quote{}, err
    }
    return q, nil
}

// Create turns the caller's cart into a pending reservation.  The cart is
// cleared only after the row has been written; a failed insert leaves it
// intact so the customer can retry.
func (s *ReservationService) Create(ctx context.Context, caller policy.Caller, req StayRequest) (*model.Reservation, error) {
    c, err := s.currentCart(ctx, caller)
    if err != nil {
        return nil, err
    }
    stay, err := parseStay(req)
    if err != nil {
        return nil, err
    }
    q, err := booking.NewQuote(c, stay)
    if err != nil {
        return nil, err
    }
    guest := booking.NormalizeGuest(req.Guest)
    if err := booking.ValidateGuest(guest); err != nil {
        return nil, err
    }

    res := &model.Reservation{
        UserID:          caller.UserID,
        RoomIDs:         c.RoomIDs(),
        CheckIn:         stay.CheckIn,
        CheckOut:        stay.CheckOut,
        Guests:          stay.Guests,
        TotalPriceCents: q.TotalCents,
        Status:          booking.InitialStatus,
        Guest:           guest,
    }
    if err := s.reservations.Create(ctx, caller, res); err != nil {
        return nil, fmt.Errorf("create reservation: %w", err)
    }
    if err := s.carts.Clear(ctx, caller.UserID); err != nil {
        s.log.Warn("cart not cleared after reservation", zap.String("user_id", caller.UserID),
            zap.String("reservation_id", res.ID), zap.Error(err))
    }
    s.publish(ctx, caller, res, "")
    return res, nil
}

// Get returns one reservation visible to the caller.
func (s *ReservationService) Get(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    return s.reservations.GetByID(ctx, caller, id)
}

// ListMine returns the caller's reservations.
func (s *ReservationService) ListMine(ctx context.Context, caller policy.Caller) ([]*model.Reservation, error) {
    return s.reservations.ListByUser(ctx, caller)
}

// ListAll returns every reservation, optionally filtered by status.
func (s *ReservationService) ListAll(ctx context.Context, caller policy.Caller, status string) ([]*model.Reservation, error) {
    if status != "" && !booking.IsValidStatus(status) {
        return nil, &booking.ValidationError{Field: "status", Message: "must be one of pending confirmed cancelled completed"}
    }
    return s.reservations.ListAll(ctx, caller, status)
}

// CancelByCustomer cancels the caller's own reservation.  A stay whose
// check-in is not strictly in the future cannot be cancelled regardless of
// status; otherwise only pending reservations can be.
func (s *ReservationService) CancelByCustomer(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    res, err := s.reservations.GetByID(ctx, caller, id)
    if err != nil {
        return nil, err
    }
    if res.UserID != caller.UserID {
        return nil, policy.ErrForbidden
    }
    stay := booking.Stay{CheckIn: res.CheckIn, CheckOut: res.CheckOut, Guests: res.Guests}
    if stay.HasStarted(s.now()) {
        return nil, booking.ErrAlreadyStarted
    }
    return s.apply(ctx, caller, res, booking.EventCancel)
}

// Confirm moves a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    return s.adminTransition(ctx, caller, id, booking.EventConfirm)
}

// CancelByAdmin cancels a pending reservation.  No date checks apply.
func (s *ReservationService) CancelByAdmin(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    return s.adminTransition(ctx, caller, id, booking.EventCancel)
}

// Complete moves a confirmed reservation to completed.
func (s *ReservationService) Complete(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    return s.adminTransition(ctx, caller, id, booking.EventComplete)
}

func (s *ReservationService) adminTransition(ctx context.Context, caller policy.Caller, id string, ev booking.Event) (*model.Reservation, error) {
    if caller.UserID == "" {
        return nil, policy.ErrUnauthenticated
    }
    if !caller.IsAdmin() {
        return nil, policy.ErrForbidden
    }
    res, err := s.reservations.GetByID(ctx, caller, id)
    if err != nil {
        return nil, err
    }
    return s.apply(ctx, caller, res, ev)
}

// apply runs ev through the state machine and persists the result.  A
// rejected event never reaches storage.
func (s *ReservationService) apply(ctx context.Context, caller policy.Caller, res *model.Reservation, ev booking.Event) (*model.Reservation, error) {
    next, err := booking.Transition(res.Status, ev)
    if err != nil {
        return nil, err
    }
    if err := s.reservations.UpdateStatus(ctx, caller, res.UserID, res.ID, next); err != nil {
        return nil, fmt.Errorf("update reservation %s: %w", res.ID, err)
    }
    prev := res.Status
    updated := *res
    updated.Status = next
    updated.UpdatedAt = s.now()
    s.publish(ctx, caller, &updated, prev)
    return &updated, nil
}

// currentCart loads the caller's cart and refreshes capacity and price of
// every entry from the catalog so that totals use current prices.  Rooms
// deleted since they were added fail the request.
func (s *ReservationService) currentCart(ctx context.Context, caller policy.Caller) (*booking.Cart, error) {
    if caller.UserID == "" {
        return nil, policy.ErrUnauthenticated
    }
    c, err := s.carts.Load(ctx, caller.UserID)
    if err != nil {
        return nil, err
    }
    if c.Len() == 0 {
        return nil, booking.ErrEmptyCart
    }
    rooms, err := s.rooms.GetMany(ctx, caller, c.RoomIDs())
    if err != nil {
        return nil, err
    }
    for i, it := range c.Items {
        rm, ok := rooms[it.RoomID]
        if !ok {
            return nil, &booking.ValidationError{Field: "room_ids", Message: fmt.Sprintf("room %s no longer exists", it.RoomID)}
        }
        c.Items[i].Name = rm.Name
        c.Items[i].Type = rm.Type
        c.Items[i].Capacity = rm.Capacity
        c.Items[i].PriceCents = rm.PriceCents
    }
    return c, nil
}

func parseStay(req StayRequest) (booking.Stay, error) {
    in, err := booking.ParseDate("check_in", req.CheckIn)
    if err != nil {
        return booking.Stay{}, err
    }
    out, err := booking.ParseDate("check_out", req.CheckOut)
    if err != nil {
        return booking.Stay{}, err
    }
    return booking.Stay{CheckIn: in, CheckOut: out, Guests: req.Guests}, nil
}

func (s *ReservationService) publish(ctx context.Context, caller policy.Caller, res *model.Reservation, prev string) {
    ev := queue.ReservationEvent{
        Type:               queue.TypeForStatus(res.Status),
        ReservationID:      res.ID,
        ConfirmationNumber: booking.ConfirmationNumber(res.ID),
        UserID:             res.UserID,
        RoomIDs:            res.RoomIDs,
        CheckIn:            res.CheckIn.Format(booking.DateLayout),
        CheckOut:           res.CheckOut.Format(booking.DateLayout),
        Guests:             res.Guests,
        TotalPriceCents:    res.TotalPriceCents,
        Status:             res.Status,
        PreviousStatus:     prev,
        ActorID:            caller.UserID,
        ActorRole:          caller.Role,
        OccurredAt:         s.now().Format(time.RFC3339),
    }
    if err := s.events.Publish(ctx, ev); err != nil {
        s.log.Warn("lifecycle event not published", zap.String("type", ev.Type),
            zap.String("reservation_id", res.ID), zap.Error(err))
    }
}
