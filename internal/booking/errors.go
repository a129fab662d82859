// Package booking holds the reservation rules that do not depend on storage:
// the room cart, stay validation, pricing, guest contact validation and the
// reservation status state machine.  Everything here is pure and takes the
// current time as an argument where it matters.
package booking

import (
    "errors"
    "fmt"

    "github.com/iliyamo/hotel-reservation/internal/validation"
)

// ErrInvalidDateRange is returned when check-out is not strictly after check-in.
var ErrInvalidDateRange = errors.New("check-out date must be after check-in date")

// ErrAlreadyStarted is returned when a customer tries to cancel a
// reservation whose check-in date is not in the future.
var ErrAlreadyStarted = errors.New("reservation has already started")

// ErrCheckInPast is returned when a quoted stay begins before today.
var ErrCheckInPast = errors.New("check-in date is in the past")

// ErrEmptyCart is returned when a reservation is attempted without rooms.
var ErrEmptyCart = errors.New("no rooms selected")

// ValidationError describes a missing or malformed input field.
type ValidationError = validation.Error

// CapacityExceededError reports a guest count above the selected capacity.
type CapacityExceededError struct {
    Requested int
    Max       int
}

func (e *CapacityExceededError) Error() string {
    return fmt.Sprintf("too many guests: %d requested, maximum is %d", e.Requested, e.Max)
}

// UnavailableError is returned when a room that is not available is added
// to a cart.
type UnavailableError struct {
    RoomID string
    Status string
}

func (e *UnavailableError) Error() string {
    return fmt.Sprintf("room %s is not available (status %s)", e.RoomID, e.Status)
}

// InvalidTransitionError is returned when an event has no transition from
// the reservation's current status.
type InvalidTransitionError struct {
    From  string
    Event Event
}

func (e *InvalidTransitionError) Error() string {
    return fmt.Sprintf("cannot %s a %s reservation", e.Event, e.From)
}
