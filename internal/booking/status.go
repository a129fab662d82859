package booking

import "github.com/iliyamo/hotel-reservation/internal/model"

// Event is an action applied to an existing reservation.
type Event string

const (
    EventConfirm  Event = "confirm"
    EventCancel   Event = "cancel"
    EventComplete Event = "complete"
)

// transitions is the complete state machine.  Creation always yields
// pending and is not an event.  Terminal states map to an empty set.
var transitions = map[string]map[Event]string{
    model.StatusPending: {
        EventConfirm: model.StatusConfirmed,
        EventCancel:  model.StatusCancelled,
    },
    model.StatusConfirmed: {
        EventComplete: model.StatusCompleted,
    },
    model.StatusCancelled: {},
    model.StatusCompleted: {},
}

// InitialStatus is the status assigned to every new reservation.
const InitialStatus = model.StatusPending

// Transition returns the status reached by applying ev to from.
func Transition(from string, ev Event) (string, error) {
    to, ok := transitions[from][ev]
    if !ok {
        return from, &InvalidTransitionError{From: from, Event: ev}
    }
    return to, nil
}

// IsTerminal reports whether no event can leave status.
func IsTerminal(status string) bool {
    return len(transitions[status]) == 0
}

// IsValidStatus reports whether status is part of the state machine.
func IsValidStatus(status string) bool {
    _, ok := transitions[status]
    return ok
}

// Actions lists the events that can be applied to status, in a stable
// order.  Clients use it to decide which buttons to offer.
func Actions(status string) []Event {
    out := make([]Event, 0, 2)
    for _, ev := range []Event{EventConfirm, EventCancel, EventComplete} {
        if _, ok := transitions[status][ev]; ok {
            out = append(out, ev)
        }
    }
    return out
}
