// Package queue carries reservation lifecycle events over RabbitMQ: a
// publisher used by the reservation service and a background consumer that
// keeps an audit trail in logs/reservations.log.
package queue

// QueueName is the durable queue every lifecycle event is routed to.
const QueueName = "reservation.events"

// Event types.
const (
    TypeCreated   = "reservation.created"
    TypeConfirmed = "reservation.confirmed"
    TypeCancelled = "reservation.cancelled"
    TypeCompleted = "reservation.completed"
)

// ReservationEvent is published after a reservation is created or changes
// status.  It is self-contained so consumers never read the database.
type ReservationEvent struct {
    Type               string   `json:"type"`
    ReservationID      string   `json:"reservation_id"`
    ConfirmationNumber string   `json:"confirmation_number"`
    UserID             string   `json:"user_id"`
    RoomIDs            []string `json:"room_ids"`
    CheckIn            string   `json:"check_in"`
    CheckOut           string   `json:"check_out"`
    Guests             int      `json:"guests"`
    TotalPriceCents    int64    `json:"total_price_cents"`
    Status             string   `json:"status"`
    PreviousStatus     string   `json:"previous_status,omitempty"`
    ActorID            string   `json:"actor_id"`
    ActorRole          string   `json:"actor_role"`
    OccurredAt         string   `json:"occurred_at"`
}

// TypeForStatus maps the status reached by a transition to its event type.
func TypeForStatus(status string) string {
    switch status {
    case "confirmed":
        return TypeConfirmed
    case "cancelled":
        return TypeCancelled
    case "completed":
        return TypeCompleted
    }
    return TypeCreated
}
