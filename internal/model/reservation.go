package model

import "time"

// Reservation status values.
const (
    StatusPending   = "pending"
    StatusConfirmed = "confirmed"
    StatusCancelled = "cancelled"
    StatusCompleted = "completed"
)

// GuestData is the contact record of the person staying.  It is stored as a
// JSON document in reservations.guest_data.
type GuestData struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Email     string `json:"email"`
    Phone     string `json:"phone"`
    Document  string `json:"document"`
}

// Reservation records a stay booked by one user over one or more rooms.
// RoomIDs keeps selection order and may repeat an id when several units of
// the same room were selected.
//
// Fields:
//  ID              – UUID primary key; its first 8 characters form the
//                    confirmation number.
//  UserID          – owner of the reservation.
//  RoomIDs         – rooms covered by the stay (JSON column).
//  CheckIn         – arrival date (DATE, UTC midnight).
//  CheckOut        – departure date (DATE, UTC midnight).
//  Guests          – number of guests.
//  TotalPriceCents – nights × Σ nightly prices, fixed at creation.
//  Status          – pending, confirmed, cancelled or completed.
//  Guest           – contact record (JSON column).
type Reservation struct {
    ID              string    // reservations.id
    UserID          string    // reservations.user_id
    RoomIDs         []string  // reservations.room_ids
    CheckIn         time.Time // reservations.check_in
    CheckOut        time.Time // reservations.check_out
    Guests          int       // reservations.guests
    TotalPriceCents int64     // reservations.total_price_cents
    Status          string    // reservations.status
    Guest           GuestData // reservations.guest_data
    CreatedAt       time.Time // reservations.created_at
    UpdatedAt       time.Time // reservations.updated_at
}
