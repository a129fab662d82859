package model

import "time"

// Room status values.  Only rooms in RoomAvailable may be added to a cart;
// the flag is toggled manually by administrators.
const (
    RoomAvailable   = "available"
    RoomOccupied    = "occupied"
    RoomMaintenance = "maintenance"
)

// Common room types.  The set is open: any non-empty lowercase token is
// accepted by validation.
const (
    RoomTypeSuite  = "suite"
    RoomTypeDouble = "double"
    RoomTypeSingle = "single"
)

// Room represents a bookable unit as stored in the `rooms` table.
//
// Fields:
//  ID          – UUID primary key.
//  Name        – display name.
//  Type        – suite, double, single or another lowercase token.
//  Capacity    – maximum number of guests, at least 1.
//  PriceCents  – nightly price in cents, never negative.
//  Status      – available, occupied or maintenance.
//  Features    – ordered feature list (JSON column).
//  Description – optional free text.
//  ImageURL    – optional picture.
//  CreatedBy   – administrator who created the room.
type Room struct {
    ID          string    `json:"id"`                    // rooms.id
    Name        string    `json:"name"`                  // rooms.name
    Type        string    `json:"type"`                  // rooms.type
    Capacity    int       `json:"capacity"`              // rooms.capacity
    PriceCents  int64     `json:"price_cents"`           // rooms.price_cents
    Status      string    `json:"status"`                // rooms.status
    Features    []string  `json:"features"`              // rooms.features (JSON)
    Description *string   `json:"description,omitempty"` // rooms.description (nullable)
    ImageURL    *string   `json:"image_url,omitempty"`   // rooms.image_url (nullable)
    CreatedBy   string    `json:"created_by"`            // rooms.created_by
    CreatedAt   time.Time `json:"created_at"`            // rooms.created_at
    UpdatedAt   time.Time `json:"updated_at"`            // rooms.updated_at
}

// IsAvailable reports whether the room can currently be selected.
func (r Room) IsAvailable() bool { return r.Status == RoomAvailable }
