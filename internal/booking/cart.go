package booking

import "github.com/iliyamo/hotel-reservation/internal/model"

// CartItem is the snapshot of a room taken when it was added to a cart.
type CartItem struct {
    RoomID     string `json:"room_id"`
    Name       string `json:"name"`
    Type       string `json:"type"`
    Capacity   int    `json:"capacity"`
    PriceCents int64  `json:"price_cents"`
}

// Cart is the ordered room selection of one user's booking flow.  The same
// room may appear several times; each entry stands for one unit.
type Cart struct {
    Items []CartItem `json:"items"`
}

// AddRoom appends room to the cart.  Rooms that are not available are
// rejected with *UnavailableError and the cart is left unchanged.
func (c *Cart) AddRoom(room model.Room) error {
    if !room.IsAvailable() {
        return &UnavailableError{RoomID: room.ID, Status: room.Status}
    }
    c.Items = append(c.Items, CartItem{
        RoomID:     room.ID,
        Name:       room.Name,
        Type:       room.Type,
        Capacity:   room.Capacity,
        PriceCents: room.PriceCents,
    })
    return nil
}

// RemoveRoom drops the entry at index.  Out of range indices are ignored.
func (c *Cart) RemoveRoom(index int) {
    if index < 0 || index >= len(c.Items) {
        return
    }
    c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
}

// Len returns the number of entries.
func (c *Cart) Len() int { return len(c.Items) }

// TotalCapacity sums the capacity of every entry; 0 for an empty cart.
func (c *Cart) TotalCapacity() int {
    total := 0
    for _, it := range c.Items {
        total += it.Capacity
    }
    return total
}

// NightlyRate sums the nightly price of every entry.
func (c *Cart) NightlyRate() int64 {
    var total int64
    for _, it := range c.Items {
        total += it.PriceCents
    }
    return total
}

// RoomIDs returns the room ids in selection order, duplicates included.
func (c *Cart) RoomIDs() []string {
    ids := make([]string, 0, len(c.Items))
    for _, it := range c.Items {
        ids = append(ids, it.RoomID)
    }
    return ids
}
