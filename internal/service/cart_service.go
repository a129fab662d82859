package service

import (
    "context"

    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/cart"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// CartService edits the caller's booking cart.
type CartService struct {
    rooms RoomReader
    carts cart.Store
}

func NewCartService(rooms RoomReader, carts cart.Store) *CartService {
    return &CartService{rooms: rooms, carts: carts}
}

// Get returns the caller's cart, empty when nothing was selected yet.
func (s *CartService) Get(ctx context.Context, caller policy.Caller) (*booking.Cart, error) {
    if caller.UserID == "" {
        return nil, policy.ErrUnauthenticated
    }
    return s.carts.Load(ctx, caller.UserID)
}

// AddRoom reads the room from the catalog and appends it.  A room that is
// not available is rejected and the stored cart stays as it was.
func (s *CartService) AddRoom(ctx context.Context, caller policy.Caller, roomID string) (*booking.Cart, error) {
    room, err := s.rooms.GetByID(ctx, caller, roomID)
    if err != nil {
        return nil, err
    }
    c, err := s.Get(ctx, caller)
    if err != nil {
        return nil, err
    }
    if err := c.AddRoom(*room); err != nil {
        return nil, err
    }
    if err := s.carts.Save(ctx, caller.UserID, c); err != nil {
        return nil, err
    }
    return c, nil
}

// RemoveRoom drops the entry at index.  Out of range indices leave the cart
// unchanged.
func (s *CartService) RemoveRoom(ctx context.Context, caller policy.Caller, index int) (*booking.Cart, error) {
    c, err := s.Get(ctx, caller)
    if err != nil {
        return nil, err
    }
    before := c.Len()
    c.RemoveRoom(index)
    if c.Len() == before {
        return c, nil
    }
    if err := s.carts.Save(ctx, caller.UserID, c); err != nil {
        return nil, err
    }
    return c, nil
}

// Clear empties the caller's cart.
func (s *CartService) Clear(ctx context.Context, caller policy.Caller) error {
    if caller.UserID == "" {
        return policy.ErrUnauthenticated
    }
    return s.carts.Clear(ctx, caller.UserID)
}
