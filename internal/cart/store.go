// Package cart keeps each user's booking cart between requests.  A cart
// lives until the user clears it or a reservation is created from it.
package cart

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-reservation/internal/booking"
)

// Store loads, saves and clears carts by user id.  Loading a user with no
// saved cart yields an empty cart, not an error.
type Store interface {
    Load(ctx context.Context, userID string) (*booking.Cart, error)
    Save(ctx context.Context, userID string, c *booking.Cart) error
    Clear(ctx context.Context, userID string) error
}

// RedisStore keeps carts as JSON strings under "<prefix>:<userID>" with no
// expiry.
type RedisStore struct {
    rdb    *redis.Client
    prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
    if prefix == "" {
        prefix = "cart"
    }
    return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(userID string) string { return s.prefix + ":" + userID }

func (s *RedisStore) Load(ctx context.Context, userID string) (*booking.Cart, error) {
    raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
    if errors.Is(err, redis.Nil) {
        return &booking.Cart{}, nil
    }
    if err != nil {
        return nil, fmt.Errorf("load cart: %w", err)
    }
    var c booking.Cart
    if err := json.Unmarshal(raw, &c); err != nil {
        return nil, fmt.Errorf("decode cart: %w", err)
    }
    return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, c *booking.Cart) error {
    if c == nil || c.Len() == 0 {
        return s.Clear(ctx, userID)
    }
    raw, err := json.Marshal(c)
    if err != nil {
        return err
    }
    if err := s.rdb.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
        return fmt.Errorf("save cart: %w", err)
    }
    return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
    if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
        return fmt.Errorf("clear cart: %w", err)
    }
    return nil
}

// MemoryStore is the process-local Store used when Redis is unavailable.
type MemoryStore struct {
    mu    sync.Mutex
    carts map[string][]booking.CartItem
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{carts: make(map[string][]booking.CartItem)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (*booking.Cart, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    items := s.carts[userID]
    out := make([]booking.CartItem, len(items))
    copy(out, items)
    return &booking.Cart{Items: out}, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, c *booking.Cart) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if c == nil || c.Len() == 0 {
        delete(s.carts, userID)
        return nil
    }
    items := make([]booking.CartItem, len(c.Items))
    copy(items, c.Items)
    s.carts[userID] = items
    return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.carts, userID)
    return nil
}

// New picks the Redis store when a client is available.
func New(rdb *redis.Client) Store {
    if rdb == nil {
        return NewMemoryStore()
    }
    return NewRedisStore(rdb, "cart")
}
