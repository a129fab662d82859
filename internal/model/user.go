package model

import "time"

// Role names stored in user_roles.role.
const (
    RoleCustomer = "customer"
    RoleAdmin    = "admin"
)

// User holds sign-in credentials as stored in the `users` table.  Profile
// attributes live in Profile; the authoritative role lives in UserRole.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// UserRole maps a user to exactly one role.
type UserRole struct {
    UserID string `json:"user_id"` // user_roles.user_id
    Role   string `json:"role"`    // user_roles.role
}

// Profile is the public-facing account record.  Email is copied from the
// credentials at sign-up and never changes afterwards.
type Profile struct {
    ID        string    `json:"id"`                   // profiles.id (= users.id)
    Name      string    `json:"name"`                 // profiles.name
    Email     string    `json:"email"`                // profiles.email
    Phone     *string   `json:"phone,omitempty"`      // profiles.phone (nullable)
    AvatarURL *string   `json:"avatar_url,omitempty"` // profiles.avatar_url (nullable)
    CreatedAt time.Time `json:"created_at"`           // profiles.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is persisted.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    string     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
