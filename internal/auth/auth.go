// Package auth is the identity provider.  A session is an HS256 access
// token plus an opaque refresh token whose SHA‑256 hash is kept in the
// refresh_tokens table.  Other components can observe sign-in, refresh and
// sign-out through OnSessionChange.
package auth

import (
    "context"
    "errors"
    "strings"
    "sync"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/validation"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/repository"
    "github.com/iliyamo/hotel-reservation/internal/utils"
)

// Error is an authentication failure.  Message is safe to show to clients.
type Error struct {
    Message string
}

func (e *Error) Error() string { return e.Message }

var (
    ErrInvalidCredentials = &Error{Message: "invalid email or password"}
    ErrInvalidSession     = &Error{Message: "invalid or expired session"}
)

// Event names a session change.
type Event string

const (
    EventSignedIn       Event = "SIGNED_IN"
    EventTokenRefreshed Event = "TOKEN_REFRESHED"
    EventSignedOut      Event = "SIGNED_OUT"
)

// User is the identity carried by a session.
type User struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

// Session is what clients hold after signing in.
type Session struct {
    AccessToken      string    `json:"access_token"`
    AccessExpiresAt  time.Time `json:"access_expires_at"`
    RefreshToken     string    `json:"refresh_token,omitempty"`
    RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
    User             User      `json:"user"`
}

// UserStore is the credential storage used by the provider.
type UserStore interface {
    Create(ctx context.Context, email, password, name string, cost int) (model.User, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id string) (model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID string) error
}

// RoleReader resolves a user's role.
type RoleReader interface {
    GetRole(ctx context.Context, userID string) string
}

// Options configures token lifetimes and hashing.
type Options struct {
    JWTSecret      string
    AccessTTLMin   int
    RefreshTTLDays int
    BcryptCost     int
}

// Listener receives session changes.  s is nil for EventSignedOut.
type Listener func(ev Event, userID string, s *Session)

type Provider struct {
    users  UserStore
    tokens TokenStore
    roles  RoleReader
    opts   Options
    log    *zap.Logger

    mu        sync.RWMutex
    listeners map[int]Listener
    nextID    int
}

func NewProvider(users UserStore, tokens TokenStore, roles RoleReader, opts Options, log *zap.Logger) *Provider {
    if log == nil {
        log = zap.NewNop()
    }
    return &Provider{
        users:     users,
        tokens:    tokens,
        roles:     roles,
        opts:      opts,
        log:       log,
        listeners: make(map[int]Listener),
    }
}

var validate = validation.New()

type signUpRules struct {
    Email    string `validate:"required,email,max=255"`
    Password string `validate:"required,min=6,max=72"`
    Name     string `validate:"required,min=2,max=100"`
}

var signUpFields = map[string]string{"Email": "email", "Password": "password", "Name": "name"}

// SignUp creates the account, its profile and its customer role, then
// signs the user in.  An already registered email yields
// repository.ErrEmailExists.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    name = strings.TrimSpace(name)
    if err := validation.FromValidator(validate.Struct(signUpRules{Email: email, Password: password, Name: name}), signUpFields); err != nil {
        return nil, err
    }
    u, err := p.users.Create(ctx, email, password, name, p.opts.BcryptCost)
    if err != nil {
        return nil, err
    }
    s, err := p.issue(ctx, u)
    if err != nil {
        return nil, err
    }
    p.emit(EventSignedIn, u.ID, s)
    return s, nil
}

// SignIn verifies the password and opens a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
    if strings.TrimSpace(email) == "" || password == "" {
        return nil, validation.Field("email", "email and password are required")
    }
    u, err := p.users.GetByEmail(ctx, email)
    if errors.Is(err, repository.ErrNotFound) {
        return nil, ErrInvalidCredentials
    }
    if err != nil {
        return nil, err
    }
    if !utils.VerifyPassword(u.PasswordHash, password) {
        return nil, ErrInvalidCredentials
    }
    s, err := p.issue(ctx, u)
    if err != nil {
        return nil, err
    }
    p.emit(EventSignedIn, u.ID, s)
    return s, nil
}

// CurrentSession decodes an access token.  It returns nil for a missing,
// expired or forged token.  The role is re-read from the role store.
func (p *Provider) CurrentSession(ctx context.Context, accessToken string) *Session {
    if accessToken == "" {
        return nil
    }
    c, err := utils.ParseAccessToken(p.opts.JWTSecret, accessToken)
    if err != nil {
        return nil
    }
    return &Session{
        AccessToken:     accessToken,
        AccessExpiresAt: c.Exp,
        User:            User{ID: c.UserID, Email: c.Email, Role: p.roles.GetRole(ctx, c.UserID)},
    }
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
    if refreshToken == "" {
        return nil, ErrInvalidSession
    }
    hash := utils.HashRefreshRaw(refreshToken)
    uid, err := p.tokens.ValidateRefresh(ctx, hash)
    if errors.Is(err, repository.ErrNotFound) {
        return nil, ErrInvalidSession
    }
    if err != nil {
        return nil, err
    }
    u, err := p.users.GetByID(ctx, uid)
    if errors.Is(err, repository.ErrNotFound) {
        return nil, ErrInvalidSession
    }
    if err != nil {
        return nil, err
    }
    if err := p.tokens.RevokeByHash(ctx, hash); err != nil {
        return nil, err
    }
    s, err := p.issue(ctx, u)
    if err != nil {
        return nil, err
    }
    p.emit(EventTokenRefreshed, u.ID, s)
    return s, nil
}

// SignOut revokes refreshToken, or every refresh token of userID when all
// is set.  Access tokens stay valid until they expire.
func (p *Provider) SignOut(ctx context.Context, userID, refreshToken string, all bool) error {
    if all {
        if userID == "" {
            return ErrInvalidSession
        }
        if err := p.tokens.RevokeAllForUser(ctx, userID); err != nil {
            return err
        }
        p.emit(EventSignedOut, userID, nil)
        return nil
    }
    if refreshToken == "" {
        return validation.Field("refresh_token", "is required")
    }
    hash := utils.HashRefreshRaw(refreshToken)
    if userID == "" {
        uid, err := p.tokens.ValidateRefresh(ctx, hash)
        if err == nil {
            userID = uid
        }
    }
    if err := p.tokens.RevokeByHash(ctx, hash); err != nil {
        return err
    }
    p.emit(EventSignedOut, userID, nil)
    return nil
}

// OnSessionChange registers fn and returns a function that removes it.
func (p *Provider) OnSessionChange(fn Listener) (unsubscribe func()) {
    p.mu.Lock()
    id := p.nextID
    p.nextID++
    p.listeners[id] = fn
    p.mu.Unlock()

    var once sync.Once
    return func() {
        once.Do(func() {
            p.mu.Lock()
            delete(p.listeners, id)
            p.mu.Unlock()
        })
    }
}

func (p *Provider) emit(ev Event, userID string, s *Session) {
    p.mu.RLock()
    fns := make([]Listener, 0, len(p.listeners))
    for _, fn := range p.listeners {
        fns = append(fns, fn)
    }
    p.mu.RUnlock()
    for _, fn := range fns {
        fn(ev, userID, s)
    }
}

func (p *Provider) issue(ctx context.Context, u model.User) (*Session, error) {
    role := p.roles.GetRole(ctx, u.ID)
    at, err := utils.NewAccessToken(p.opts.JWTSecret, u.ID, u.Email, role, p.opts.AccessTTLMin)
    if err != nil {
        return nil, err
    }
    rt, err := utils.NewRefreshToken(p.opts.RefreshTTLDays)
    if err != nil {
        return nil, err
    }
    if err := p.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
        return nil, err
    }
    p.log.Debug("session issued", zap.String("user_id", u.ID), zap.String("role", role))
    return &Session{
        AccessToken:      at.Token,
        AccessExpiresAt:  at.Exp,
        RefreshToken:     rt.Raw,
        RefreshExpiresAt: rt.Exp,
        User:             User{ID: u.ID, Email: u.Email, Role: role},
    }, nil
}
