package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the credentials, the profile and the default customer role
// in one transaction and returns the new user.
func (r *UserRepo) Create(ctx context.Context, email, password, name string, cost int) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return model.User{}, err
    }
    u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return model.User{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if _, err := tx.ExecContext(ctx,
        "INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
        u.ID, u.Email, u.PasswordHash); err != nil {
        if isDuplicate(err) {
            return model.User{}, ErrEmailExists
        }
        return model.User{}, fmt.Errorf("insert user: %w", err)
    }
    if _, err := tx.ExecContext(ctx,
        "INSERT INTO profiles (id, name, email) VALUES (?,?,?)",
        u.ID, strings.TrimSpace(name), u.Email); err != nil {
        return model.User{}, fmt.Errorf("insert profile: %w", err)
    }
    if _, err := tx.ExecContext(ctx,
        "INSERT INTO user_roles (user_id, role) VALUES (?,?)",
        u.ID, model.RoleCustomer); err != nil {
        return model.User{}, fmt.Errorf("insert role: %w", err)
    }
    if err := tx.Commit(); err != nil {
        return model.User{}, err
    }
    committed = true
    return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,email,password_hash,created_at,updated_at FROM users WHERE email=? LIMIT 1",
        email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return u, ErrNotFound
    }
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,email,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return u, ErrNotFound
    }
    return u, err
}
