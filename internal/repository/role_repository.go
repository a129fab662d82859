package repository

import (
    "context"
    "database/sql"
    "strings"

    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// RoleRepo reads and writes the user_roles table.
type RoleRepo struct {
    db  *sql.DB
    log *zap.Logger
}

func NewRoleRepo(db *sql.DB, log *zap.Logger) *RoleRepo {
    if log == nil {
        log = zap.NewNop()
    }
    return &RoleRepo{db: db, log: log}
}

// GetRole returns the role of userID.  Any failure, including a missing
// row, yields customer: role resolution fails open to the least privileged
// role instead of denying the request.
func (r *RoleRepo) GetRole(ctx context.Context, userID string) string {
    var role string
    err := r.db.QueryRowContext(ctx,
        "SELECT role FROM user_roles WHERE user_id=? LIMIT 1", userID).Scan(&role)
    if err != nil {
        if err != sql.ErrNoRows {
            r.log.Warn("role lookup failed, defaulting to customer", zap.String("user_id", userID), zap.Error(err))
        }
        return model.RoleCustomer
    }
    if role != model.RoleAdmin && role != model.RoleCustomer {
        return model.RoleCustomer
    }
    return role
}

// List returns every role row ordered by user id.
func (r *RoleRepo) List(ctx context.Context, caller policy.Caller) ([]model.UserRole, error) {
    if err := policy.ReadRoles(caller); err != nil {
        return nil, err
    }
    rows, err := r.db.QueryContext(ctx, "SELECT user_id, role FROM user_roles ORDER BY user_id")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.UserRole, 0)
    for rows.Next() {
        var ur model.UserRole
        if err := rows.Scan(&ur.UserID, &ur.Role); err != nil {
            return nil, err
        }
        out = append(out, ur)
    }
    return out, rows.Err()
}

// Set changes the role of userID.  It returns ErrNotFound when the user
// has no role row.
func (r *RoleRepo) Set(ctx context.Context, caller policy.Caller, userID, role string) error {
    if err := policy.WriteRoles(caller); err != nil {
        return err
    }
    role = strings.ToLower(strings.TrimSpace(role))
    res, err := r.db.ExecContext(ctx, "UPDATE user_roles SET role=? WHERE user_id=?", role, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        var exists int
        err := r.db.QueryRowContext(ctx, "SELECT 1 FROM user_roles WHERE user_id=?", userID).Scan(&exists)
        if err == sql.ErrNoRows {
            return ErrNotFound
        }
        if err != nil {
            return err
        }
    }
    return nil
}
