package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// ProfileRepo reads and updates the profiles table.  Email is copied from
// the credentials at sign-up and never changed here.
type ProfileRepo struct {
    db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Get returns the profile with the given id.
func (r *ProfileRepo) Get(ctx context.Context, caller policy.Caller, id string) (*model.Profile, error) {
    if err := policy.ReadProfile(caller, id); err != nil {
        return nil, err
    }
    var (
        p      model.Profile
        phone  sql.NullString
        avatar sql.NullString
    )
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, email, phone, avatar_url, created_at FROM profiles WHERE id = ?`, id).
        Scan(&p.ID, &p.Name, &p.Email, &phone, &avatar, &p.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if phone.Valid {
        p.Phone = &phone.String
    }
    if avatar.Valid {
        p.AvatarURL = &avatar.String
    }
    return &p, nil
}

// Update sets name and phone.  A nil phone clears the column.
func (r *ProfileRepo) Update(ctx context.Context, caller policy.Caller, id, name string, phone *string) error {
    if err := policy.UpdateProfile(caller, id); err != nil {
        return err
    }
    return r.exec(ctx, id, `UPDATE profiles SET name = ?, phone = ? WHERE id = ?`, name, phone, id)
}

// SetAvatar stores the public avatar URL, or clears it when url is nil.
func (r *ProfileRepo) SetAvatar(ctx context.Context, caller policy.Caller, id string, url *string) error {
    if err := policy.UpdateProfile(caller, id); err != nil {
        return err
    }
    return r.exec(ctx, id, `UPDATE profiles SET avatar_url = ? WHERE id = ?`, url, id)
}

func (r *ProfileRepo) exec(ctx context.Context, id, q string, args ...any) error {
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n > 0 {
        return nil
    }
    // MySQL reports zero affected rows when the values did not change.
    var one int
    err = r.db.QueryRowContext(ctx, `SELECT 1 FROM profiles WHERE id = ?`, id).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return err
}
