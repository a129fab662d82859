// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for the room catalog.  Every method
// runs the caller through the policy layer before touching the table.
package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// RoomRepo encapsulates all database queries related to rooms.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
    return &RoomRepo{db: db}
}

// RoomFilter narrows List.  Empty fields do not filter.
type RoomFilter struct {
    Status string
    Type   string
}

const roomColumns = `id, name, type, capacity, price_cents, status, features, description, image_url, created_by, created_at, updated_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
    var (
        rm       model.Room
        features []byte
        desc     sql.NullString
        img      sql.NullString
    )
    if err := s.Scan(&rm.ID, &rm.Name, &rm.Type, &rm.Capacity, &rm.PriceCents, &rm.Status,
        &features, &desc, &img, &rm.CreatedBy, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
        return nil, err
    }
    rm.Features = []string{}
    if len(features) > 0 {
        if err := json.Unmarshal(features, &rm.Features); err != nil {
            return nil, fmt.Errorf("decode features of room %s: %w", rm.ID, err)
        }
    }
    if desc.Valid {
        d := desc.String
        rm.Description = &d
    }
    if img.Valid {
        i := img.String
        rm.ImageURL = &i
    }
    return &rm, nil
}

func encodeFeatures(features []string) ([]byte, error) {
    if features == nil {
        features = []string{}
    }
    return json.Marshal(features)
}

// List returns rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context, caller policy.Caller, f RoomFilter) ([]*model.Room, error) {
    if err := policy.ReadRooms(caller); err != nil {
        return nil, err
    }
    q := `SELECT ` + roomColumns + ` FROM rooms`
    var where []string
    var args []any
    if f.Status != "" {
        where = append(where, "status = ?")
        args = append(args, f.Status)
    }
    if f.Type != "" {
        where = append(where, "type = ?")
        args = append(args, f.Type)
    }
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY name, id"
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]*model.Room, 0)
    for rows.Next() {
        rm, err := scanRoom(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, rm)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID fetches a room.  It returns ErrNotFound if no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, caller policy.Caller, id string) (*model.Room, error) {
    if err := policy.ReadRooms(caller); err != nil {
        return nil, err
    }
    row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
    rm, err := scanRoom(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return rm, err
}

// GetMany loads the distinct rooms referenced by ids.  Missing ids are
// absent from the returned map.
func (r *RoomRepo) GetMany(ctx context.Context, caller policy.Caller, ids []string) (map[string]*model.Room, error) {
    if err := policy.ReadRooms(caller); err != nil {
        return nil, err
    }
    out := make(map[string]*model.Room, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    seen := make(map[string]struct{}, len(ids))
    args := make([]any, 0, len(ids))
    placeholders := make([]string, 0, len(ids))
    for _, id := range ids {
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        args = append(args, id)
        placeholders = append(placeholders, "?")
    }
    q := `SELECT ` + roomColumns + ` FROM rooms WHERE id IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        rm, err := scanRoom(rows)
        if err != nil {
            return nil, err
        }
        out[rm.ID] = rm
    }
    return out, rows.Err()
}

// Create inserts a new room.  The ID and CreatedBy fields are assigned here
// and the timestamps are read back from the database.
func (r *RoomRepo) Create(ctx context.Context, caller policy.Caller, rm *model.Room) error {
    if err := policy.WriteRooms(caller); err != nil {
        return err
    }
    features, err := encodeFeatures(rm.Features)
    if err != nil {
        return err
    }
    rm.ID = uuid.NewString()
    rm.CreatedBy = caller.UserID
    const q = `INSERT INTO rooms (id, name, type, capacity, price_cents, status, features, description, image_url, created_by)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    if _, err := r.db.ExecContext(ctx, q, rm.ID, rm.Name, rm.Type, rm.Capacity, rm.PriceCents, rm.Status,
        features, rm.Description, rm.ImageURL, rm.CreatedBy); err != nil {
        if isDuplicate(err) {
            return ErrConflict
        }
        return err
    }
    return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM rooms WHERE id = ?`, rm.ID).
        Scan(&rm.CreatedAt, &rm.UpdatedAt)
}

// Update overwrites every editable column of the room.
func (r *RoomRepo) Update(ctx context.Context, caller policy.Caller, rm *model.Room) error {
    if err := policy.WriteRooms(caller); err != nil {
        return err
    }
    features, err := encodeFeatures(rm.Features)
    if err != nil {
        return err
    }
    const q = `UPDATE rooms
               SET name = ?, type = ?, capacity = ?, price_cents = ?, status = ?, features = ?,
                   description = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Type, rm.Capacity, rm.PriceCents, rm.Status,
        features, rm.Description, rm.ImageURL, rm.ID)
    if err != nil {
        if isDuplicate(err) {
            return ErrConflict
        }
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Delete removes a room together with every reservation that references
// it.  It returns the number of reservations removed.  The deletion occurs
// within a transaction to maintain integrity.
func (r *RoomRepo) Delete(ctx context.Context, caller policy.Caller, id string) (n int64, err error) {
    if err := policy.WriteRooms(caller); err != nil {
        return 0, err
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var exists int
    if err = tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ? FOR UPDATE`, id).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            err = ErrNotFound
        }
        return 0, err
    }
    res, err := tx.ExecContext(ctx,
        `DELETE FROM reservations WHERE JSON_CONTAINS(room_ids, JSON_QUOTE(?))`, id)
    if err != nil {
        return 0, err
    }
    n, _ = res.RowsAffected()
    if _, err = tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
        return 0, err
    }
    return n, nil
}
