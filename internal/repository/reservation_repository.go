package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// ReservationRepo provides CRUD operations for reservations.  The ordered
// room list and the guest contact block are stored as JSON columns.
// check_in and check_out are DATE columns interpreted as UTC calendar days.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, room_ids, check_in, check_out, guests, total_price_cents, status, guest_data, created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
    var (
        res      model.Reservation
        roomIDs  []byte
        guestRaw []byte
    )
    if err := s.Scan(&res.ID, &res.UserID, &roomIDs, &res.CheckIn, &res.CheckOut, &res.Guests,
        &res.TotalPriceCents, &res.Status, &guestRaw, &res.CreatedAt, &res.UpdatedAt); err != nil {
        return nil, err
    }
    if err := json.Unmarshal(roomIDs, &res.RoomIDs); err != nil {
        return nil, fmt.Errorf("decode room_ids of reservation %s: %w", res.ID, err)
    }
    if len(guestRaw) > 0 {
        if err := json.Unmarshal(guestRaw, &res.Guest); err != nil {
            return nil, fmt.Errorf("decode guest_data of reservation %s: %w", res.ID, err)
        }
    }
    return &res, nil
}

// Create inserts a reservation owned by the caller.  ID is assigned here
// when empty; the timestamps are read back from the database.
func (r *ReservationRepo) Create(ctx context.Context, caller policy.Caller, res *model.Reservation) error {
    if err := policy.InsertReservation(caller, res.UserID); err != nil {
        return err
    }
    if res.ID == "" {
        res.ID = uuid.NewString()
    }
    roomIDs, err := json.Marshal(res.RoomIDs)
    if err != nil {
        return err
    }
    guest, err := json.Marshal(res.Guest)
    if err != nil {
        return err
    }
    const q = `INSERT INTO reservations (id, user_id, room_ids, check_in, check_out, guests, total_price_cents, status, guest_data)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    if _, err := r.db.ExecContext(ctx, q, res.ID, res.UserID, roomIDs,
        res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"),
        res.Guests, res.TotalPriceCents, res.Status, guest); err != nil {
        return fmt.Errorf("insert reservation: %w", err)
    }
    return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID).
        Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID returns the reservation if the caller may read it.
func (r *ReservationRepo) GetByID(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error) {
    if caller.UserID == "" {
        return nil, policy.ErrUnauthenticated
    }
    row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
    res, err := scanReservation(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := policy.ReadReservation(caller, res.UserID); err != nil {
        return nil, err
    }
    return res, nil
}

// ListByUser returns the caller's own reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, caller policy.Caller) ([]*model.Reservation, error) {
    if err := policy.ReadReservation(caller, caller.UserID); err != nil {
        return nil, err
    }
    return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id`, caller.UserID)
}

// ListAll returns every reservation, optionally filtered by status.
func (r *ReservationRepo) ListAll(ctx context.Context, caller policy.Caller, status string) ([]*model.Reservation, error) {
    if err := policy.ListAllReservations(caller); err != nil {
        return nil, err
    }
    if status != "" {
        return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE status = ? ORDER BY created_at DESC, id`, status)
    }
    return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC, id`)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]*model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]*model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// UpdateStatus writes a new status on a reservation owned by ownerID.  The
// caller is checked against the owner; whether the status change itself is
// legal has already been decided by the caller of this method.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, caller policy.Caller, ownerID, id, status string) error {
    if err := policy.UpdateReservation(caller, ownerID); err != nil {
        return err
    }
    res, err := r.db.ExecContext(ctx,
        `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
    if err != nil {
        return fmt.Errorf("update reservation status: %w", err)
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}
