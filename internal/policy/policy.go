// Package policy is the row-level authorization layer.  Every repository
// call passes the caller and the target row through one of these checks
// before reading or writing.  Reservation updates are checked for ownership
// only; which status changes are legal is decided by package booking.
package policy

import (
    "errors"
    "path"
    "strings"

    "github.com/iliyamo/hotel-reservation/internal/model"
)

// ErrForbidden is returned when the caller may not touch the row.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when no caller identity is present.
var ErrUnauthenticated = errors.New("unauthenticated")

// Caller is the authenticated identity together with its resolved role.
type Caller struct {
    UserID string
    Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

func authenticated(c Caller) error {
    if c.UserID == "" {
        return ErrUnauthenticated
    }
    return nil
}

func adminOnly(c Caller) error {
    if err := authenticated(c); err != nil {
        return err
    }
    if !c.IsAdmin() {
        return ErrForbidden
    }
    return nil
}

func ownerOrAdmin(c Caller, ownerID string) error {
    if err := authenticated(c); err != nil {
        return err
    }
    if c.IsAdmin() || c.UserID == ownerID {
        return nil
    }
    return ErrForbidden
}

// ReadRooms: any authenticated user.
func ReadRooms(c Caller) error { return authenticated(c) }

// WriteRooms covers insert, update and delete of rooms.
func WriteRooms(c Caller) error { return adminOnly(c) }

// ReadRoles: role rows are visible to every authenticated user.
func ReadRoles(c Caller) error { return authenticated(c) }

// WriteRoles: only administrators change roles.
func WriteRoles(c Caller) error { return adminOnly(c) }

// ReadReservation allows the owner or an administrator.
func ReadReservation(c Caller, ownerID string) error { return ownerOrAdmin(c, ownerID) }

// ListAllReservations is the admin-only unfiltered listing.
func ListAllReservations(c Caller) error { return adminOnly(c) }

// InsertReservation requires the new row to be owned by the caller.
// Administrators get no exception here.
func InsertReservation(c Caller, ownerID string) error {
    if err := authenticated(c); err != nil {
        return err
    }
    if c.UserID != ownerID {
        return ErrForbidden
    }
    return nil
}

// UpdateReservation allows the owner or an administrator.
func UpdateReservation(c Caller, ownerID string) error { return ownerOrAdmin(c, ownerID) }

// ReadProfile allows the owner or an administrator.
func ReadProfile(c Caller, profileID string) error { return ownerOrAdmin(c, profileID) }

// UpdateProfile allows only the owner.
func UpdateProfile(c Caller, profileID string) error {
    if err := authenticated(c); err != nil {
        return err
    }
    if c.UserID != profileID {
        return ErrForbidden
    }
    return nil
}

// WriteAvatar allows writes only below a folder named after the caller.
func WriteAvatar(c Caller, objectPath string) error {
    if err := authenticated(c); err != nil {
        return err
    }
    clean := path.Clean("/" + objectPath)
    folder := strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)
    if len(folder) != 2 || folder[0] != c.UserID || folder[1] == "" {
        return ErrForbidden
    }
    return nil
}
