package booking

import (
    "math"
    "strings"
    "time"
)

// DateLayout is the wire and storage format of check-in/check-out dates.
const DateLayout = "2006-01-02"

// Display times shown next to the dates.  They carry no business meaning.
const (
    DefaultCheckInTime  = "15:00"
    DefaultCheckOutTime = "12:00"
)

// Stay is the requested date range and party size.
type Stay struct {
    CheckIn  time.Time
    CheckOut time.Time
    Guests   int
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(field, s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return time.Time{}, &ValidationError{Field: field, Message: "is required"}
    }
    t, err := time.ParseInLocation(DateLayout, s, time.UTC)
    if err != nil {
        return time.Time{}, &ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
    }
    return t, nil
}

// ValidateDates enforces check-out strictly after check-in.
func (s Stay) ValidateDates() error {
    if !s.CheckOut.After(s.CheckIn) {
        return ErrInvalidDateRange
    }
    return nil
}

// Nights returns the number of nights, rounding partial days up.  For a
// valid stay the result is at least 1.
func (s Stay) Nights() int {
    d := s.CheckOut.Sub(s.CheckIn)
    if d <= 0 {
        return 0
    }
    return int(math.Ceil(d.Hours() / 24))
}

// ValidateCapacity checks the guest count against the capacity of the
// selected rooms.
func (s Stay) ValidateCapacity(capacity int) error {
    if s.Guests < 1 {
        return &ValidationError{Field: "guests", Message: "must be at least 1"}
    }
    if s.Guests > capacity {
        return &CapacityExceededError{Requested: s.Guests, Max: capacity}
    }
    return nil
}

// ValidateNotPast rejects a check-in earlier than the calendar day of now.
// It is applied while the stay is being chosen, not when the reservation
// is created.
func (s Stay) ValidateNotPast(now time.Time) error {
    y, m, d := now.UTC().Date()
    today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
    if s.CheckIn.Before(today) {
        return ErrCheckInPast
    }
    return nil
}

// HasStarted reports whether the stay begins at or before now.
func (s Stay) HasStarted(now time.Time) bool {
    return !s.CheckIn.After(now)
}
