package booking

// Quote is the computed price of a cart over a stay.
type Quote struct {
    Nights           int   `json:"nights"`
    NightlyRateCents int64 `json:"nightly_rate_cents"`
    TotalCents       int64 `json:"total_cents"`
    Capacity         int   `json:"capacity"`
    Guests           int   `json:"guests"`
}

// Total is nights × nightly rate.  No taxes, discounts or proration.
func Total(nights int, nightlyRateCents int64) int64 {
    return int64(nights) * nightlyRateCents
}

// NewQuote validates the stay against the cart and prices it.  Checks run
// in order: non-empty cart, date range, guest capacity.
func NewQuote(cart *Cart, stay Stay) (Quote, error) {
    if cart == nil || cart.Len() == 0 {
        return Quote{}, ErrEmptyCart
    }
    if err := stay.ValidateDates(); err != nil {
        return Quote{}, err
    }
    capacity := cart.TotalCapacity()
    if err := stay.ValidateCapacity(capacity); err != nil {
        return Quote{}, err
    }
    nights := stay.Nights()
    rate := cart.NightlyRate()
    return Quote{
        Nights:           nights,
        NightlyRateCents: rate,
        TotalCents:       Total(nights, rate),
        Capacity:         capacity,
        Guests:           stay.Guests,
    }, nil
}
