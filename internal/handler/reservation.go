package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/service"
)

// ReservationHandler serves customer and admin reservation endpoints.
type ReservationHandler struct {
    Svc *service.ReservationService
    Log *zap.Logger
    Now func() time.Time
}

func NewReservationHandler(svc *service.ReservationService, log *zap.Logger) *ReservationHandler {
    return &ReservationHandler{Svc: svc, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

type createReservationReq struct {
    stayReq
    Guest model.GuestData `json:"guest"`
}

type reservationResp struct {
    ID                 string          `json:"id"`
    ConfirmationNumber string          `json:"confirmation_number"`
    UserID             string          `json:"user_id"`
    RoomIDs            []string        `json:"room_ids"`
    CheckIn            string          `json:"check_in"`
    CheckOut           string          `json:"check_out"`
    CheckInTime        string          `json:"check_in_time"`
    CheckOutTime       string          `json:"check_out_time"`
    Nights             int             `json:"nights"`
    Guests             int             `json:"guests"`
    TotalPriceCents    int64           `json:"total_price_cents"`
    Status             string          `json:"status"`
    Guest              model.GuestData `json:"guest"`
    Actions            []booking.Event `json:"actions"`
    CreatedAt          time.Time       `json:"created_at"`
    UpdatedAt          time.Time       `json:"updated_at"`
}

// actionsFor lists what caller may do next.  Administrators see every
// transition of the state machine; owners only see cancel, and only while
// it would succeed.
func actionsFor(caller policy.Caller, r *model.Reservation, now time.Time) []booking.Event {
    if caller.IsAdmin() {
        return booking.Actions(r.Status)
    }
    stay := booking.Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
    if r.UserID == caller.UserID && !stay.HasStarted(now) {
        if _, err := booking.Transition(r.Status, booking.EventCancel); err == nil {
            return []booking.Event{booking.EventCancel}
        }
    }
    return []booking.Event{}
}

func toReservationResp(caller policy.Caller, r *model.Reservation, now time.Time) reservationResp {
    return reservationResp{
        ID:                 r.ID,
        ConfirmationNumber: booking.ConfirmationNumber(r.ID),
        UserID:             r.UserID,
        RoomIDs:            r.RoomIDs,
        CheckIn:            r.CheckIn.Format(booking.DateLayout),
        CheckOut:           r.CheckOut.Format(booking.DateLayout),
        CheckInTime:        booking.DefaultCheckInTime,
        CheckOutTime:       booking.DefaultCheckOutTime,
        Nights:             booking.Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}.Nights(),
        Guests:             r.Guests,
        TotalPriceCents:    r.TotalPriceCents,
        Status:             r.Status,
        Guest:              r.Guest,
        Actions:            actionsFor(caller, r, now),
        CreatedAt:          r.CreatedAt,
        UpdatedAt:          r.UpdatedAt,
    }
}

func (h *ReservationHandler) many(caller policy.Caller, list []*model.Reservation) []reservationResp {
    now := h.Now()
    out := make([]reservationResp, 0, len(list))
    for _, r := range list {
        out = append(out, toReservationResp(caller, r, now))
    }
    return out
}

// Create handles POST /v1/reservations.  The rooms come from the caller's
// cart; the body carries dates, guest count and guest contact.
func (h *ReservationHandler) Create(c echo.Context) error {
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    res, err := h.Svc.Create(ctx, caller, service.StayRequest{
        CheckIn: req.CheckIn, CheckOut: req.CheckOut, Guests: req.Guests, Guest: req.Guest,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, toReservationResp(caller, res, h.Now()))
}

// ListMine handles GET /v1/reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    list, err := h.Svc.ListMine(ctx, caller)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": h.many(caller, list), "count": len(list)})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    res, err := h.Svc.Get(ctx, caller, c.Param("id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, toReservationResp(caller, res, h.Now()))
}

// Cancel handles POST /v1/reservations/:id/cancel for the owner.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    return h.transition(c, h.Svc.CancelByCustomer)
}

// ListAll handles GET /v1/admin/reservations?status=.
func (h *ReservationHandler) ListAll(c echo.Context) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    list, err := h.Svc.ListAll(ctx, caller, strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": h.many(caller, list), "count": len(list)})
}

// Confirm handles POST /v1/admin/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error { return h.transition(c, h.Svc.Confirm) }

// AdminCancel handles POST /v1/admin/reservations/:id/cancel.
func (h *ReservationHandler) AdminCancel(c echo.Context) error {
    return h.transition(c, h.Svc.CancelByAdmin)
}

// Complete handles POST /v1/admin/reservations/:id/complete.
func (h *ReservationHandler) Complete(c echo.Context) error { return h.transition(c, h.Svc.Complete) }

type transitionFunc func(ctx context.Context, caller policy.Caller, id string) (*model.Reservation, error)

func (h *ReservationHandler) transition(c echo.Context, fn transitionFunc) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    res, err := fn(ctx, caller, c.Param("id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, toReservationResp(caller, res, h.Now()))
}
