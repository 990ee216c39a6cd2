package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/radical-ticket/internal/reservation"
)

// maxPopulateBody caps the plain-text body read by PopulateTickets.
const maxPopulateBody = 32

// TicketHandler exposes the reservation coordinator over HTTP.
type TicketHandler struct {
	Coord       *reservation.Coordinator
	MaxPopulate uint32 // upper bound for /populate_tickets; zero means no bound
}

// NewTicketHandler constructs a TicketHandler.  coord must be non-nil.
func NewTicketHandler(coord *reservation.Coordinator, maxPopulate uint32) *TicketHandler {
	if coord == nil {
		panic("nil coordinator passed to NewTicketHandler")
	}
	return &TicketHandler{Coord: coord, MaxPopulate: maxPopulate}
}

// reserveRequest is the body accepted by /reserve, /fraud_gate and
// /rw_set.  TicketID is a pointer so that a missing field is rejected
// rather than read as ticket 0.
type reserveRequest struct {
	TicketID *uint32 `json:"ticket_id"`
	Email    string  `json:"res_email"`
	Name     string  `json:"res_name"`
	Card     string  `json:"res_card"`
	Seed     *uint64 `json:"seed,omitempty"`
}

func bindReserve(c echo.Context) (reservation.Request, error) {
	var body reserveRequest
	if err := c.Bind(&body); err != nil {
		return reservation.Request{}, errors.New("invalid request body")
	}
	if body.TicketID == nil {
		return reservation.Request{}, errors.New("ticket_id is required")
	}
	return reservation.Request{
		TicketID: *body.TicketID,
		Email:    body.Email,
		Name:     body.Name,
		Card:     body.Card,
		Seed:     body.Seed,
	}, nil
}

// PopulateTickets handles POST /populate_tickets.  The body is the
// decimal ticket count as plain text.  Every ticket 0..n-1 is reset to
// untaken at version 0.
func (h *TicketHandler) PopulateTickets(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPopulateBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be a non-negative ticket count"})
	}
	if h.MaxPopulate > 0 && n > uint64(h.MaxPopulate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket count exceeds limit", "max": h.MaxPopulate})
	}
	if err := h.Coord.Populate(c.Request().Context(), uint32(n)); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"populated": n})
}

// ClearCache handles POST /clear_cache.  It deletes every populated
// ticket and reports how many were removed.
func (h *TicketHandler) ClearCache(c echo.Context) error {
	n, err := h.Coord.Clear(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cleared": n})
}

// GetTicket handles GET /get_ticket/:id.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, ok, err := h.Coord.Fetch(c.Request().Context(), uint32(id))
	if err != nil {
		return storeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	return c.JSON(http.StatusOK, t)
}

// ListAvailable handles GET /.  It returns every untaken ticket in id
// order.
func (h *TicketHandler) ListAvailable(c echo.Context) error {
	items, err := h.Coord.Available(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Reserve handles POST /reserve.
func (h *TicketHandler) Reserve(c echo.Context) error {
	req, err := bindReserve(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	err = h.Coord.Reserve(c.Request().Context(), req)
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{"reserved": true})
	}
	body := echo.Map{"reserved": false, "reason": reservation.Reason(err)}
	if reservation.Retryable(err) {
		body["retryable"] = true
	}
	return c.JSON(statusFor(err), body)
}

// FraudGate handles POST /fraud_gate.  It runs the screening step alone
// without touching the store.
func (h *TicketHandler) FraudGate(c echo.Context) error {
	req, err := bindReserve(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	v := h.Coord.Evaluate(req)
	return c.JSON(http.StatusOK, echo.Map{"accepted": v.Accepted, "reason": v.Reason})
}

// RWSet handles POST /rw_set.  Schedulers call it to learn which keys a
// reservation will touch before admitting it.
func (h *TicketHandler) RWSet(c echo.Context) error {
	req, err := bindReserve(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"keys": h.Coord.ReadWriteSet(req).Keys()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrAlreadyTaken), errors.Is(err, reservation.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrInvalidEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reservation.ErrFraudRejected):
		return http.StatusForbidden
	case errors.Is(err, reservation.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func storeError(c echo.Context, err error) error {
	if errors.Is(err, reservation.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
