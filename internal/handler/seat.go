package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/repository"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

// SeatHandler exposes the seat inventory: admin CRUD plus the per-slot
// availability view every authenticated user can query.
type SeatHandler struct {
	Seats  *repository.SeatRepo
	Engine *scheduler.Engine
}

func NewSeatHandler(seats *repository.SeatRepo, eng *scheduler.Engine) *SeatHandler {
	return &SeatHandler{Seats: seats, Engine: eng}
}

type seatReq struct {
	Number   string `json:"seat_number"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

type seatResp struct {
	ID       uint64 `json:"id"`
	Number   string `json:"seat_number"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func toSeatResp(s *model.Seat) seatResp {
	return seatResp{ID: s.ID, Number: s.Number, Location: s.Location, Status: s.Status}
}

func normalizeSeatStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", model.SeatAvailable:
		return model.SeatAvailable, true
	case model.SeatUnavailable:
		return model.SeatUnavailable, true
	}
	return "", false
}

// Create adds a seat to the inventory.  Admin only.
func (h *SeatHandler) Create(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Number) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number required"})
	}
	status, ok := normalizeSeatStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available or unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	seat := &model.Seat{Number: strings.TrimSpace(req.Number), Location: strings.TrimSpace(req.Location), Status: status}
	if err := h.Seats.Create(ctx, seat); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, toSeatResp(seat))
}

// List returns the full seat inventory.
func (h *SeatHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return engineError(c, err)
	}
	out := make([]seatResp, 0, len(seats))
	for i := range seats {
		out = append(out, toSeatResp(&seats[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single seat.
func (h *SeatHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	seat, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResp(seat))
}

// Update rewrites a seat's number, location and status.  Admin only.
// Disabling a seat does not touch existing reservations; it only stops
// new ones.
func (h *SeatHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req seatReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Number) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number required"})
	}
	status, ok := normalizeSeatStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available or unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Seats.Update(ctx, id, strings.TrimSpace(req.Number), strings.TrimSpace(req.Location), status); err != nil {
		return engineError(c, err)
	}
	seat, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResp(seat))
}

// Delete removes a seat without reservation history.  Admin only.
func (h *SeatHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Seats.Delete(ctx, id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Status reports every seat's availability at one slot from the
// caller's point of view: available, unavailable or reserved-by-me.
// Query parameters: ?date=2006-01-02&hour=0..23.
func (h *SeatHandler) Status(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slot, err := model.ParseTimeSlot(c.QueryParam("date"), c.QueryParam("hour"))
	if err != nil {
		return engineError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	statuses, err := h.Engine.SeatStatusForSlot(ctx, sub, slot)
	if err != nil {
		return engineError(c, err)
	}
	type row struct {
		seatResp
		SlotStatus string `json:"slot_status"`
	}
	out := make([]row, 0, len(statuses))
	for i := range statuses {
		out = append(out, row{seatResp: toSeatResp(&statuses[i].Seat), SlotStatus: statuses[i].Status})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  slot.DateString(),
		"hour":  slot.Hour,
		"seats": out,
	})
}

// Available lists only the seats that are free at the slot.  Same
// query parameters as Status; a convenience view for booking forms.
func (h *SeatHandler) Available(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slot, err := model.ParseTimeSlot(c.QueryParam("date"), c.QueryParam("hour"))
	if err != nil {
		return engineError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	statuses, err := h.Engine.SeatStatusForSlot(ctx, sub, slot)
	if err != nil {
		return engineError(c, err)
	}
	out := make([]seatResp, 0, len(statuses))
	for i := range statuses {
		if statuses[i].Status == scheduler.SlotAvailable {
			out = append(out, toSeatResp(&statuses[i].Seat))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  slot.DateString(),
		"hour":  slot.Hour,
		"seats": out,
	})
}
