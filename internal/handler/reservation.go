package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/queue"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/repository"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
	queue_publisher "github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/service"
)

// ReservationHandler exposes the booking, assignment, cancellation and
// modification endpoints.  All business rules live in the scheduler
// engine; the handler only binds requests, resolves the caller and
// translates errors.
type ReservationHandler struct {
	Engine *scheduler.Engine
	Seats  *repository.SeatRepo
}

func NewReservationHandler(eng *scheduler.Engine, seats *repository.SeatRepo) *ReservationHandler {
	return &ReservationHandler{Engine: eng, Seats: seats}
}

// ----- DTOs -----

type bookReq struct {
	SeatID uint64 `json:"seat_id"`
	Date   string `json:"date"`
	Hour   *int   `json:"hour"`
}

type assignReq struct {
	UserID uint64 `json:"user_id"`
	SeatID uint64 `json:"seat_id"`
	Date   string `json:"date"`
	Hour   *int   `json:"hour"`
}

type modifyReq struct {
	SeatID uint64 `json:"seat_id"`
	Date   string `json:"date"`
	Hour   *int   `json:"hour"`
}

func bindSlot(date string, hour *int) (model.TimeSlot, error) {
	if hour == nil {
		return model.TimeSlot{}, model.ErrBadTimeSlot
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return model.TimeSlot{}, model.ErrBadTimeSlot
	}
	return model.NewTimeSlot(d, *hour)
}

// publish emits a reservation event to the broker.  Best effort: the
// reservation is already committed, so a broker outage only costs the
// audit line.
func (h *ReservationHandler) publish(action string, r *model.Reservation) {
	ev := queue.ReservationEvent{
		Action:        action,
		ReservationID: r.ID,
		UserID:        r.UserID,
		SeatID:        r.SeatID,
		Date:          r.Slot.DateString(),
		Hour:          r.Slot.Hour,
		Status:        string(r.Status),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		if seat, err := h.Seats.GetByID(ctx, r.SeatID); err == nil {
			ev.SeatNumber = seat.Number
		}
		_ = queue_publisher.PublishReservationEvent(ctx, ev)
	}()
}

// Book creates an active reservation for the calling intern.
func (h *ReservationHandler) Book(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id, date and hour required"})
	}
	slot, err := bindSlot(req.Date, req.Hour)
	if err != nil {
		return engineError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	r, err := h.Engine.Book(ctx, sub, req.SeatID, slot)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(queue.ActionBooked, r)
	return c.JSON(http.StatusCreated, toReservationResp(r))
}

// Assign creates an assigned reservation for an intern on behalf of an
// administrator.
func (h *ReservationHandler) Assign(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id, seat_id, date and hour required"})
	}
	slot, err := bindSlot(req.Date, req.Hour)
	if err != nil {
		return engineError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	r, err := h.Engine.Assign(ctx, sub, req.UserID, req.SeatID, slot)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(queue.ActionAssigned, r)
	return c.JSON(http.StatusCreated, toReservationResp(r))
}

// Cancel transitions the caller's reservation to cancelled.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	r, err := h.Engine.Cancel(ctx, sub, id)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(queue.ActionCancelled, r)
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// Modify moves the caller's reservation to a new seat and slot.
func (h *ReservationHandler) Modify(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req modifyReq
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id, date and hour required"})
	}
	slot, err := bindSlot(req.Date, req.Hour)
	if err != nil {
		return engineError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	r, err := h.Engine.Modify(ctx, sub, id, req.SeatID, slot)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(queue.ActionModified, r)
	return c.JSON(http.StatusOK, toReservationResp(r))
}

// ListMine returns the caller's reservations, newest slot first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rs, err := h.Engine.ListForSubject(ctx, sub)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationList(rs))
}

// ListAll returns every reservation.  Admin only.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rs, err := h.Engine.ListAll(ctx, sub)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationList(rs))
}
