package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel matching for engine failures
	"net/http"
	"strconv" // strconv converts strings to numeric types
	"time"

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/model"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/repository"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

// dbTimeout bounds every database-backed request.
const dbTimeout = 5 * time.Second

// currentSubject reconstructs the authenticated party from the values
// the JWT middleware stored in the context.  JWT numeric claims decode
// as float64, so several representations are accepted.
func currentSubject(c echo.Context) (scheduler.Subject, error) {
	var sub scheduler.Subject
	switch t := c.Get("user_id").(type) {
	case uint64:
		sub.ID = t
	case int:
		sub.ID = uint64(t)
	case int64:
		sub.ID = uint64(t)
	case float64:
		sub.ID = uint64(t)
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return scheduler.Subject{}, errors.New("invalid user_id in context")
		}
		sub.ID = n
	default:
		return scheduler.Subject{}, errors.New("missing user_id in context")
	}
	role, _ := c.Get("role").(string)
	if role == "" {
		return scheduler.Subject{}, errors.New("missing role in context")
	}
	sub.Role = role
	return sub, nil
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// engineError translates scheduler and repository sentinels into HTTP
// responses.  Anything unrecognized is a 500 so infrastructure faults
// never leak driver details to clients.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrBadTimeSlot):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or hour"})
	case errors.Is(err, scheduler.ErrInvalidTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation time not allowed"})
	case errors.Is(err, scheduler.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, scheduler.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, scheduler.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, scheduler.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, scheduler.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation conflict"})
	case errors.Is(err, repository.ErrSeatNumberExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat number already exists"})
	case errors.Is(err, scheduler.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service temporarily unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// reservationResp is the wire shape of a reservation.
type reservationResp struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	SeatID    uint64    `json:"seat_id"`
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:        r.ID,
		UserID:    r.UserID,
		SeatID:    r.SeatID,
		Date:      r.Slot.DateString(),
		Hour:      r.Slot.Hour,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toReservationList(rs []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(rs))
	for i := range rs {
		out = append(out, toReservationResp(&rs[i]))
	}
	return out
}
