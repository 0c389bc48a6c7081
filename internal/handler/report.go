package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

// ReportHandler serves administrative reports.
type ReportHandler struct {
	Engine *scheduler.Engine
}

func NewReportHandler(eng *scheduler.Engine) *ReportHandler {
	return &ReportHandler{Engine: eng}
}

// SeatUsage returns per-seat reservation statistics over the full
// history, busiest seats first.  Admin only; repeated runs over the
// same data produce identical output.
func (h *ReportHandler) SeatUsage(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Engine.SeatUsage(ctx, sub)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": rows})
}
