package router

import (
	"github.com/labstack/echo/v4"

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/handler"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/middleware"
)

// RegisterReservations registers the reservation endpoints under /v1.
// Every route requires a valid JWT; role checks beyond that are split
// between the middleware (whole-route gating) and the engine (ownership
// rules that need the reservation loaded first).
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	intern := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("INTERN"),
	)
	// Interns book for themselves and manage their own reservations.
	intern.POST("/reservations", h.Book)
	intern.DELETE("/reservations/:id", h.Cancel)
	intern.PUT("/reservations/:id", h.Modify)
	intern.GET("/my-reservations", h.ListMine)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// Admins assign seats to interns and see the full ledger.
	admin.POST("/reservations/assign", h.Assign)
	admin.GET("/reservations", h.ListAll)
}

// RegisterSeats registers the seat inventory endpoints.  Listing and
// per-slot status are open to any authenticated user; mutation is
// admin only.  cacheMW caches only the inventory reads, which look the
// same for every user; the status view is per-caller and must never be
// served from a shared cache.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/seats", h.List, cacheMW)
	auth.GET("/seats/status", h.Status)
	auth.GET("/seats/available", h.Available)
	auth.GET("/seats/:id", h.Get, cacheMW)

	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("/seats", h.Create)
	admin.PUT("/seats/:id", h.Update)
	admin.DELETE("/seats/:id", h.Delete)
}

// RegisterReports registers administrative reports.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, jwtSecret string) {
	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.GET("/reports/seat-usage", h.SeatUsage)
}
