package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/handler"
	"github.com/iliyamo/parking-bay-reservation/internal/middleware"
	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// RegisterCustomer registers the booking endpoints.  Both roles are
// accepted: admins can book like any customer.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))

	g.POST("/reservations", r.Create)
	g.GET("/reservations/recent", r.Recent)
	g.GET("/reservations/:id", r.Get)
	g.POST("/reservations/:id/check-in", r.CheckIn)
	g.POST("/reservations/:id/check-out", r.CheckOut)
	g.POST("/bays/:id/lock", r.LockSlot)
}
