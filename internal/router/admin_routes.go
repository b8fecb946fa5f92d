package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/handler"
	"github.com/iliyamo/parking-bay-reservation/internal/middleware"
	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// RegisterAdmin registers the management surface: bay CRUD, the
// availability switch and reservation interventions.  Every route
// requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, b *handler.AdminBayHandler, r *handler.AdminReservationHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/bays", b.Create)
	g.PUT("/bays/:id", b.Update)
	g.DELETE("/bays/:id", b.Delete)
	g.PATCH("/bays/:id/availability", b.SetAvailability)

	g.POST("/reservations/:id/refund", r.Refund)
	g.POST("/reservations/:id/cancel", r.Cancel)
	g.PATCH("/reservations/:id/status", r.SetStatus)
	g.POST("/users/:id/loyalty", r.Loyalty)
}
