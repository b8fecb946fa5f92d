// Package router wires handlers and middleware onto the Echo
// instance.  Public browse routes sit behind the Redis response
// cache, everything sits behind the rate limiter, and the customer
// and admin groups add JWT plus role enforcement.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/handler"
	"github.com/iliyamo/parking-bay-reservation/internal/middleware"
)

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login,
// refresh and logout are unauthenticated; /v1/me requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest browse endpoints plus the gate
// plate lookup.  cache may be nil when Redis is unavailable.
func RegisterPublic(e *echo.Echo, b *handler.BayHandler, r *handler.ReservationHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/bays", b.List)
	g.GET("/bays/search", b.Search)
	g.GET("/bays/:id", b.Get)
	g.GET("/bays/:id/slots", b.Slots)
	g.GET("/bays/:id/availability", b.Availability)

	// Gate hardware authenticates at the network level, not with
	// JWTs, so the plate check stays outside the auth group and
	// outside the cache.
	e.GET("/v1/plates/:plate/reservation", r.CheckPlate)
}
