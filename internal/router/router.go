// Package router wires handlers, middleware and route groups onto the Echo
// instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/handler"
	"github.com/xeviet/bus-ticketing/internal/middleware"
)

// RegisterHealth exposes the liveness probe. No middleware on purpose.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth without a session; /v1/me requires
// a valid access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "STAFF", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest storefront reads. The cache and rate
// limiter run only here: these routes are identical for every caller and
// take the brunt of the traffic.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, b *handler.BookingHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	g.GET("/routes", p.ListRoutes)
	g.GET("/trips/search", p.SearchTrips)
	g.GET("/trips/:code", p.TripDetail)
	g.GET("/trips/:code/seats", b.SeatMap)
}
