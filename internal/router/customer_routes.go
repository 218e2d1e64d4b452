package router

import (
	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/handler"
	"github.com/xeviet/bus-ticketing/internal/middleware"
)

// RegisterCustomer registers the endpoints a logged-in customer uses to book
// and manage tickets.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, t *handler.TicketHandler, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER"))

	g.POST("/bookings", b.Create)
	g.GET("/my-tickets", t.MyTickets)
	g.GET("/trip-history", t.TripHistory)
	g.DELETE("/tickets/:code", t.Cancel)
	g.PUT("/profile", a.UpdateProfile)
}
