package router

import (
	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/handler"
	"github.com/xeviet/bus-ticketing/internal/middleware"
)

// RegisterAdmin registers the staff back office. ADMIN and STAFF share the
// whole surface; separating write rights between them is a future concern.
func RegisterAdmin(e *echo.Echo, trips *handler.TripAdminHandler, vehicles *handler.VehicleAdminHandler, routes *handler.RouteAdminHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "STAFF"))

	g.POST("/trips", trips.Create)
	g.GET("/trips", trips.List)

	g.GET("/vehicles", vehicles.List)
	g.POST("/vehicles", vehicles.Create)
	g.PUT("/vehicles/:code", vehicles.Update)
	g.GET("/vehicles/:code/seat-data", vehicles.SeatData)

	g.POST("/routes", routes.Create)
}
