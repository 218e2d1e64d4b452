package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
)

// RouteAdminHandler manages the route catalogue.
type RouteAdminHandler struct {
	Routes *repository.RouteRepo
}

func NewRouteAdminHandler(routes *repository.RouteRepo) *RouteAdminHandler {
	return &RouteAdminHandler{Routes: routes}
}

type routeReq struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DistanceKM  uint32 `json:"distance_km"`
}

// Create adds a route to the catalogue.
func (h *RouteAdminHandler) Create(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code, origin, destination required"})
	}
	if req.Name == "" {
		req.Name = req.Origin + " - " + req.Destination
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt := &model.Route{Code: req.Code, Name: req.Name, Origin: req.Origin,
		Destination: req.Destination, DistanceKM: req.DistanceKM, Status: "active"}
	if err := h.Routes.Create(ctx, rt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "route code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create route failed"})
	}
	return c.JSON(http.StatusCreated, rt)
}
