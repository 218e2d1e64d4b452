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
	"github.com/xeviet/bus-ticketing/internal/service"
)

// VehicleAdminHandler manages the fleet and exposes the aggregated per-
// vehicle seat view.
type VehicleAdminHandler struct {
	Vehicles  *repository.VehicleRepo
	Projector *service.SeatProjector
}

func NewVehicleAdminHandler(vehicles *repository.VehicleRepo, projector *service.SeatProjector) *VehicleAdminHandler {
	return &VehicleAdminHandler{Vehicles: vehicles, Projector: projector}
}

// List returns the fleet; ?active=true narrows to operational vehicles.
func (h *VehicleAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.List(ctx, c.QueryParam("active") == "true")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicles failed"})
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": vehicles, "total": len(vehicles)})
}

type vehicleReq struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	PlateNo  string `json:"plate_no"`
	TypeCode string `json:"type_code"`
	Status   string `json:"status"`
}

// Create registers a vehicle. TypeCode drives the seat layout of every trip
// later scheduled on it.
func (h *VehicleAdminHandler) Create(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and name required"})
	}
	if req.Status == "" {
		req.Status = "active"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := &model.Vehicle{Code: req.Code, Name: req.Name, PlateNo: req.PlateNo, TypeCode: req.TypeCode, Status: req.Status}
	if err := h.Vehicles.Create(ctx, v); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create vehicle failed"})
	}
	return c.JSON(http.StatusCreated, v)
}

// Update rewrites a vehicle's mutable fields. Changing TypeCode does not
// touch already provisioned trips; their seats are frozen at creation.
func (h *VehicleAdminHandler) Update(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := c.Param("code")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Vehicles.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.PlateNo != "" {
		existing.PlateNo = req.PlateNo
	}
	if req.TypeCode != "" {
		existing.TypeCode = req.TypeCode
	}
	if req.Status != "" {
		existing.Status = req.Status
	}
	if err := h.Vehicles.Update(ctx, existing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
	}
	return c.JSON(http.StatusOK, existing)
}

// SeatData aggregates seat occupancy across every trip of a vehicle, the
// back-office utilization view.
func (h *VehicleAdminHandler) SeatData(c echo.Context) error {
	code := c.Param("code")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Vehicles.GetByCode(ctx, code); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}

	views, tripCount, err := h.Projector.ProjectVehicle(ctx, code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load seat data failed"})
	}

	booked := 0
	for _, v := range views {
		if v.Status == service.SeatViewSold || v.Status == service.SeatViewHeld {
			booked++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vehicle_code":   code,
		"seats":          views,
		"total_trips":    tripCount,
		"total_seats":    len(views),
		"total_bookings": booked,
	})
}
