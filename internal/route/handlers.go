package route

import (
	"errors"
	"fmt"

	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/safe-route", func(c *fiber.Ctx) error {
		start, end, err := parseRequest(c)
		if err != nil {
			return err
		}
		resp, err := svc.SafeRoute(c.UserContext(), start, end)
		switch {
		case err == nil:
			return c.JSON(resp)
		case errors.Is(err, ErrNoAPIKey):
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		case errors.Is(err, apperr.ErrNotFound):
			return apperr.Fiber(err)
		default:
			return fiber.NewError(fiber.StatusBadGateway, "Route calculation failed: "+err.Error())
		}
	})

	r.Get("/test-routes", func(c *fiber.Ctx) error {
		n, err := svc.CheckDirections(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"error":   err.Error(),
				"message": "Failed to fetch routes from Google Maps API",
			})
		}
		return c.JSON(fiber.Map{
			"status":           "success",
			"number_of_routes": n,
			"message":          fmt.Sprintf("Successfully fetched %d route(s) from Google Maps API", n),
		})
	})

	r.Get("/api/routes/demo", func(c *fiber.Ctx) error {
		return c.JSON(DemoRoutes())
	})
}

func parseRequest(c *fiber.Ctx) (geo.Point, geo.Point, error) {
	var req Request
	if len(c.Body()) == 0 {
		return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "Request body is required")
	}
	if err := c.BodyParser(&req); err != nil {
		return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "Coordinates must be valid numbers")
	}
	if req.Start == nil || req.End == nil {
		return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "Start and end coordinates are required")
	}
	if req.Start.Lat == nil || req.Start.Lng == nil {
		return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "Start must have 'lat' and 'lng' keys")
	}
	if req.End.Lat == nil || req.End.Lng == nil {
		return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "End must have 'lat' and 'lng' keys")
	}

	start := geo.Point{Lat: *req.Start.Lat, Lng: *req.Start.Lng}
	end := geo.Point{Lat: *req.End.Lat, Lng: *req.End.Lng}
	for _, p := range []geo.Point{start, end} {
		if err := p.Validate(); err != nil {
			return geo.Point{}, geo.Point{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return start, end, nil
}
