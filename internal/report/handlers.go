package report

import (
	"strconv"

	"backend-safewalk/internal/auth"
	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, optionalAuth fiber.Handler) {
	r.Get("/types", func(c *fiber.Ctx) error {
		return c.JSON(IssueTypes)
	})

	r.Post("/", optionalAuth, func(c *fiber.Ctx) error {
		var form Form
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		rep, err := svc.Submit(c.UserContext(), form, auth.UserID(c))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(rep)
	})

	r.Get("/nearby", func(c *fiber.Ctx) error {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		p := geo.Point{Lat: lat, Lng: lng}
		if err := p.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
		results, err := svc.Nearby(c.UserContext(), p, radius)
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(results)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rep, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(rep)
	})
}
