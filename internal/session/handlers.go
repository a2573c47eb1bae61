package session

import (
	"backend-safewalk/internal/auth"
	"backend-safewalk/internal/shared/apperr"
	"backend-safewalk/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the walk session API. optionalAuth attaches the caller
// as owner when a bearer token is present; sessions may also be anonymous.
func RegisterRoutes(r fiber.Router, svc *Service, optionalAuth fiber.Handler) {
	r.Post("/", optionalAuth, func(c *fiber.Ctx) error {
		var req CreateRequest
		if len(c.Body()) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		resp, err := svc.Create(c.UserContext(), auth.UserID(c), req)
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	})

	r.Get("/share/:token", func(c *fiber.Ctx) error {
		view, err := svc.ShareView(c.UserContext(), c.Params("token"))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(view)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(sess)
	})

	r.Post("/:id/location", func(c *fiber.Ctx) error {
		var req LocationRequest
		if err := c.BodyParser(&req); err != nil || req.Lat == nil || req.Lng == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body. Expected lat and lng")
		}
		update, err := svc.UpdateLocation(c.UserContext(), c.Params("id"), geo.Point{Lat: *req.Lat, Lng: *req.Lng})
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(fiber.Map{"ok": true, "eta": update.ETA})
	})

	r.Post("/:id/panic", func(c *fiber.Ctx) error {
		if err := svc.Panic(c.UserContext(), c.Params("id")); err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	r.Post("/:id/arrive", func(c *fiber.Ctx) error {
		if err := svc.Arrive(c.UserContext(), c.Params("id")); err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	r.Get("/:id/points", func(c *fiber.Ctx) error {
		points, err := svc.Points(c.UserContext(), c.Params("id"))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(points)
	})

	r.Get("/:id/summary", func(c *fiber.Ctx) error {
		summary, err := svc.Summary(c.UserContext(), c.Params("id"))
		if err != nil {
			return apperr.Fiber(err)
		}
		return c.JSON(summary)
	})
}
