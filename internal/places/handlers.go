package places

import (
	"strconv"

	"backend-safewalk/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/autocomplete", func(c *fiber.Ctx) error {
		var bias *geo.Point
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr == nil && lngErr == nil {
			p := geo.Point{Lat: lat, Lng: lng}
			if p.Validate() == nil {
				bias = &p
			}
		}
		return c.JSON(svc.Search(c.UserContext(), c.Query("input"), bias))
	})
}
