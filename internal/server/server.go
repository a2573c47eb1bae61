package server

import (
	"errors"
	"log/slog"

	"backend-safewalk/internal/auth"
	"backend-safewalk/internal/config"
	"backend-safewalk/internal/contact"
	"backend-safewalk/internal/notify"
	"backend-safewalk/internal/places"
	"backend-safewalk/internal/report"
	"backend-safewalk/internal/route"
	"backend-safewalk/internal/session"
	"backend-safewalk/internal/stream"
	"backend-safewalk/internal/task"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *session.Service
	Logger   *slog.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient, log),
		Logger: log,
	}

	registerRoutes(s)
	return s
}

func (s *Server) Close() {
	if s.Sessions != nil {
		s.Sessions.Close()
	}
	s.Stream.Close()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func notifier(s *Server) notify.Notifier {
	n := notify.Multi{notify.LogNotifier{Logger: s.Logger}}
	if s.Redis != nil {
		n = append(n, notify.NewRedisNotifier(s.Redis))
	}
	return n
}

func routeService(s *Server) *route.Service {
	cfg := s.Cfg
	var callboxes *route.CallboxSource
	if cfg.CallboxesGeoJSONPath != "" || cfg.CallboxesGeoJSONURL != "" {
		callboxes = route.NewCallboxSource(cfg.CallboxesGeoJSONPath, cfg.CallboxesGeoJSONURL, s.Logger)
	}
	return route.NewService(
		route.NewDirectionsClient(cfg.GoogleMapsAPIKey, ""),
		route.NewWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIBaseURL, s.Redis, s.Logger),
		route.NewAlertsClient(cfg.UWAlertsURL, cfg.UWAlertsEnabled, s.Logger),
		callboxes,
		s.Logger,
	)
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	optionalAuth := auth.OptionalJWT(s.Cfg.JWTSecret)

	placesKey := s.Cfg.GooglePlacesAPIKey
	if placesKey == "" {
		placesKey = s.Cfg.GoogleMapsAPIKey
	}

	s.Sessions = session.NewService(s.DB, s.Stream, session.Options{
		ShareBaseURL:        s.Cfg.ShareBaseURL,
		InactivityThreshold: s.Cfg.InactivityThreshold(),
		Notifier:            notifier(s),
		Logger:              s.Logger,
	})

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	session.RegisterRoutes(s.App.Group("/api/sessions"), s.Sessions, optionalAuth)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.Sessions)
	route.RegisterRoutes(s.App, routeService(s))
	places.RegisterRoutes(s.App.Group("/api/places"), places.NewService(placesKey, "", s.Logger))
	report.RegisterRoutes(s.App.Group("/api/reports"), report.NewService(s.DB), optionalAuth)
	contact.RegisterRoutes(s.App.Group("/api/contacts"), contact.NewService(s.DB), jwtMiddleware)
	task.RegisterRoutes(s.App.Group("/api/tasks"), task.NewService(s.DB), jwtMiddleware)
}
