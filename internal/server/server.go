package server

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jung602/roro/internal/auth"
	"github.com/jung602/roro/internal/cache"
	"github.com/jung602/roro/internal/config"
	"github.com/jung602/roro/internal/directions"
	"github.com/jung602/roro/internal/feed"
	"github.com/jung602/roro/internal/geolocate"
	"github.com/jung602/roro/internal/photoflow"
	"github.com/jung602/roro/internal/places"
	"github.com/jung602/roro/internal/projection"
	"github.com/jung602/roro/internal/route"
	"github.com/jung602/roro/internal/session"
	"github.com/jung602/roro/internal/storage"
)

// globePageSize bounds how many routes feed the globe view.
const globePageSize = 100

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Feed  *feed.Hub

	routes     *route.Service
	sessions   *session.Store
	photos     *photoflow.Store
	directions directions.Provider
	locator    geolocate.Locator
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := feed.NewHub(redisClient)
	routeCache := cache.New(cache.DefaultTTL)
	directionsClient := directions.NewClient(cfg.MapsBaseURL, cfg.MapsAPIKey)
	placesClient := places.NewClient(cfg.MapsBaseURL, cfg.MapsAPIKey)
	uploader := storage.NewUploader(storage.NewService(db, cfg.CDNBaseURL))

	s := &Server{
		App:        app,
		Cfg:        cfg,
		DB:         db,
		Redis:      redisClient,
		Feed:       hub,
		routes:     route.NewService(db, routeCache, hub),
		sessions:   session.NewStore(directionsClient, uploader),
		photos:     photoflow.NewStore(placesClient),
		directions: directionsClient,
		locator:    geolocate.NewClient(cfg.MapsBaseURL, cfg.MapsAPIKey),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	route.RegisterRoutes(s.App.Group("/routes"), s.routes, s.thumbnail, jwtMiddleware)
	session.RegisterRoutes(s.App.Group("/sessions"), s.sessions, s.routes, jwtMiddleware)
	photoflow.RegisterRoutes(s.App.Group("/photos"), s.photos)
	feed.RegisterRoutes(s.App.Group("/feed"), s.Feed)

	s.App.Get("/globe", s.globeHandler)
}

// thumbnail re-resolves the walking path through a saved route's points
// and projects it. When the routing provider is unavailable the bare
// point sequence is projected instead.
func (s *Server) thumbnail(ctx context.Context, r route.SavedRoute) (string, error) {
	if len(r.Points) < 2 {
		return projection.PointsPath(r.Points), nil
	}
	waypoints := make([]directions.Waypoint, len(r.Points))
	for i, p := range r.Points {
		waypoints[i] = directions.ResolvedWaypoint(p.Lat, p.Lng)
	}
	it, err := s.directions.Route(ctx, waypoints[0], waypoints[len(waypoints)-1], waypoints[1:len(waypoints)-1])
	if err != nil {
		return projection.PointsPath(r.Points), nil
	}
	return projection.ThumbnailPath(it), nil
}

func (s *Server) globeHandler(c *fiber.Ctx) error {
	routes, err := s.routes.List(c.Context(), globePageSize)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	viewer := s.viewerPosition(c)
	body := fiber.Map{
		"arcs":   projection.Arcs(routes),
		"labels": projection.Labels(routes, viewer),
		"stats":  projection.Counters(routes),
	}
	if viewer == nil {
		body["viewer"] = "unavailable"
	}
	return c.JSON(body)
}

// viewerPosition prefers client-supplied coordinates; otherwise it asks
// the geolocation provider once. Failure degrades to no highlight.
func (s *Server) viewerPosition(c *fiber.Ctx) *projection.Coordinate {
	if c.Query("lat") != "" && c.Query("lng") != "" {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat == nil && errLng == nil {
			return &projection.Coordinate{Lat: lat, Lng: lng}
		}
	}
	if s.locator == nil {
		return nil
	}
	pos, err := s.locator.CurrentPosition(c.Context())
	if err != nil {
		return nil
	}
	return &projection.Coordinate{Lat: pos.Lat, Lng: pos.Lng}
}
