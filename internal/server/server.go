// Package server exposes the client state core over HTTP: every route issues
// an action against the store and answers from the resulting state.
package server

import (
	"context"
	"sync"
	"time"

	"discovrr/internal/bootstrap"
	"discovrr/internal/config"
	"discovrr/internal/service"
	"discovrr/internal/thunk"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide HTTP metrics collector. fiberprometheus
// registers on the default registry, so it is built once.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("discovrr")
	})
	return prom
}

// AppConfig is the fiber configuration the facade runs with. Handlers hand
// route params and body fields to the store, which keeps them past the
// request, so fiber must not reuse the request buffers behind them.
func AppConfig() fiber.Config {
	return fiber.Config{
		AppName:   "discovrr",
		BodyLimit: 1024 * 1024,
		Immutable: true,
	}
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	d              *thunk.Dispatcher
	svc            *service.Services
	promMiddleware *fiberprometheus.FiberPrometheus

	listenMu     sync.Mutex
	listenCancel context.CancelFunc
}

// NewServer creates a server over an initialized runtime.
func NewServer(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	s := NewServerWithDeps(cfg, rt.Dispatcher, rt.Services)
	s.db = rt.DB
	s.redis = rt.Redis
	return s
}

// NewServerWithDeps creates a Server from a dispatcher and its services.
// Readiness reports no backing stores until db or redis are set.
func NewServerWithDeps(cfg *config.Config, d *thunk.Dispatcher, svc *service.Services) *Server {
	return &Server{
		config:         cfg,
		d:              d,
		svc:            svc,
		promMiddleware: metrics(),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}
	app.Use(StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	api.Get("/state", s.GetState)

	auth := api.Group("/auth")
	auth.Post("/sign-in", s.RateLimit(10, 5*time.Minute, "sign_in", FailOpen), s.SignIn)
	auth.Post("/register", s.RateLimit(3, 10*time.Minute, "register", FailOpen), s.Register)
	auth.Post("/resume", s.ResumeSession)
	auth.Post("/sign-out", s.AuthRequired(), s.SignOut)

	settings := api.Group("/settings")
	settings.Put("/location", s.SetLocationQueryPrefs)
	settings.Put("/explore-layout", s.SetExploreLayout)

	// Public reads
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/more", s.GetMorePosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)

	comments := api.Group("/comments")
	comments.Get("/:id/replies", s.GetReplies)
	comments.Get("/:id", s.GetComment)

	profiles := api.Group("/profiles")
	profiles.Get("/", s.GetProfiles)
	profiles.Get("/search", s.SearchProfiles)
	profiles.Get("/:id/posts", s.GetProfilePosts)
	profiles.Get("/:id", s.GetProfile)

	products := api.Group("/products")
	products.Get("/", s.GetProducts)
	products.Get("/:id", s.GetProduct)

	merchants := api.Group("/merchants")
	merchants.Get("/", s.GetMerchants)
	merchants.Get("/:id/products", s.GetMerchantProducts)
	merchants.Get("/:id", s.GetMerchant)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Post("/posts", s.RateLimit(5, time.Minute, "create_post", FailOpen), s.CreatePost)
	protected.Put("/posts/:id/like", s.LikePost)
	protected.Post("/posts/:id/comments", s.CreateComment)
	protected.Patch("/posts/:id", s.UpdatePost)
	protected.Delete("/posts/:id", s.DeletePost)

	protected.Put("/comments/:id/like", s.LikeComment)
	protected.Post("/comments/:id/replies", s.CreateReply)
	protected.Patch("/comments/:id", s.UpdateComment)
	protected.Delete("/comments/:id", s.DeleteComment)
	protected.Put("/replies/:id/like", s.LikeReply)

	protected.Patch("/profiles/me", s.UpdateMyProfile)
	protected.Put("/profiles/me/fcm-token", s.SetFCMToken)
	protected.Put("/profiles/:id/follow", s.FollowProfile)

	protected.Put("/products/:id/like", s.LikeProduct)
	protected.Put("/merchants/:id/like", s.LikeMerchant)

	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Post("/listen", s.ListenNotifications)
	notifications.Post("/:id/read", s.MarkNotificationRead)
	notifications.Delete("/", s.ClearNotifications)
}

// Shutdown stops the push subscription started by ListenNotifications.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopListening()
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "healthy"
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "ready"
	if dbStatus == "unhealthy" {
		status, overall = fiber.StatusServiceUnavailable, "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  overall,
		"version": s.config.AppVersion,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
