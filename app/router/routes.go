// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/app/handlers"
	"github.com/kubousky/dotmap/app/middleware"
	"github.com/kubousky/dotmap/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	userHandler    handlers.UserHandlerInterface
	tokenHandler   handlers.TokenHandlerInterface
	tagHandler     handlers.TagHandlerInterface
	dotHandler     handlers.DotHandlerInterface
	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	userHandler handlers.UserHandlerInterface,
	tokenHandler handlers.TokenHandlerInterface,
	tagHandler handlers.TagHandlerInterface,
	dotHandler handlers.DotHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Dotmap API",
		ServerHeader: "Dotmap",
		ErrorHandler: errorHandler,
		BodyLimit:    int(utils.MaxDotImageSize) + 1024*1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		userHandler:    userHandler,
		tokenHandler:   tokenHandler,
		tagHandler:     tagHandler,
		dotHandler:     dotHandler,
		authMiddleware: authMiddleware,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes. Trailing-slash variants
// are registered alongside the bare paths since existing clients use both.
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api")

	// Health check route, exempt from rate limiting
	api.Get("/health", r.healthCheck)
	api.Get("/health/", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/health")
		},
	}))

	// Account and token endpoints with stricter rate limiting
	user := api.Group("/user")
	token := api.Group("/token")

	authLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	})
	user.Use(authLimiter)
	token.Use(authLimiter)

	registerPost(user, "/", r.userHandler.Create)
	user.Get("/me/", r.userHandler.Me, r.authMiddleware.Authenticate())
	user.Patch("/me/", r.userHandler.UpdateMe, r.authMiddleware.Authenticate())
	user.Put("/me/", r.userHandler.UpdateMe, r.authMiddleware.Authenticate())

	registerPost(token, "/", r.tokenHandler.Obtain)
	registerPost(token, "/verify/", r.tokenHandler.Verify)
	registerPost(token, "/refresh/", r.tokenHandler.Refresh)

	// Catalog endpoints, all owner-scoped behind authentication
	dot := api.Group("/dot", r.authMiddleware.Authenticate())

	tags := dot.Group("/tags")
	tags.Get("/", r.tagHandler.List)
	registerPost(tags, "/", r.tagHandler.Create)
	tags.Delete("/:id/", r.tagHandler.Delete)
	tags.Delete("/:id", r.tagHandler.Delete)

	dots := dot.Group("/dots")
	dots.Get("/", r.dotHandler.List)
	registerPost(dots, "/", r.dotHandler.Create)
	dots.Get("/export/", r.dotHandler.Export)
	dots.Get("/export", r.dotHandler.Export)
	dots.Get("/:id/", r.dotHandler.Get)
	dots.Get("/:id", r.dotHandler.Get)
	dots.Put("/:id/", r.dotHandler.Update)
	dots.Put("/:id", r.dotHandler.Update)
	dots.Patch("/:id/", r.dotHandler.Update)
	dots.Patch("/:id", r.dotHandler.Update)
	dots.Delete("/:id/", r.dotHandler.Delete)
	dots.Delete("/:id", r.dotHandler.Delete)
	registerPost(dots, "/:id/upload-image/", r.dotHandler.UploadImage)
	dots.Get("/:id/image/", r.dotHandler.DownloadImage)
	dots.Get("/:id/image", r.dotHandler.DownloadImage)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// registerPost registers a POST handler on both the trailing-slash and
// bare form of a path
func registerPost(g fiber.Router, path string, h fiber.Handler) {
	g.Post(path, h)
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" && trimmed != path {
		g.Post(trimmed, h)
	}
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware comes first so everything downstream sees it
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			contentType := c.Get("Content-Type")
			return strings.Contains(contentType, "image/") ||
				strings.Contains(contentType, "multipart/")
		},
	}))

	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			// Only the health endpoint is safe to cache; everything else
			// is per-user data.
			return c.Method() != "GET" || !strings.HasPrefix(c.Path(), "/api/health")
		},
		Expiration:          30 * time.Second,
		DisableCacheControl: false,
	}))

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/health")
		},
	}))

	r.app.Use(middleware.Metrics())

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"service":   "dotmap-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
