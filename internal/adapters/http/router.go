package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-manager/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default deadline for API requests.
const DefaultRequestTimeout = 30 * time.Second

// APIPrefix is the route group of the public API.
const APIPrefix = "/api/v1"

// EventsPath is the sync event stream. It is long-lived and runs without a deadline.
const EventsPath = APIPrefix + "/sync/events"

// RouterConfig contains the handlers and settings for the router.
type RouterConfig struct {
	// ServiceName names the server spans.
	ServiceName string

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	SyncHandler   *handlers.SyncHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing, then request metrics
//  5. Logging (skips /-/ endpoints)
//  6. Timeout (API group only)
//
// Route groups:
//   - /-/ health, build info and metrics
//   - /api/v1/ quotes, categories, preferences and sync
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.MetricsMiddleware(),
		middleware.Logging(),
	)

	engine.NoRoute(func(c *gin.Context) {
		dto.HandleErrorCode(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group(APIPrefix)
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout, EventsPath))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(api)
	}

	if cfg.SyncHandler != nil {
		cfg.SyncHandler.RegisterRoutes(api)
	}
}
