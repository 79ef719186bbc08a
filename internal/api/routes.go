// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pid-digitizer/backend/internal/config"
	"github.com/pid-digitizer/backend/internal/parser"
	"github.com/pid-digitizer/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store    storage.Store
	Exports  ExportRunner
	History  HistoryReader
	Decoders *parser.Registry
	Config   *config.AppConfig
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Catalog CatalogHandler
	Export  ExportHandler
	History HistoryHandler
	Socket  *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	exportHandler := NewExportHandler(deps.Store, deps.Exports, deps.Decoders,
		cfg.ExportDefaults(), cfg.Security.AllowFileDeletion)
	exportHandler.allowInput = cfg.AllowedInputType

	var origins []string
	if cfg.Server.EnableCORS {
		origins = splitOrigins(cfg.Server.AllowOrigins)
	} else {
		origins = []string{"http://" + cfg.GetServerAddr()}
	}

	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.History != nil),
		Catalog: NewCatalogHandler(),
		Export:  exportHandler,
		History: NewHistoryHandler(deps.History),
		Socket:  NewWebSocketHandler(deps.Exports, cfg.ExportDefaults(), origins),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Catalog routes
	catalogGroup := apiGroup.Group("/catalog")
	catalogGroup.GET("/symbols", handlers.Catalog.HandleSymbols)
	catalogGroup.GET("/layers", handlers.Catalog.HandleLayers)
	catalogGroup.GET("/paper-sizes", handlers.Catalog.HandlePaperSizes)

	// Export routes
	exportGroup := apiGroup.Group("/exports")
	exportGroup.POST("", handlers.Export.HandleExport)
	exportGroup.POST("/jobs", handlers.Export.HandleStartJob)
	exportGroup.GET("/jobs/:jobId", handlers.Export.HandleGetJob)
	exportGroup.GET("/jobs/:jobId/stream", handlers.Export.HandleJobStream)
	exportGroup.GET("/recent", handlers.Export.HandleRecentExports)
	exportGroup.GET("/:id", handlers.Export.HandleGetExport)
	exportGroup.GET("/:id/download", handlers.Export.HandleDownloadExport)
	exportGroup.DELETE("/:id", handlers.Export.HandleDeleteExport)

	// History routes
	historyGroup := apiGroup.Group("/history")
	historyGroup.GET("/recent", handlers.History.HandleRecentHistory)
	historyGroup.GET("/fallbacks", handlers.History.HandleFallbacks)
	historyGroup.GET("/:id", handlers.History.HandleGetHistory)

	// WebSocket export submission
	apiGroup.GET("/ws/exports", handlers.Socket.HandleWebSocket)
}

func isWebSocket(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket")
}

func splitOrigins(s string) []string {
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if len(origins) == 1 && origins[0] == "" {
		origins = []string{"*"}
	}
	return origins
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/stream") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/stream") ||
				c.Request().Header.Get("Accept") == "text/event-stream" ||
				isWebSocket(c)
		},
		ErrorMessage: "Request timeout - export took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Accept") == "text/event-stream" || isWebSocket(c)
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := splitOrigins(cfg.Server.AllowOrigins)
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
