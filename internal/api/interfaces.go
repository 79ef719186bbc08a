// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/pid-digitizer/backend/internal/export"
	"github.com/pid-digitizer/backend/internal/history"
	"github.com/pid-digitizer/backend/internal/models"
)

// ExportHandler handles export and exported-file operations
type ExportHandler interface {
	HandleExport(c echo.Context) error
	HandleStartJob(c echo.Context) error
	HandleGetJob(c echo.Context) error
	HandleJobStream(c echo.Context) error
	HandleRecentExports(c echo.Context) error
	HandleGetExport(c echo.Context) error
	HandleDownloadExport(c echo.Context) error
	HandleDeleteExport(c echo.Context) error
}

// CatalogHandler exposes the fixed symbol, layer and paper tables
type CatalogHandler interface {
	HandleSymbols(c echo.Context) error
	HandleLayers(c echo.Context) error
	HandlePaperSizes(c echo.Context) error
}

// HistoryHandler handles export history queries
type HistoryHandler interface {
	HandleRecentHistory(c echo.Context) error
	HandleGetHistory(c echo.Context) error
	HandleFallbacks(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ExportRunner defines the export operations the handlers need.
// This allows mocking in tests
type ExportRunner interface {
	Run(ctx context.Context, req *models.ExportRequest) (*models.ExportRecord, error)
	StartJob(req *models.ExportRequest) export.Job
	GetJob(id string) (export.Job, bool)
}

// HistoryReader defines the read side of the export history
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.ExportRecord, error)
	Get(ctx context.Context, id string) (*models.ExportRecord, error)
	FallbackSummary(ctx context.Context, limit int) ([]history.FallbackCount, error)
}
