// handlers_history.go - Export history handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pid-digitizer/backend/internal/history"
	"github.com/pid-digitizer/backend/internal/models"
)

// HistoryHandlerImpl implements the HistoryHandler interface
type HistoryHandlerImpl struct {
	history HistoryReader
}

// NewHistoryHandler creates a new history handler. reader may be nil when
// history is disabled.
func NewHistoryHandler(reader HistoryReader) HistoryHandler {
	return &HistoryHandlerImpl{history: reader}
}

// HandleRecentHistory lists recorded exports, newest first
func (h *HistoryHandlerImpl) HandleRecentHistory(c echo.Context) error {
	if h.history == nil {
		return NewServiceUnavailableError("export history is disabled")
	}
	limit, err := limitParam(c)
	if err != nil {
		return err
	}

	records, err := h.history.Recent(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to query history", err)
	}
	if records == nil {
		records = []models.ExportRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// HandleGetHistory returns one recorded export with its block usage
func (h *HistoryHandlerImpl) HandleGetHistory(c echo.Context) error {
	if h.history == nil {
		return NewServiceUnavailableError("export history is disabled")
	}
	id := c.Param("id")
	rec, err := h.history.Get(c.Request().Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		return NewNotFoundError("export record", id)
	}
	if err != nil {
		return NewInternalError("failed to query history", err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleFallbacks reports which symbol classes were drawn with the generic shape
func (h *HistoryHandlerImpl) HandleFallbacks(c echo.Context) error {
	if h.history == nil {
		return NewServiceUnavailableError("export history is disabled")
	}
	limit, err := limitParam(c)
	if err != nil {
		return err
	}

	counts, err := h.history.FallbackSummary(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to query history", err)
	}
	if counts == nil {
		counts = []history.FallbackCount{}
	}
	return c.JSON(http.StatusOK, counts)
}

func limitParam(c echo.Context) (int, error) {
	s := c.QueryParam("limit")
	if s == "" {
		return defaultRecentLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, NewValidationError("limit")
	}
	return min(n, maxRecentLimit), nil
}
