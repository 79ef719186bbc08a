// handlers_export.go - Export and exported-file handlers
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pid-digitizer/backend/internal/models"
	"github.com/pid-digitizer/backend/internal/parser"
	"github.com/pid-digitizer/backend/internal/storage"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	store       storage.Store
	exports     ExportRunner
	decoders    *parser.Registry
	defaults    models.ExportOptions
	allowDelete bool
	// allowInput filters ?filename= extensions; nil accepts all.
	allowInput func(filename string) bool

	pollInterval  time.Duration
	streamTimeout time.Duration
}

// NewExportHandler creates a new export handler instance
func NewExportHandler(store storage.Store, exports ExportRunner, decoders *parser.Registry, defaults models.ExportOptions, allowDelete bool) *ExportHandlerImpl {
	if decoders == nil {
		decoders = parser.GetGlobalRegistry()
	}
	return &ExportHandlerImpl{
		store:         store,
		exports:       exports,
		decoders:      decoders,
		defaults:      defaults,
		allowDelete:   allowDelete,
		pollInterval:  100 * time.Millisecond,
		streamTimeout: 5 * time.Minute,
	}
}

// HandleExport exports a drawing and waits for the file
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	req, err := h.decodeRequest(c)
	if err != nil {
		return err
	}

	rec, err := h.exports.Run(c.Request().Context(), req)
	if err != nil {
		return exportError(err)
	}

	return c.JSON(http.StatusCreated, rec)
}

// HandleStartJob queues an export and returns the job immediately
func (h *ExportHandlerImpl) HandleStartJob(c echo.Context) error {
	req, err := h.decodeRequest(c)
	if err != nil {
		return err
	}

	job := h.exports.StartJob(req)
	return c.JSON(http.StatusAccepted, job)
}

// HandleGetJob returns the current state of an export job
func (h *ExportHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.exports.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleJobStream streams job progress via SSE until the job finishes
func (h *ExportHandlerImpl) HandleJobStream(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	job, ok := h.exports.GetJob(id)
	if !ok {
		h.sendSSEError(c, "job not found")
		return nil
	}
	h.sendSSEData(c, job)
	if job.Done() {
		return nil
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(h.streamTimeout)
	defer timeout.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			job, ok := h.exports.GetJob(id)
			if !ok {
				h.sendSSEError(c, "job not found")
				return nil
			}

			h.sendSSEData(c, job)

			if job.Done() {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		}
	}
}

// HandleRecentExports lists exported files, newest first.
// ?format=msgpack switches the response encoding.
func (h *ExportHandlerImpl) HandleRecentExports(c echo.Context) error {
	limit := defaultRecentLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return NewValidationError("limit")
		}
		limit = min(n, maxRecentLimit)
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list exports", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}

	if c.QueryParam("format") == "msgpack" {
		data, err := parser.MarshalMsgpack(files)
		if err != nil {
			return NewInternalError("failed to encode response", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetExport returns metadata for an exported file
func (h *ExportHandlerImpl) HandleGetExport(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return h.fileError(id, err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDownloadExport sends the DXF file as an attachment
func (h *ExportHandlerImpl) HandleDownloadExport(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return h.fileError(id, err)
	}
	path, err := h.store.GetFilePath(id)
	if err != nil {
		return h.fileError(id, err)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/dxf")
	return c.Attachment(path, info.Name)
}

// HandleDeleteExport removes an exported file
func (h *ExportHandlerImpl) HandleDeleteExport(c echo.Context) error {
	if !h.allowDelete {
		return NewForbiddenError("file deletion is disabled")
	}
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return h.fileError(id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// decodeRequest reads the body with the decoder matching its content type.
// A ?filename= query parameter also lets the file extension pick the decoder.
func (h *ExportHandlerImpl) decodeRequest(c echo.Context) (*models.ExportRequest, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	filename := c.QueryParam("filename")
	if filename != "" && h.allowInput != nil && !h.allowInput(filename) {
		return nil, NewValidationError("filename")
	}
	if contentType == "" && filename == "" {
		contentType = echo.MIMEApplicationJSON
	}

	dec, err := h.decoders.FindDecoder(filename, contentType)
	if err != nil {
		return nil, NewUnsupportedMediaError(contentType, err)
	}

	req := models.NewExportRequest(h.defaults)
	if err := dec.Decode(c.Request().Body, req); err != nil {
		return nil, NewBadRequestError(fmt.Sprintf("invalid %s body", dec.Name()), err)
	}

	if req.DrawingID == "" {
		return nil, NewValidationError("drawingId")
	}
	return req, nil
}

func (h *ExportHandlerImpl) fileError(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewNotFoundError("export", id)
	}
	return NewInternalError("failed to access export", err)
}

func (h *ExportHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *ExportHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
