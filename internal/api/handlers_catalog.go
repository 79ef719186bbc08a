// handlers_catalog.go - Symbol, layer and paper size catalog handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pid-digitizer/backend/internal/cad"
)

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() CatalogHandler {
	return &CatalogHandlerImpl{}
}

// HandleSymbols lists every symbol class the exporter can draw
func (h *CatalogHandlerImpl) HandleSymbols(c echo.Context) error {
	return c.JSON(http.StatusOK, cad.Catalog())
}

// HandleLayers lists the drawing layers in creation order
func (h *CatalogHandlerImpl) HandleLayers(c echo.Context) error {
	type layerResponse struct {
		cad.LayerSpec
		Lineweight float64 `json:"lineweight"`
	}
	specs := cad.Layers()
	out := make([]layerResponse, len(specs))
	for i, s := range specs {
		out[i] = layerResponse{LayerSpec: s, Lineweight: cad.LineWeight(s.Name)}
	}
	return c.JSON(http.StatusOK, out)
}

// HandlePaperSizes lists the supported sheet sizes
func (h *CatalogHandlerImpl) HandlePaperSizes(c echo.Context) error {
	return c.JSON(http.StatusOK, cad.PaperSizes())
}
