package cad

import (
	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

// Canvas is the drawing vocabulary symbol generators use. Coordinates are
// local to the symbol, centered on the origin.
type Canvas interface {
	Line(from, to models.Point)
	Arc(center models.Point, radius, startAngle, endAngle float64)
	Circle(center models.Point, radius float64)
	Polygon(points ...models.Point)
}

// BlockSink creates named block definitions to draw into.
type BlockSink interface {
	DefineBlock(name string) (Canvas, error)
}

// DocumentSink defines blocks in a DXF document.
type DocumentSink struct {
	Doc *dxf.Document
}

// DefineBlock implements BlockSink.
func (s DocumentSink) DefineBlock(name string) (Canvas, error) {
	b, err := s.Doc.AddBlock(name)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Point is a position in drawing units.
type Point = models.Point

var pt = models.Pt

// polyline draws an open chain of segments.
func polyline(c Canvas, points ...models.Point) {
	for i := 1; i < len(points); i++ {
		c.Line(points[i-1], points[i])
	}
}

// rect draws a closed rectangle centered on (cx, cy).
func rect(c Canvas, cx, cy, w, h float64) {
	c.Polygon(
		pt(cx-w/2, cy-h/2),
		pt(cx+w/2, cy-h/2),
		pt(cx+w/2, cy+h/2),
		pt(cx-w/2, cy+h/2),
	)
}
