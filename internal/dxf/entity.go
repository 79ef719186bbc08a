package dxf

import "github.com/pid-digitizer/backend/internal/models"

const (
	// LineweightByLayer makes an entity use its layer's lineweight.
	LineweightByLayer = -1
	// LineweightDefault makes a layer use the application default lineweight.
	LineweightDefault = -3
)

// Lineweight converts millimeters to the format's hundredths-of-a-millimeter value.
func Lineweight(mm float64) int {
	return int(mm*100 + 0.5)
}

// Entity is a drawable object in model space or inside a block.
type Entity interface {
	// Type is the DXF entity name, e.g. "LINE".
	Type() string
	// LayerName is the layer the entity is placed on.
	LayerName() string
	write(w *writer, owner string)
}

// HAlign is TEXT group code 72.
type HAlign int

const (
	HAlignLeft   HAlign = 0
	HAlignCenter HAlign = 1
	HAlignRight  HAlign = 2
)

// VAlign is TEXT group code 73.
type VAlign int

const (
	VAlignBaseline VAlign = 0
	VAlignBottom   VAlign = 1
	VAlignMiddle   VAlign = 2
	VAlignTop      VAlign = 3
)

// Line is a straight segment.
type Line struct {
	Layer      string
	Start, End models.Point
	Lineweight int
}

func (e *Line) Type() string      { return "LINE" }
func (e *Line) LayerName() string { return e.Layer }

func (e *Line) write(w *writer, owner string) {
	w.entityHeader("LINE", owner, e.Layer, e.Lineweight)
	w.str(100, "AcDbLine")
	w.point(10, e.Start)
	w.point(11, e.End)
}

// Circle is a full circle.
type Circle struct {
	Layer  string
	Center models.Point
	Radius float64
}

func (e *Circle) Type() string      { return "CIRCLE" }
func (e *Circle) LayerName() string { return e.Layer }

func (e *Circle) write(w *writer, owner string) {
	w.entityHeader("CIRCLE", owner, e.Layer, LineweightByLayer)
	w.str(100, "AcDbCircle")
	w.point(10, e.Center)
	w.float(40, e.Radius)
}

// Arc runs counterclockwise from StartAngle to EndAngle, in degrees.
type Arc struct {
	Layer      string
	Center     models.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

func (e *Arc) Type() string      { return "ARC" }
func (e *Arc) LayerName() string { return e.Layer }

func (e *Arc) write(w *writer, owner string) {
	w.entityHeader("ARC", owner, e.Layer, LineweightByLayer)
	w.str(100, "AcDbCircle")
	w.point(10, e.Center)
	w.float(40, e.Radius)
	w.str(100, "AcDbArc")
	w.float(50, e.StartAngle)
	w.float(51, e.EndAngle)
}

// Polyline is a 2D lightweight polyline.
type Polyline struct {
	Layer      string
	Points     []models.Point
	Closed     bool
	Lineweight int
}

func (e *Polyline) Type() string      { return "LWPOLYLINE" }
func (e *Polyline) LayerName() string { return e.Layer }

func (e *Polyline) write(w *writer, owner string) {
	w.entityHeader("LWPOLYLINE", owner, e.Layer, e.Lineweight)
	w.str(100, "AcDbPolyline")
	w.int(90, len(e.Points))
	flags := 0
	if e.Closed {
		flags = 1
	}
	w.int(70, flags)
	w.float(43, 0)
	for _, p := range e.Points {
		w.float(10, p.X)
		w.float(20, p.Y)
	}
}

// Text is a single line of text.
type Text struct {
	Layer    string
	Value    string
	Insert   models.Point
	Height   float64
	Rotation float64
	Style    string
	HAlign   HAlign
	VAlign   VAlign
}

func (e *Text) Type() string      { return "TEXT" }
func (e *Text) LayerName() string { return e.Layer }

func (e *Text) write(w *writer, owner string) {
	w.entityHeader("TEXT", owner, e.Layer, LineweightByLayer)
	w.str(100, "AcDbText")
	w.point(10, e.Insert)
	w.float(40, e.Height)
	w.text(1, e.Value)
	if e.Rotation != 0 {
		w.float(50, e.Rotation)
	}
	style := e.Style
	if style == "" {
		style = StandardStyle
	}
	w.str(7, style)
	aligned := e.HAlign != HAlignLeft || e.VAlign != VAlignBaseline
	if e.HAlign != HAlignLeft {
		w.int(72, int(e.HAlign))
	}
	if aligned {
		// Aligned text is positioned by the second alignment point.
		w.point(11, e.Insert)
	}
	w.str(100, "AcDbText")
	if e.VAlign != VAlignBaseline {
		w.int(73, int(e.VAlign))
	}
}

// Insert places a block reference.
type Insert struct {
	Layer    string
	Block    string
	Point    models.Point
	Rotation float64
}

func (e *Insert) Type() string      { return "INSERT" }
func (e *Insert) LayerName() string { return e.Layer }

func (e *Insert) write(w *writer, owner string) {
	w.entityHeader("INSERT", owner, e.Layer, LineweightByLayer)
	w.str(100, "AcDbBlockReference")
	w.str(2, e.Block)
	w.point(10, e.Point)
	if e.Rotation != 0 {
		w.float(50, e.Rotation)
	}
}
