package cad

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
)

// State is a stage of the composer pipeline.
type State int

const (
	Uninitialized State = iota
	DocumentReady
	Layered
	ContentPlaced
	Finalized
	Saved
)

var stateNames = [...]string{"uninitialized", "document-ready", "layered", "content-placed", "finalized", "saved"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Text style and sizes used for placed text.
const (
	StyleISOCP     = "ISOCP"
	tagTextHeight  = 2.5
	tagGap         = 5
	lineLabelRise  = 3
	minNoteHeight  = 1.5
	maxNoteHeight  = 5.0
	noteHeightRate = 0.8
	borderMargin   = 10
)

// Composer builds one DXF document from drawing entities. It is single use:
// its steps must run in pipeline order and each instance produces one file.
type Composer struct {
	state   State
	opts    models.ExportOptions
	paper   Paper
	doc     *dxf.Document
	library *Library
	stats   models.ExportStats

	titleBlockAdded bool
	borderAdded     bool

	log *log.Logger
}

// NewComposer returns a composer in the Uninitialized state.
func NewComposer() *Composer {
	return &Composer{
		log: logging.New("composer"),
	}
}

// State returns the current pipeline state.
func (c *Composer) State() State {
	return c.state
}

// Document returns the document being built, or nil before Initialize.
func (c *Composer) Document() *dxf.Document {
	return c.doc
}

// Library returns the block library of this document, or nil before Initialize.
func (c *Composer) Library() *Library {
	return c.library
}

// Stats reports what has been placed so far.
func (c *Composer) Stats() models.ExportStats {
	s := c.stats
	if c.library != nil {
		s.Blocks = c.library.Len()
		s.BlockNames = c.library.Blocks()
		s.FallbackClasses = c.library.Fallbacks()
	}
	return s
}

func (c *Composer) require(op string, allowed ...State) error {
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return &StateError{Op: op, State: c.state}
}

// Initialize validates the options and sets up an empty millimeter document
// with the text styles and linetypes the drawing uses.
func (c *Composer) Initialize(opts models.ExportOptions) error {
	if err := c.require("initialize", Uninitialized); err != nil {
		return err
	}
	paper, err := PaperDimensions(opts.PaperSize)
	if err != nil {
		return err
	}
	if opts.Format != "" && !strings.EqualFold(opts.Format, models.FormatDXF) {
		return &ConfigurationError{Field: "format", Value: opts.Format}
	}

	doc := dxf.New()
	doc.SetUnits(dxf.UnitsMillimeters)
	doc.AddTextStyle(StyleISOCP, "isocp.shx", 0)
	doc.AddLinetype(LinetypeDashed, "Dashed __ __ __", 6, -3)
	doc.AddLinetype(LinetypeInstrument, "Instrument signal _ _ _", 2, -1)

	c.opts = opts
	c.paper = paper
	c.doc = doc
	c.library = NewLibrary(DocumentSink{Doc: doc})
	c.state = DocumentReady
	return nil
}

// CreateLayers writes the layer registry into the document. Existing layers
// are updated rather than duplicated.
func (c *Composer) CreateLayers() error {
	if err := c.require("create layers", DocumentReady, Layered); err != nil {
		return err
	}
	for _, spec := range layerRegistry {
		l := c.doc.SetLayer(spec.Name, spec.Color, spec.Linetype)
		l.Description = spec.Description
		l.Lineweight = dxf.Lineweight(LineWeight(spec.Name))
	}
	c.state = Layered
	return nil
}

func (c *Composer) beginContent(op string) error {
	if err := c.require(op, Layered, ContentPlaced); err != nil {
		return err
	}
	c.state = ContentPlaced
	return nil
}

// PlaceSymbols inserts a block reference at the center of every visible
// symbol, with its tag number below it.
func (c *Composer) PlaceSymbols(symbols []models.Symbol) error {
	if err := c.beginContent("place symbols"); err != nil {
		return err
	}
	for _, s := range symbols {
		if s.IsDeleted {
			c.stats.SkippedDeleted++
			continue
		}
		center := s.BBox.Center()
		err := c.doc.Add(&dxf.Insert{
			Layer: LayerForSymbol(s.Category),
			Block: c.library.GetOrCreate(s.SymbolClass),
			Point: center,
		})
		if err != nil {
			return fmt.Errorf("place symbol %s: %w", s.ID, err)
		}
		c.stats.Insertions++

		if s.TagNumber == "" {
			continue
		}
		err = c.addText(LayerTextTags, s.TagNumber, center.Add(pt(0, -(s.BBox.Height/2+tagGap))),
			tagTextHeight, 0, dxf.HAlignCenter, dxf.VAlignTop)
		if err != nil {
			return err
		}
		c.stats.TagLabels++
		c.stats.TextEntities++
	}
	return nil
}

// DrawLines draws every visible line on the layer its spec selects, labelled
// with its line number above the midpoint.
func (c *Composer) DrawLines(lines []models.Line) error {
	if err := c.beginContent("draw lines"); err != nil {
		return err
	}
	for _, l := range lines {
		if l.IsDeleted {
			c.stats.SkippedDeleted++
			continue
		}
		layer := LayerForLine(l.LineSpec)
		err := c.doc.Add(&dxf.Line{
			Layer:      layer,
			Start:      l.Start,
			End:        l.End,
			Lineweight: dxf.Lineweight(LineWeight(layer)),
		})
		if err != nil {
			return fmt.Errorf("draw line %s: %w", l.ID, err)
		}
		c.stats.LineEntities++

		if l.LineNumber == "" {
			continue
		}
		err = c.addText(LayerTextLabels, l.LineNumber, l.Start.Midpoint(l.End).Add(pt(0, lineLabelRise)),
			tagTextHeight, 0, dxf.HAlignCenter, dxf.VAlignBottom)
		if err != nil {
			return err
		}
		c.stats.LineLabels++
		c.stats.TextEntities++
	}
	return nil
}

// AddTextAnnotations places free text centered in its box. It does nothing
// when annotations are disabled.
func (c *Composer) AddTextAnnotations(annotations []models.TextAnnotation) error {
	if err := c.beginContent("add text annotations"); err != nil {
		return err
	}
	if !c.opts.IncludeAnnotations {
		return nil
	}
	for _, a := range annotations {
		if a.IsDeleted {
			c.stats.SkippedDeleted++
			continue
		}
		err := c.addText(LayerTextNotes, a.TextContent, a.BBox.Center(),
			noteHeight(a.BBox.Height), a.Rotation, dxf.HAlignCenter, dxf.VAlignMiddle)
		if err != nil {
			return err
		}
		c.stats.Annotations++
		c.stats.TextEntities++
	}
	return nil
}

func noteHeight(boxHeight float64) float64 {
	return math.Min(math.Max(boxHeight*noteHeightRate, minNoteHeight), maxNoteHeight)
}

// AddTitleBlock draws the title block in the lower right corner. It does
// nothing when the title block is disabled or already drawn.
func (c *Composer) AddTitleBlock(info models.TitleBlockInfo) error {
	if err := c.beginContent("add title block"); err != nil {
		return err
	}
	if !c.opts.IncludeTitleBlock || c.titleBlockAdded {
		return nil
	}
	tb := newTitleBlock(c.paper, info, c.opts.Scale)
	for _, e := range tb.entities() {
		if err := c.doc.Add(e); err != nil {
			return fmt.Errorf("add title block: %w", err)
		}
	}
	c.titleBlockAdded = true
	return nil
}

// AddBorder draws the sheet border inside a fixed margin.
func (c *Composer) AddBorder() error {
	if err := c.beginContent("add border"); err != nil {
		return err
	}
	if c.borderAdded {
		return nil
	}
	w, h := c.paper.Width, c.paper.Height
	err := c.doc.Add(&dxf.Polyline{
		Layer: LayerBorder,
		Points: []models.Point{
			pt(borderMargin, borderMargin),
			pt(w-borderMargin, borderMargin),
			pt(w-borderMargin, h-borderMargin),
			pt(borderMargin, h-borderMargin),
		},
		Closed:     true,
		Lineweight: dxf.Lineweight(LineWeight(LayerBorder)),
	})
	if err != nil {
		return fmt.Errorf("add border: %w", err)
	}
	c.borderAdded = true
	return nil
}

// Finalize draws the border if it is missing and sets the drawing extents
// to the sheet.
func (c *Composer) Finalize() error {
	if err := c.require("finalize", Layered, ContentPlaced); err != nil {
		return err
	}
	if !c.borderAdded {
		if err := c.AddBorder(); err != nil {
			return err
		}
	}
	c.doc.SetExtents(pt(0, 0), pt(c.paper.Width, c.paper.Height))
	c.state = Finalized
	return nil
}

// Save writes the finished document to path. Filesystem errors are returned
// unchanged and a partially written file is left in place.
func (c *Composer) Save(path string) error {
	if err := c.require("save", Finalized); err != nil {
		return err
	}
	if err := c.doc.Save(path); err != nil {
		return err
	}
	c.state = Saved
	return nil
}

// Export runs the whole pipeline for req and returns the path written.
func (c *Composer) Export(req *models.ExportRequest, path string) (string, error) {
	start := time.Now()
	if err := c.Initialize(req.Options); err != nil {
		return "", err
	}
	steps := []func() error{
		c.CreateLayers,
		func() error { return c.PlaceSymbols(req.Symbols) },
		func() error { return c.DrawLines(req.Lines) },
		func() error { return c.AddTextAnnotations(req.Annotations) },
		func() error { return c.AddTitleBlock(req.TitleBlock) },
		c.AddBorder,
		c.Finalize,
		func() error { return c.Save(path) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return "", err
		}
	}

	stats := c.Stats()
	c.log.Infoj(log.JSON{
		"event":      "export_complete",
		"drawingId":  req.DrawingID,
		"paperSize":  req.Options.PaperSize,
		"blocks":     stats.Blocks,
		"insertions": stats.Insertions,
		"lines":      stats.LineEntities,
		"texts":      stats.TextEntities,
		"fallbacks":  len(stats.FallbackClasses),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return path, nil
}

func (c *Composer) addText(layer, value string, at models.Point, height, rotation float64, h dxf.HAlign, v dxf.VAlign) error {
	err := c.doc.Add(&dxf.Text{
		Layer:    layer,
		Value:    value,
		Insert:   at,
		Height:   height,
		Rotation: rotation,
		Style:    StyleISOCP,
		HAlign:   h,
		VAlign:   v,
	})
	if err != nil {
		return fmt.Errorf("add text on %s: %w", layer, err)
	}
	return nil
}
