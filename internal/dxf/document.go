package dxf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pid-digitizer/backend/internal/models"
)

// Units is the $INSUNITS drawing unit code.
type Units int

const (
	UnitsUnitless    Units = 0
	UnitsInches      Units = 1
	UnitsMillimeters Units = 4
)

const (
	// StandardStyle is the text style every document carries.
	StandardStyle = "Standard"
	// Continuous is the solid linetype every document carries.
	Continuous = "CONTINUOUS"
	// DefaultLayer is the layer every document carries. Block geometry lives here
	// so that inserted blocks take the color of the insert's layer.
	DefaultLayer = "0"
)

// firstHandle is the first object handle assigned during serialization.
const firstHandle = 0x10

var (
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrUnknownBlock   = errors.New("unknown block")
	ErrDuplicateBlock = errors.New("block already defined")
)

// Linetype is a LTYPE table entry. Pattern holds dash (>0), gap (<0) and
// dot (0) lengths in drawing units.
type Linetype struct {
	Name        string
	Description string
	Pattern     []float64
}

func (l *Linetype) patternLength() float64 {
	var total float64
	for _, v := range l.Pattern {
		if v < 0 {
			total -= v
		} else {
			total += v
		}
	}
	return total
}

// Layer is a LAYER table entry.
type Layer struct {
	Name        string
	Color       int
	Linetype    string
	Lineweight  int
	Description string
}

// TextStyle is a STYLE table entry.
type TextStyle struct {
	Name   string
	Font   string
	Height float64
}

// Document is an in-memory DXF drawing.
type Document struct {
	units      Units
	extMin     models.Point
	extMax     models.Point
	linetypes  []*Linetype
	layers     []*Layer
	styles     []*TextStyle
	blocks     []*Block
	blockIndex map[string]*Block
	entities   []Entity
}

// New returns a document with the entries the format requires: the
// CONTINUOUS linetype, layer "0" and the Standard text style.
func New() *Document {
	d := &Document{
		units:      UnitsUnitless,
		blockIndex: make(map[string]*Block),
	}
	d.AddLinetype(Continuous, "Solid line")
	d.SetLayer(DefaultLayer, 7, Continuous)
	d.AddTextStyle(StandardStyle, "txt", 0)
	return d
}

// SetUnits sets the drawing unit system.
func (d *Document) SetUnits(u Units) {
	d.units = u
}

// Units returns the drawing unit system.
func (d *Document) Units() Units {
	return d.units
}

// SetExtents records the drawing extents written to the header.
func (d *Document) SetExtents(min, max models.Point) {
	d.extMin = min
	d.extMax = max
}

// Extents returns the drawing extents.
func (d *Document) Extents() (models.Point, models.Point) {
	return d.extMin, d.extMax
}

// AddLinetype defines a linetype, replacing the pattern of an existing one.
func (d *Document) AddLinetype(name, description string, pattern ...float64) *Linetype {
	if lt, ok := d.Linetype(name); ok {
		lt.Description = description
		lt.Pattern = pattern
		return lt
	}
	lt := &Linetype{Name: name, Description: description, Pattern: pattern}
	d.linetypes = append(d.linetypes, lt)
	return lt
}

// Linetype looks up a linetype by name.
func (d *Document) Linetype(name string) (*Linetype, bool) {
	for _, lt := range d.linetypes {
		if lt.Name == name {
			return lt, true
		}
	}
	return nil, false
}

// Linetypes returns all linetypes in definition order.
func (d *Document) Linetypes() []*Linetype {
	return d.linetypes
}

// SetLayer creates a layer, or updates color and linetype if it already exists.
func (d *Document) SetLayer(name string, color int, linetype string) *Layer {
	if l, ok := d.Layer(name); ok {
		l.Color = color
		l.Linetype = linetype
		return l
	}
	l := &Layer{Name: name, Color: color, Linetype: linetype, Lineweight: LineweightDefault}
	d.layers = append(d.layers, l)
	return l
}

// Layer looks up a layer by name.
func (d *Document) Layer(name string) (*Layer, bool) {
	for _, l := range d.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Layers returns all layers in definition order, including layer "0".
func (d *Document) Layers() []*Layer {
	return d.layers
}

// AddTextStyle defines a text style, replacing the font of an existing one.
func (d *Document) AddTextStyle(name, font string, height float64) *TextStyle {
	for _, s := range d.styles {
		if s.Name == name {
			s.Font = font
			s.Height = height
			return s
		}
	}
	s := &TextStyle{Name: name, Font: font, Height: height}
	d.styles = append(d.styles, s)
	return s
}

// TextStyles returns all text styles in definition order.
func (d *Document) TextStyles() []*TextStyle {
	return d.styles
}

// AddBlock starts a new block definition with its base point at the origin.
func (d *Document) AddBlock(name string) (*Block, error) {
	if _, ok := d.blockIndex[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBlock, name)
	}
	b := &Block{name: name}
	d.blocks = append(d.blocks, b)
	d.blockIndex[name] = b
	return b, nil
}

// Block looks up a block definition by name.
func (d *Document) Block(name string) (*Block, bool) {
	b, ok := d.blockIndex[name]
	return b, ok
}

// Blocks returns all block definitions in definition order.
func (d *Document) Blocks() []*Block {
	return d.blocks
}

// Add places an entity in model space. The entity's layer, and for inserts
// its block, must already be defined.
func (d *Document) Add(e Entity) error {
	if _, ok := d.Layer(e.LayerName()); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, e.LayerName())
	}
	if ins, ok := e.(*Insert); ok {
		if _, ok := d.blockIndex[ins.Block]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBlock, ins.Block)
		}
	}
	d.entities = append(d.entities, e)
	return nil
}

// Entities returns model space entities in placement order.
func (d *Document) Entities() []Entity {
	return d.entities
}

// Save writes the document to path. Errors from the filesystem are returned as is.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo serializes the document.
func (d *Document) WriteTo(out io.Writer) (int64, error) {
	// The header carries $HANDSEED, which is only known once every other
	// object has a handle, so the body is rendered first.
	var body bytes.Buffer
	bw := newWriter(&body, firstHandle)
	d.writeBody(bw)
	if err := bw.flush(); err != nil {
		return 0, err
	}

	hw := newWriter(out, 0)
	d.writeHeader(hw, bw.handles)
	if err := hw.flush(); err != nil {
		return hw.n, err
	}

	n, err := body.WriteTo(out)
	return hw.n + n, err
}

func (d *Document) writeHeader(w *writer, handseed uint64) {
	w.str(0, "SECTION")
	w.str(2, "HEADER")
	w.str(9, "$ACADVER")
	w.str(1, "AC1015")
	w.str(9, "$DWGCODEPAGE")
	w.str(3, "ANSI_1252")
	w.str(9, "$INSBASE")
	w.point(10, models.Point{})
	w.str(9, "$EXTMIN")
	w.point(10, d.extMin)
	w.str(9, "$EXTMAX")
	w.point(10, d.extMax)
	w.str(9, "$LIMMIN")
	w.float(10, d.extMin.X)
	w.float(20, d.extMin.Y)
	w.str(9, "$LIMMAX")
	w.float(10, d.extMax.X)
	w.float(20, d.extMax.Y)
	w.str(9, "$INSUNITS")
	w.int(70, int(d.units))
	w.str(9, "$MEASUREMENT")
	if d.units == UnitsInches {
		w.int(70, 0)
	} else {
		w.int(70, 1)
	}
	w.str(9, "$LUNITS")
	w.int(70, 2)
	w.str(9, "$LWDISPLAY")
	w.int(290, 1)
	w.str(9, "$HANDSEED")
	w.str(5, fmt.Sprintf("%X", handseed))
	w.str(0, "ENDSEC")
}

func (d *Document) writeBody(w *writer) {
	w.str(0, "SECTION")
	w.str(2, "CLASSES")
	w.str(0, "ENDSEC")

	records := d.writeTables(w)
	d.writeBlocks(w, records)

	w.str(0, "SECTION")
	w.str(2, "ENTITIES")
	for _, e := range d.entities {
		e.write(w, records[modelSpace])
	}
	w.str(0, "ENDSEC")

	d.writeObjects(w)
	w.str(0, "EOF")
}
