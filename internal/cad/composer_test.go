package cad

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

func newRequest(size models.PaperSize) *models.ExportRequest {
	req := models.NewExportRequest(models.DefaultExportOptions())
	req.DrawingID = "drawing-1"
	req.Options.PaperSize = size
	return req
}

func onLayer(doc *dxf.Document, layer string) []dxf.Entity {
	var out []dxf.Entity
	for _, e := range doc.Entities() {
		if e.LayerName() == layer {
			out = append(out, e)
		}
	}
	return out
}

func ofType[T dxf.Entity](entities []dxf.Entity) []T {
	var out []T
	for _, e := range entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func textValues(entities []dxf.Entity) []string {
	var out []string
	for _, t := range ofType[*dxf.Text](entities) {
		out = append(out, t.Value)
	}
	return out
}

func export(t *testing.T, req *models.ExportRequest) (*Composer, string) {
	t.Helper()
	c := NewComposer()
	path, err := c.Export(req, filepath.Join(t.TempDir(), req.DrawingID+".dxf"))
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, Saved, c.State())
	return c, path
}

func TestExportSingleEquipmentSymbol(t *testing.T) {
	req := newRequest(models.PaperA1)
	req.Symbols = []models.Symbol{{
		SymbolClass: "Pump_Centrifugal",
		Category:    models.CategoryEquipment,
		TagNumber:   "P-101",
		BBox:        models.BBox{X: 100, Y: 200, Width: 40, Height: 40},
	}}

	c, _ := export(t, req)
	doc := c.Document()

	require.Len(t, doc.Blocks(), 1)
	assert.Equal(t, "PUMP_CENTRIFUGAL", doc.Blocks()[0].Name())

	inserts := ofType[*dxf.Insert](doc.Entities())
	require.Len(t, inserts, 1)
	assert.Equal(t, LayerEquipment, inserts[0].Layer)
	assert.Equal(t, "PUMP_CENTRIFUGAL", inserts[0].Block)
	assert.Equal(t, models.Pt(120, 220), inserts[0].Point)

	tags := ofType[*dxf.Text](onLayer(doc, LayerTextTags))
	require.Len(t, tags, 1)
	assert.Equal(t, "P-101", tags[0].Value)
	assert.Equal(t, models.Pt(120, 195), tags[0].Insert)
	assert.Equal(t, 2.5, tags[0].Height)

	title := onLayer(doc, LayerTitleBlock)
	assert.Len(t, ofType[*dxf.Polyline](title), 1)
	assert.Len(t, ofType[*dxf.Line](title), 5)
	assert.Len(t, ofType[*dxf.Text](title), 12)

	border := ofType[*dxf.Polyline](onLayer(doc, LayerBorder))
	require.Len(t, border, 1)
	assert.True(t, border[0].Closed)
	assert.Equal(t, 70, border[0].Lineweight)
	assert.Equal(t, []models.Point{{X: 10, Y: 10}, {X: 831, Y: 10}, {X: 831, Y: 584}, {X: 10, Y: 584}}, border[0].Points)

	lo, hi := doc.Extents()
	assert.Equal(t, models.Pt(0, 0), lo)
	assert.Equal(t, models.Pt(841, 594), hi)
	assert.Equal(t, dxf.UnitsMillimeters, doc.Units())

	stats := c.Stats()
	assert.Equal(t, 1, stats.Blocks)
	assert.Equal(t, 1, stats.Insertions)
	assert.Equal(t, 1, stats.TagLabels)
	assert.Equal(t, 1, stats.TextEntities)
}

func TestExportProcessLines(t *testing.T) {
	req := newRequest(models.PaperA3)
	req.Lines = []models.Line{
		{Start: models.Pt(0, 0), End: models.Pt(100, 0), PipeClass: "A1", LineNumber: "L-1"},
		{Start: models.Pt(50, 50), End: models.Pt(50, 150), PipeClass: "A1", LineNumber: "L-2"},
	}

	c, _ := export(t, req)
	doc := c.Document()

	assert.Empty(t, doc.Blocks())
	assert.Empty(t, ofType[*dxf.Insert](doc.Entities()))

	lines := ofType[*dxf.Line](onLayer(doc, LayerPipingProcess))
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 50, l.Lineweight)
	}

	labels := ofType[*dxf.Text](onLayer(doc, LayerTextLabels))
	require.Len(t, labels, 2)
	assert.Equal(t, "L-1", labels[0].Value)
	assert.Equal(t, models.Pt(50, 3), labels[0].Insert)
	assert.Equal(t, models.Pt(50, 103), labels[1].Insert)
}

func TestExportWithoutTitleBlockOrAnnotations(t *testing.T) {
	req := newRequest(models.PaperA2)
	req.Options.IncludeTitleBlock = false
	req.Options.IncludeAnnotations = false
	req.Symbols = []models.Symbol{{SymbolClass: "Valve_Gate", Category: models.CategoryValve, BBox: models.BBox{Width: 12, Height: 8}}}
	req.Lines = []models.Line{{Start: models.Pt(0, 0), End: models.Pt(10, 0)}}
	req.Annotations = []models.TextAnnotation{{TextContent: "NOTE 1", BBox: models.BBox{Width: 20, Height: 4}}}

	c, _ := export(t, req)
	doc := c.Document()

	assert.Empty(t, onLayer(doc, LayerTitleBlock))
	assert.Empty(t, onLayer(doc, LayerTextNotes))
	assert.Len(t, onLayer(doc, LayerValves), 1)
	assert.Len(t, onLayer(doc, LayerPipingProcess), 1)
	assert.Len(t, onLayer(doc, LayerBorder), 1)
	assert.Equal(t, 0, c.Stats().Annotations)
}

func TestExportCompletenessAndSoftDelete(t *testing.T) {
	req := newRequest(models.PaperA1)
	req.Symbols = []models.Symbol{
		{SymbolClass: "Valve_Gate", Category: models.CategoryValve, TagNumber: "HV-1"},
		{SymbolClass: "Valve_Gate", Category: models.CategoryValve},
		{SymbolClass: "Flow_Transmitter", Category: models.CategoryInstrument, TagNumber: "FT-1"},
		{SymbolClass: "Reactor", Category: models.CategoryEquipment, TagNumber: "R-1", IsDeleted: true},
	}
	req.Lines = []models.Line{
		{Start: models.Pt(0, 0), End: models.Pt(1, 1), LineSpec: "signal", LineNumber: "S-1"},
		{Start: models.Pt(0, 0), End: models.Pt(1, 1), LineSpec: "steam"},
		{Start: models.Pt(0, 0), End: models.Pt(1, 1), LineNumber: "GONE", IsDeleted: true},
	}
	req.Annotations = []models.TextAnnotation{
		{TextContent: "SEE NOTE", BBox: models.BBox{X: 10, Y: 10, Width: 30, Height: 10}},
		{TextContent: "DELETED", IsDeleted: true},
	}

	c, _ := export(t, req)
	doc := c.Document()

	assert.Len(t, ofType[*dxf.Insert](doc.Entities()), 3)
	assert.Len(t, doc.Blocks(), 2)
	assert.Len(t, onLayer(doc, LayerPipingInstrument), 1)
	assert.Len(t, onLayer(doc, LayerPipingUtility), 1)
	assert.Len(t, onLayer(doc, LayerPipingProcess), 0)

	var content []dxf.Entity
	for _, layer := range []string{LayerTextTags, LayerTextLabels, LayerTextNotes} {
		content = append(content, onLayer(doc, layer)...)
	}
	assert.ElementsMatch(t, []string{"HV-1", "FT-1", "S-1", "SEE NOTE"}, textValues(content))

	for _, v := range textValues(doc.Entities()) {
		assert.NotEqual(t, "R-1", v)
		assert.NotEqual(t, "GONE", v)
		assert.NotEqual(t, "DELETED", v)
	}

	stats := c.Stats()
	assert.Equal(t, 3, stats.Insertions)
	assert.Equal(t, 2, stats.LineEntities)
	assert.Equal(t, 4, stats.TextEntities)
	assert.Equal(t, 3, stats.SkippedDeleted)
}

func TestEveryEntityUsesRegistryLayer(t *testing.T) {
	req := newRequest(models.PaperA0)
	for _, e := range Catalog() {
		req.Symbols = append(req.Symbols, models.Symbol{SymbolClass: e.Class, Category: e.Category, TagNumber: e.Class})
	}
	req.Symbols = append(req.Symbols, models.Symbol{SymbolClass: "Unheard Of", Category: "other"})
	req.Lines = []models.Line{{LineSpec: "utility", LineNumber: "U-1"}}
	req.Annotations = []models.TextAnnotation{{TextContent: "x"}}

	c, _ := export(t, req)
	for _, e := range c.Document().Entities() {
		assert.True(t, IsRegistryLayer(e.LayerName()), "%s on %s", e.Type(), e.LayerName())
	}
	assert.Equal(t, []string{"UNHEARD_OF"}, c.Stats().FallbackClasses)
	assert.Equal(t, len(Catalog())+1, c.Stats().Blocks)
}

func TestExportUnknownClassSucceeds(t *testing.T) {
	req := newRequest(models.PaperA4)
	req.Symbols = []models.Symbol{{SymbolClass: "never seen before", Category: models.CategoryOther}}

	c, _ := export(t, req)
	inserts := ofType[*dxf.Insert](c.Document().Entities())
	require.Len(t, inserts, 1)
	assert.Equal(t, "NEVER_SEEN_BEFORE", inserts[0].Block)
	assert.Equal(t, LayerEquipment, inserts[0].Layer)
}

func TestExportRejectsUnknownPaperSizeWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	req := newRequest("B5")
	req.Symbols = []models.Symbol{{SymbolClass: "Reactor"}}

	c := NewComposer()
	path, err := c.Export(req, filepath.Join(dir, "out.dxf"))
	require.Error(t, err)
	assert.Empty(t, path)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "B5", cfgErr.Value)
	assert.Equal(t, Uninitialized, c.State())
	assert.Nil(t, c.Document())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitializeRejectsOtherFormats(t *testing.T) {
	opts := models.DefaultExportOptions()
	opts.Format = "pdf"
	err := NewComposer().Initialize(opts)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "format", cfgErr.Field)
}

func TestInitializeSetsUpDocument(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Initialize(models.DefaultExportOptions()))
	doc := c.Document()

	assert.Equal(t, dxf.UnitsMillimeters, doc.Units())
	lt, ok := doc.Linetype(LinetypeInstrument)
	require.True(t, ok)
	assert.Equal(t, []float64{2, -1}, lt.Pattern)
	_, ok = doc.Linetype(LinetypeDashed)
	assert.True(t, ok)

	var styles []string
	for _, s := range doc.TextStyles() {
		styles = append(styles, s.Name)
	}
	assert.Equal(t, []string{dxf.StandardStyle, StyleISOCP}, styles)
}

func TestCreateLayersIsIdempotent(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Initialize(models.DefaultExportOptions()))
	c.Document().SetLayer(LayerValves, 200, dxf.Continuous)

	require.NoError(t, c.CreateLayers())
	require.NoError(t, c.CreateLayers())

	layers := c.Document().Layers()
	assert.Len(t, layers, 12)
	l, ok := c.Document().Layer(LayerValves)
	require.True(t, ok)
	assert.Equal(t, 3, l.Color)
	l, _ = c.Document().Layer(LayerPipingProcess)
	assert.Equal(t, 50, l.Lineweight)
}

func TestComposerRejectsOutOfOrderCalls(t *testing.T) {
	opts := models.DefaultExportOptions()

	tests := []struct {
		name  string
		setup []func(*Composer) error
		call  func(*Composer) error
	}{
		{
			name: "save before anything",
			call: func(c *Composer) error { return c.Save(filepath.Join(t.TempDir(), "x.dxf")) },
		},
		{
			name: "layers before initialize",
			call: (*Composer).CreateLayers,
		},
		{
			name:  "symbols before layers",
			setup: []func(*Composer) error{func(c *Composer) error { return c.Initialize(opts) }},
			call:  func(c *Composer) error { return c.PlaceSymbols(nil) },
		},
		{
			name:  "initialize twice",
			setup: []func(*Composer) error{func(c *Composer) error { return c.Initialize(opts) }},
			call:  func(c *Composer) error { return c.Initialize(opts) },
		},
		{
			name: "save before finalize",
			setup: []func(*Composer) error{
				func(c *Composer) error { return c.Initialize(opts) },
				(*Composer).CreateLayers,
			},
			call: func(c *Composer) error { return c.Save(filepath.Join(t.TempDir(), "x.dxf")) },
		},
		{
			name: "content after finalize",
			setup: []func(*Composer) error{
				func(c *Composer) error { return c.Initialize(opts) },
				(*Composer).CreateLayers,
				(*Composer).Finalize,
			},
			call: func(c *Composer) error { return c.DrawLines(nil) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer()
			for _, step := range tt.setup {
				require.NoError(t, step(c))
			}
			before := c.State()
			err := tt.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidState))
			var stateErr *StateError
			require.True(t, errors.As(err, &stateErr))
			assert.Equal(t, before, stateErr.State)
			assert.Equal(t, before, c.State())
		})
	}
}

func TestFinalizeAddsMissingBorderOnce(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Initialize(models.DefaultExportOptions()))
	require.NoError(t, c.CreateLayers())
	require.NoError(t, c.AddBorder())
	require.NoError(t, c.AddBorder())
	require.NoError(t, c.Finalize())
	assert.Len(t, onLayer(c.Document(), LayerBorder), 1)

	c = NewComposer()
	require.NoError(t, c.Initialize(models.DefaultExportOptions()))
	require.NoError(t, c.CreateLayers())
	require.NoError(t, c.Finalize())
	assert.Len(t, onLayer(c.Document(), LayerBorder), 1)
}

func TestSavePropagatesFilesystemError(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Initialize(models.DefaultExportOptions()))
	require.NoError(t, c.CreateLayers())
	require.NoError(t, c.Finalize())

	err := c.Save(filepath.Join(t.TempDir(), "missing", "out.dxf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.Equal(t, Finalized, c.State())
}

func TestNoteHeight(t *testing.T) {
	tests := []struct {
		box, want float64
	}{
		{0, 1.5},
		{1, 1.5},
		{2.5, 2},
		{5, 4},
		{6.25, 5},
		{40, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, noteHeight(tt.box), 1e-9, "box height %v", tt.box)
	}
}

func TestAnnotationPlacement(t *testing.T) {
	req := newRequest(models.PaperA1)
	req.Annotations = []models.TextAnnotation{
		{TextContent: "VENT TO ATM", BBox: models.BBox{X: 10, Y: 20, Width: 40, Height: 5}, Rotation: 90},
	}
	c, _ := export(t, req)

	notes := ofType[*dxf.Text](onLayer(c.Document(), LayerTextNotes))
	require.Len(t, notes, 1)
	assert.Equal(t, models.Pt(30, 22.5), notes[0].Insert)
	assert.Equal(t, 90.0, notes[0].Rotation)
	assert.InDelta(t, 4.0, notes[0].Height, 1e-9)
	assert.Equal(t, dxf.HAlignCenter, notes[0].HAlign)
	assert.Equal(t, dxf.VAlignMiddle, notes[0].VAlign)
}
