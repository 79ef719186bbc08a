package cad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pump_Centrifugal", "PUMP_CENTRIFUGAL"},
		{"pump centrifugal", "PUMP_CENTRIFUGAL"},
		{"  valve gate  ", "VALVE_GATE"},
		{"", "UNKNOWN"},
		{"   ", "UNKNOWN"},
		{"a/b:c", "A_B_C"},
		{"*model", "_MODEL"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestParseSymbolClass(t *testing.T) {
	assert.Equal(t, PumpCentrifugal, ParseSymbolClass("Pump_Centrifugal"))
	assert.Equal(t, ValveGlobe, ParseSymbolClass("valve globe"))
	assert.Equal(t, PanelInstrument, ParseSymbolClass("INSTRUMENT_PANEL"))
	assert.Equal(t, Unknown, ParseSymbolClass("flux capacitor"))
	assert.Equal(t, Unknown, ParseSymbolClass(""))
	assert.Equal(t, "GENERIC", Unknown.String())
	assert.Equal(t, models.CategoryOther, Unknown.Category())
}

func TestCatalog(t *testing.T) {
	entries := Catalog()
	require.Len(t, entries, int(numSymbolClasses)-1)

	seen := make(map[string]bool)
	perCategory := make(map[models.SymbolCategory]int)
	for _, e := range entries {
		assert.False(t, seen[e.Class], "duplicate class %s", e.Class)
		seen[e.Class] = true
		perCategory[e.Category]++
		assert.Equal(t, LayerForSymbol(e.Category), e.Layer)
		assert.Equal(t, e.Class, CanonicalName(e.Class), "catalog names are canonical")
	}
	assert.Equal(t, 19, perCategory[models.CategoryEquipment])
	assert.Equal(t, 16, perCategory[models.CategoryInstrument])
	assert.Equal(t, 15, perCategory[models.CategoryValve])
}

func TestEverySymbolClassDrawsCenteredGeometry(t *testing.T) {
	limits := map[models.SymbolCategory]float64{
		models.CategoryEquipment:  32,
		models.CategoryInstrument: 8,
		models.CategoryValve:      13,
		models.CategoryOther:      11,
	}
	for c := Unknown; c < numSymbolClasses; c++ {
		t.Run(c.String(), func(t *testing.T) {
			r := &recorder{}
			c.Draw(r)
			require.NotEmpty(t, r.prims)
			assert.LessOrEqual(t, r.extent(), limits[c.Category()])
		})
	}
}

func TestGenericShape(t *testing.T) {
	r := &recorder{}
	Unknown.Draw(r)
	assert.Equal(t, 1, r.count("polygon"))
	assert.Equal(t, 2, r.count("line"))
	assert.Equal(t, 10.0, r.extent())
}

func TestFieldInstrumentsShareBubble(t *testing.T) {
	classes := []SymbolClass{
		FlowTransmitter, PressureTransmitter, TemperatureTransmitter, LevelTransmitter,
		FlowIndicator, PressureIndicator, TemperatureIndicator, LevelIndicator,
	}
	for _, class := range classes {
		t.Run(class.String(), func(t *testing.T) {
			r := &recorder{}
			class.Draw(r)
			require.Len(t, r.prims, 1)
			assert.Equal(t, "circle", r.prims[0].kind)
			assert.Equal(t, instrumentRadius, r.prims[0].radius)
			assert.Equal(t, models.Point{}, r.prims[0].points[0])
		})
	}
}

func TestLibraryResolvesClassSpellings(t *testing.T) {
	sink := newRecordingSink()
	lib := NewLibrary(sink)

	name := lib.GetOrCreate("  instrument panel ")
	assert.Equal(t, "INSTRUMENT_PANEL", name)
	assert.Empty(t, lib.Fallbacks())
	assert.Equal(t, 1, sink.blocks[name].count("circle"))
	assert.Equal(t, 1, sink.blocks[name].count("line"))
}

func TestVesselVerticalIsCapsule(t *testing.T) {
	r := &recorder{}
	VesselVertical.Draw(r)
	assert.Equal(t, 2, r.count("line"))
	assert.Equal(t, 2, r.count("arc"))
	assert.Equal(t, 20.0, r.extent())
}

func TestLibraryGetOrCreateIsIdempotent(t *testing.T) {
	sink := newRecordingSink()
	lib := NewLibrary(sink)

	first := lib.GetOrCreate("Pump_Centrifugal")
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, lib.GetOrCreate("Pump_Centrifugal"))
	}
	assert.Equal(t, first, lib.GetOrCreate("pump centrifugal"))

	assert.Equal(t, "PUMP_CENTRIFUGAL", first)
	assert.Equal(t, []string{"PUMP_CENTRIFUGAL"}, sink.order)
	assert.Equal(t, 1, lib.Len())
	assert.Empty(t, lib.Fallbacks())
}

func TestLibraryUnknownClassFallsBack(t *testing.T) {
	sink := newRecordingSink()
	lib := NewLibrary(sink)

	name := lib.GetOrCreate("Mystery Box")
	assert.Equal(t, "MYSTERY_BOX", name)
	assert.Equal(t, []string{"MYSTERY_BOX"}, lib.Fallbacks())

	r := sink.blocks[name]
	require.NotNil(t, r)
	assert.Equal(t, 1, r.count("polygon"))
	assert.Equal(t, 2, r.count("line"))

	lib.GetOrCreate("mystery box")
	assert.Len(t, lib.Fallbacks(), 1)
}

func TestLibraryBlocksInCreationOrder(t *testing.T) {
	lib := NewLibrary(newRecordingSink())
	for _, class := range []string{"Valve_Gate", "Reactor", "Valve_Gate", "Alarm", "Reactor"} {
		lib.GetOrCreate(class)
	}
	assert.Equal(t, []string{"VALVE_GATE", "REACTOR", "ALARM"}, lib.Blocks())
}

func TestLibraryReusesBlockAlreadyInDocument(t *testing.T) {
	doc := dxf.New()
	_, err := doc.AddBlock("VALVE_GATE")
	require.NoError(t, err)

	lib := NewLibrary(DocumentSink{Doc: doc})
	assert.Equal(t, "VALVE_GATE", lib.GetOrCreate("Valve_Gate"))
	assert.Len(t, doc.Blocks(), 1)
	assert.Empty(t, lib.Fallbacks())
}

func TestDocumentSinkDrawsIntoBlock(t *testing.T) {
	doc := dxf.New()
	lib := NewLibrary(DocumentSink{Doc: doc})
	name := lib.GetOrCreate("Valve_Globe")

	b, ok := doc.Block(name)
	require.True(t, ok)
	// Two body triangles and the globe mark.
	require.Len(t, b.Entities(), 3)
	for _, e := range b.Entities() {
		assert.Equal(t, dxf.DefaultLayer, e.LayerName())
	}
}
