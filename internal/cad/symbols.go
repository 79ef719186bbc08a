package cad

import (
	"strings"

	"github.com/labstack/gommon/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
)

// SymbolClass is the closed set of symbol shapes the library can draw.
type SymbolClass int

const (
	Unknown SymbolClass = iota

	// Equipment
	VesselVertical
	VesselHorizontal
	TankStorage
	TankOpen
	ColumnDistillation
	HeatExchangerShellTube
	HeatExchangerPlate
	HeatExchangerAirCooled
	HeatExchanger
	PumpCentrifugal
	PumpReciprocating
	PumpGear
	CompressorCentrifugal
	CompressorReciprocating
	Blower
	Filter
	Reactor
	Furnace
	Agitator

	// Instruments
	FlowTransmitter
	PressureTransmitter
	TemperatureTransmitter
	LevelTransmitter
	FlowIndicator
	PressureIndicator
	TemperatureIndicator
	LevelIndicator
	PanelInstrument
	Controller
	Alarm
	Switch
	OrificePlate
	Thermowell
	SamplePoint
	ReliefInstrument

	// Valves
	ValveGate
	ValveGlobe
	ValveBall
	ValvePlug
	ValveNeedle
	ValveManual
	ValveButterfly
	ValveThreeWay
	ValveDiaphragm
	ValveCheck
	ValveRelief
	ValveSafety
	ControlValvePneumatic
	ControlValveElectric
	ControlValveHydraulic

	numSymbolClasses
)

type symbolSpec struct {
	name     string
	category models.SymbolCategory
	draw     func(Canvas)
}

// symbolTable is indexed by SymbolClass.
var symbolTable = [numSymbolClasses]symbolSpec{
	Unknown: {"GENERIC", models.CategoryOther, drawGeneric},

	VesselVertical:          {"VESSEL_VERTICAL", models.CategoryEquipment, drawVesselVertical},
	VesselHorizontal:        {"VESSEL_HORIZONTAL", models.CategoryEquipment, drawVesselHorizontal},
	TankStorage:             {"TANK_STORAGE", models.CategoryEquipment, drawTankStorage},
	TankOpen:                {"TANK_OPEN", models.CategoryEquipment, drawTankOpen},
	ColumnDistillation:      {"COLUMN_DISTILLATION", models.CategoryEquipment, drawColumn},
	HeatExchangerShellTube:  {"HEAT_EXCHANGER_SHELL_TUBE", models.CategoryEquipment, drawShellTube},
	HeatExchangerPlate:      {"HEAT_EXCHANGER_PLATE", models.CategoryEquipment, drawPlateExchanger},
	HeatExchangerAirCooled:  {"HEAT_EXCHANGER_AIR_COOLED", models.CategoryEquipment, drawAirCooler},
	HeatExchanger:           {"HEAT_EXCHANGER", models.CategoryEquipment, drawHeatExchanger},
	PumpCentrifugal:         {"PUMP_CENTRIFUGAL", models.CategoryEquipment, drawPumpCentrifugal},
	PumpReciprocating:       {"PUMP_RECIPROCATING", models.CategoryEquipment, drawPumpReciprocating},
	PumpGear:                {"PUMP_GEAR", models.CategoryEquipment, drawPumpGear},
	CompressorCentrifugal:   {"COMPRESSOR_CENTRIFUGAL", models.CategoryEquipment, drawCompressorCentrifugal},
	CompressorReciprocating: {"COMPRESSOR_RECIPROCATING", models.CategoryEquipment, drawCompressorReciprocating},
	Blower:                  {"BLOWER", models.CategoryEquipment, drawBlower},
	Filter:                  {"FILTER", models.CategoryEquipment, drawFilter},
	Reactor:                 {"REACTOR", models.CategoryEquipment, drawReactor},
	Furnace:                 {"FURNACE", models.CategoryEquipment, drawFurnace},
	Agitator:                {"AGITATOR", models.CategoryEquipment, drawAgitator},

	FlowTransmitter:        {"FLOW_TRANSMITTER", models.CategoryInstrument, drawFieldInstrument},
	PressureTransmitter:    {"PRESSURE_TRANSMITTER", models.CategoryInstrument, drawFieldInstrument},
	TemperatureTransmitter: {"TEMPERATURE_TRANSMITTER", models.CategoryInstrument, drawFieldInstrument},
	LevelTransmitter:       {"LEVEL_TRANSMITTER", models.CategoryInstrument, drawFieldInstrument},
	FlowIndicator:          {"FLOW_INDICATOR", models.CategoryInstrument, drawFieldInstrument},
	PressureIndicator:      {"PRESSURE_INDICATOR", models.CategoryInstrument, drawFieldInstrument},
	TemperatureIndicator:   {"TEMPERATURE_INDICATOR", models.CategoryInstrument, drawFieldInstrument},
	LevelIndicator:         {"LEVEL_INDICATOR", models.CategoryInstrument, drawFieldInstrument},
	PanelInstrument:        {"INSTRUMENT_PANEL", models.CategoryInstrument, drawPanelInstrument},
	Controller:             {"CONTROLLER", models.CategoryInstrument, drawController},
	Alarm:                  {"ALARM", models.CategoryInstrument, drawAlarm},
	Switch:                 {"SWITCH", models.CategoryInstrument, drawSwitch},
	OrificePlate:           {"ORIFICE_PLATE", models.CategoryInstrument, drawOrificePlate},
	Thermowell:             {"THERMOWELL", models.CategoryInstrument, drawThermowell},
	SamplePoint:            {"SAMPLE_POINT", models.CategoryInstrument, drawSamplePoint},
	ReliefInstrument:       {"RELIEF_INSTRUMENT", models.CategoryInstrument, drawReliefInstrument},

	ValveGate:             {"VALVE_GATE", models.CategoryValve, drawValveGate},
	ValveGlobe:            {"VALVE_GLOBE", models.CategoryValve, drawValveGlobe},
	ValveBall:             {"VALVE_BALL", models.CategoryValve, drawValveBall},
	ValvePlug:             {"VALVE_PLUG", models.CategoryValve, drawValvePlug},
	ValveNeedle:           {"VALVE_NEEDLE", models.CategoryValve, drawValveNeedle},
	ValveManual:           {"VALVE_MANUAL", models.CategoryValve, drawValveManual},
	ValveButterfly:        {"VALVE_BUTTERFLY", models.CategoryValve, drawValveButterfly},
	ValveThreeWay:         {"VALVE_THREE_WAY", models.CategoryValve, drawValveThreeWay},
	ValveDiaphragm:        {"VALVE_DIAPHRAGM", models.CategoryValve, drawValveDiaphragm},
	ValveCheck:            {"VALVE_CHECK", models.CategoryValve, drawValveCheck},
	ValveRelief:           {"VALVE_RELIEF", models.CategoryValve, drawValveRelief},
	ValveSafety:           {"VALVE_SAFETY", models.CategoryValve, drawValveRelief},
	ControlValvePneumatic: {"CONTROL_VALVE_PNEUMATIC", models.CategoryValve, drawControlValvePneumatic},
	ControlValveElectric:  {"CONTROL_VALVE_ELECTRIC", models.CategoryValve, drawControlValveElectric},
	ControlValveHydraulic: {"CONTROL_VALVE_HYDRAULIC", models.CategoryValve, drawControlValveHydraulic},
}

var classByName = func() map[string]SymbolClass {
	m := make(map[string]SymbolClass, numSymbolClasses)
	for c := VesselVertical; c < numSymbolClasses; c++ {
		m[symbolTable[c].name] = c
	}
	return m
}()

// String returns the canonical name of the class.
func (c SymbolClass) String() string {
	if c < 0 || c >= numSymbolClasses {
		return symbolTable[Unknown].name
	}
	return symbolTable[c].name
}

// Category returns the category the class belongs to.
func (c SymbolClass) Category() models.SymbolCategory {
	if c < 0 || c >= numSymbolClasses {
		return models.CategoryOther
	}
	return symbolTable[c].category
}

// Draw emits the class geometry centered on the origin.
func (c SymbolClass) Draw(canvas Canvas) {
	if c <= Unknown || c >= numSymbolClasses {
		drawGeneric(canvas)
		return
	}
	symbolTable[c].draw(canvas)
}

// ParseSymbolClass resolves a symbol class string. Anything not in the
// catalog is Unknown.
func ParseSymbolClass(s string) SymbolClass {
	if c, ok := classByName[CanonicalName(s)]; ok {
		return c
	}
	return Unknown
}

// CanonicalName turns a symbol class into a block name: upper case, spaces
// replaced by underscores. Characters not allowed in block names become
// underscores too, and an empty class is "UNKNOWN".
func CanonicalName(symbolClass string) string {
	s := strings.TrimSpace(symbolClass)
	if s == "" {
		return "UNKNOWN"
	}
	s = cases.Upper(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '<', '>', '/', '\\', '"', ':', ';', '?', '*', '|', '=', '`', ',':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, s)
}

// CatalogEntry describes one drawable symbol class.
type CatalogEntry struct {
	Class    string                `json:"class"`
	Category models.SymbolCategory `json:"category"`
	Layer    string                `json:"layer"`
}

// Catalog lists the known symbol classes in enumeration order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, numSymbolClasses-1)
	for c := VesselVertical; c < numSymbolClasses; c++ {
		out = append(out, CatalogEntry{
			Class:    c.String(),
			Category: c.Category(),
			Layer:    LayerForSymbol(c.Category()),
		})
	}
	return out
}

// Library creates one block definition per symbol class and remembers the
// names it has handed out. A Library belongs to a single document.
type Library struct {
	sink      BlockSink
	names     map[string]string
	order     []string
	fallbacks []string
	log       *log.Logger
}

// NewLibrary returns an empty library that defines blocks in sink.
func NewLibrary(sink BlockSink) *Library {
	return &Library{
		sink:  sink,
		names: make(map[string]string),
		log:   logging.New("symbols"),
	}
}

// GetOrCreate returns the block name for symbolClass, defining the block on
// first use. Classes outside the catalog get the generic shape. It never fails.
func (l *Library) GetOrCreate(symbolClass string) string {
	name := CanonicalName(symbolClass)
	if cached, ok := l.names[name]; ok {
		return cached
	}

	class := ParseSymbolClass(symbolClass)
	known := class != Unknown
	canvas, err := l.sink.DefineBlock(name)
	if err != nil {
		// The block already exists in the document; reuse it as is.
		l.log.Warnf("block %s not redefined: %v", name, err)
	} else {
		class.Draw(canvas)
	}
	if !known {
		l.fallbacks = append(l.fallbacks, name)
		l.log.Debugj(log.JSON{"event": "symbol_fallback", "class": symbolClass, "block": name})
	}

	l.names[name] = name
	l.order = append(l.order, name)
	return name
}

// Blocks returns the block names created so far, in creation order.
func (l *Library) Blocks() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Fallbacks returns the block names that were drawn with the generic shape.
func (l *Library) Fallbacks() []string {
	out := make([]string, len(l.fallbacks))
	copy(out, l.fallbacks)
	return out
}

// Len returns the number of blocks created.
func (l *Library) Len() int {
	return len(l.order)
}
