package cad

import (
	"strings"

	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

// Layer names.
const (
	LayerEquipment        = "EQUIPMENT"
	LayerInstruments      = "INSTRUMENTS"
	LayerValves           = "VALVES"
	LayerPipingProcess    = "PIPING-PROCESS"
	LayerPipingUtility    = "PIPING-UTILITY"
	LayerPipingInstrument = "PIPING-INSTRUMENT"
	LayerTextTags         = "TEXT-TAGS"
	LayerTextLabels       = "TEXT-LABELS"
	LayerTextNotes        = "TEXT-NOTES"
	LayerTitleBlock       = "TITLE-BLOCK"
	LayerBorder           = "BORDER"
)

// Linetype names registered by the composer.
const (
	LinetypeContinuous = dxf.Continuous
	LinetypeDashed     = "DASHED"
	LinetypeInstrument = "INSTR_DASH"
)

// LayerSpec is one entry of the layer registry.
type LayerSpec struct {
	Name        string `json:"name"`
	Color       int    `json:"color"` // ACI
	Linetype    string `json:"linetype"`
	Description string `json:"description"`
}

var layerRegistry = []LayerSpec{
	{LayerEquipment, 7, LinetypeContinuous, "Process equipment"},
	{LayerInstruments, 1, LinetypeContinuous, "Instrument bubbles and elements"},
	{LayerValves, 3, LinetypeContinuous, "Valves and actuators"},
	{LayerPipingProcess, 7, LinetypeContinuous, "Process piping"},
	{LayerPipingUtility, 4, LinetypeContinuous, "Utility piping"},
	{LayerPipingInstrument, 1, LinetypeInstrument, "Instrument signal lines"},
	{LayerTextTags, 2, LinetypeContinuous, "Equipment and instrument tags"},
	{LayerTextLabels, 6, LinetypeContinuous, "Line numbers"},
	{LayerTextNotes, 8, LinetypeContinuous, "Free text annotations"},
	{LayerTitleBlock, 7, LinetypeContinuous, "Title block"},
	{LayerBorder, 7, LinetypeContinuous, "Drawing border"},
}

// Layers returns the registry in table order.
func Layers() []LayerSpec {
	out := make([]LayerSpec, len(layerRegistry))
	copy(out, layerRegistry)
	return out
}

// IsRegistryLayer reports whether name is one of the registry layers.
func IsRegistryLayer(name string) bool {
	for _, l := range layerRegistry {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LayerForSymbol maps a symbol category to its layer. Unknown categories go to EQUIPMENT.
func LayerForSymbol(category models.SymbolCategory) string {
	switch category {
	case models.CategoryInstrument:
		return LayerInstruments
	case models.CategoryValve:
		return LayerValves
	default:
		return LayerEquipment
	}
}

// lineRules is checked in order; the first rule with a matching keyword wins.
var lineRules = []struct {
	keywords []string
	layer    string
}{
	{[]string{"instrument", "signal"}, LayerPipingInstrument},
	{[]string{"utility", "steam", "air"}, LayerPipingUtility},
}

// LayerForLine maps a line spec to its piping layer. An empty spec is process piping.
func LayerForLine(spec string) string {
	if spec == "" {
		return LayerPipingProcess
	}
	s := strings.ToLower(spec)
	for _, rule := range lineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.layer
			}
		}
	}
	return LayerPipingProcess
}

// LineWeight returns the pen weight in millimeters for a layer.
func LineWeight(layer string) float64 {
	switch layer {
	case LayerPipingProcess:
		return 0.50
	case LayerPipingUtility:
		return 0.35
	case LayerPipingInstrument:
		return 0.25
	case LayerBorder:
		return 0.70
	default:
		return 0.25
	}
}
