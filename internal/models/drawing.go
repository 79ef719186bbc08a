// Package models contains domain types for the P&ID export service.
package models

// SymbolCategory classifies a detected symbol.
type SymbolCategory string

const (
	CategoryEquipment  SymbolCategory = "equipment"
	CategoryInstrument SymbolCategory = "instrument"
	CategoryValve      SymbolCategory = "valve"
	CategoryOther      SymbolCategory = "other"
)

// Symbol is a detected engineering symbol on a drawing.
type Symbol struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	SymbolClass string         `json:"symbolClass" yaml:"symbol_class"`
	Category    SymbolCategory `json:"category" yaml:"category"`
	TagNumber   string         `json:"tagNumber,omitempty" yaml:"tag_number,omitempty"`
	BBox        BBox           `json:"bbox" yaml:"bbox"`
	IsDeleted   bool           `json:"isDeleted,omitempty" yaml:"is_deleted,omitempty"`
}

// Line is a pipe or signal line between two points.
type Line struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Start      Point  `json:"start" yaml:"start"`
	End        Point  `json:"end" yaml:"end"`
	LineNumber string `json:"lineNumber,omitempty" yaml:"line_number,omitempty"`
	LineSpec   string `json:"lineSpec,omitempty" yaml:"line_spec,omitempty"`
	PipeClass  string `json:"pipeClass,omitempty" yaml:"pipe_class,omitempty"`
	IsDeleted  bool   `json:"isDeleted,omitempty" yaml:"is_deleted,omitempty"`
}

// TextAnnotation is free text recognized on a drawing.
type TextAnnotation struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	TextContent string  `json:"textContent" yaml:"text_content"`
	BBox        BBox    `json:"bbox" yaml:"bbox"`
	Rotation    float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"` // degrees
	IsDeleted   bool    `json:"isDeleted,omitempty" yaml:"is_deleted,omitempty"`
}
