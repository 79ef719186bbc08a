package models

import "time"

// PaperSize names an ISO A-series sheet.
type PaperSize string

const (
	PaperA0 PaperSize = "A0"
	PaperA1 PaperSize = "A1"
	PaperA2 PaperSize = "A2"
	PaperA3 PaperSize = "A3"
	PaperA4 PaperSize = "A4"
)

// FormatDXF is the only export format produced by the CAD engine.
const FormatDXF = "dxf"

// ExportOptions controls a single CAD export.
type ExportOptions struct {
	Format    string    `json:"format" yaml:"format"`
	PaperSize PaperSize `json:"paperSize" yaml:"paper_size"`
	Scale     string    `json:"scale" yaml:"scale"`
	// IncludeConnections is accepted for interface compatibility and not consulted.
	IncludeConnections bool `json:"includeConnections" yaml:"include_connections"`
	IncludeAnnotations bool `json:"includeAnnotations" yaml:"include_annotations"`
	IncludeTitleBlock  bool `json:"includeTitleBlock" yaml:"include_title_block"`
}

// DefaultExportOptions returns the options used when a request leaves them unset.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:             FormatDXF,
		PaperSize:          PaperA1,
		Scale:              "NTS",
		IncludeAnnotations: true,
		IncludeTitleBlock:  true,
	}
}

// TitleBlockInfo holds the values substituted into the title block template.
type TitleBlockInfo struct {
	DrawingNumber string `json:"drawingNumber" yaml:"drawing_number"`
	DrawingTitle  string `json:"drawingTitle" yaml:"drawing_title"`
	ProjectName   string `json:"projectName" yaml:"project_name"`
	Revision      string `json:"revision" yaml:"revision"`
	Date          string `json:"date" yaml:"date"`
	PreparedBy    string `json:"preparedBy,omitempty" yaml:"prepared_by,omitempty"`
	CheckedBy     string `json:"checkedBy,omitempty" yaml:"checked_by,omitempty"`
	ApprovedBy    string `json:"approvedBy,omitempty" yaml:"approved_by,omitempty"`
}

// ExportRequest is everything needed to export one drawing.
type ExportRequest struct {
	DrawingID   string           `json:"drawingId" yaml:"drawing_id"`
	DrawingName string           `json:"drawingName,omitempty" yaml:"drawing_name,omitempty"`
	Symbols     []Symbol         `json:"symbols" yaml:"symbols"`
	Lines       []Line           `json:"lines" yaml:"lines"`
	Annotations []TextAnnotation `json:"annotations" yaml:"annotations"`
	Options     ExportOptions    `json:"options" yaml:"options"`
	TitleBlock  TitleBlockInfo   `json:"titleBlock" yaml:"title_block"`
}

// NewExportRequest returns a request pre-filled with the given default options.
func NewExportRequest(defaults ExportOptions) *ExportRequest {
	return &ExportRequest{
		Options: defaults,
	}
}

// ExportStats counts what an export placed into the document.
type ExportStats struct {
	Blocks          int      `json:"blocks"`
	Insertions      int      `json:"insertions"`
	LineEntities    int      `json:"lineEntities"`
	TextEntities    int      `json:"textEntities"`
	Annotations     int      `json:"annotations"`
	TagLabels       int      `json:"tagLabels"`
	LineLabels      int      `json:"lineLabels"`
	SkippedDeleted  int      `json:"skippedDeleted"`
	BlockNames      []string `json:"blockNames,omitempty"`
	FallbackClasses []string `json:"fallbackClasses,omitempty"`
}

// ExportRecord describes a finished export.
type ExportRecord struct {
	ID         string      `json:"id"`
	DrawingID  string      `json:"drawingId"`
	PaperSize  PaperSize   `json:"paperSize"`
	FileID     string      `json:"fileId"`
	Bytes      int64       `json:"bytes"`
	DurationMs int64       `json:"durationMs"`
	Stats      ExportStats `json:"stats"`
	CreatedAt  time.Time   `json:"createdAt"`
}
