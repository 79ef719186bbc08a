package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pid-digitizer/backend/internal/models"
)

const jsonRequest = `{
  "drawingId": "dwg-7",
  "symbols": [
    {"symbolClass": "Pump_Centrifugal", "category": "equipment", "tagNumber": "P-101",
     "bbox": {"x": 100, "y": 200, "width": 40, "height": 40}}
  ],
  "lines": [
    {"start": {"x": 0, "y": 0}, "end": {"x": 10, "y": 0}, "lineSpec": "signal", "isDeleted": true}
  ],
  "options": {"paperSize": "A3"},
  "titleBlock": {"drawingNumber": "PID-7"}
}`

const yamlRequest = `
drawing_id: dwg-8
symbols:
  - symbol_class: Valve_Gate
    category: valve
    bbox: {x: 1, y: 2, width: 12, height: 8}
annotations:
  - text_content: NOTE 1
    rotation: 90
    bbox: {x: 0, y: 0, width: 20, height: 4}
options:
  paper_size: A2
  include_title_block: false
`

func TestFindDecoder(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"", "application/json", "json"},
		{"", "application/json; charset=UTF-8", "json"},
		{"drawing.JSON", "", "json"},
		{"drawing.yml", "", "yaml"},
		{"", "application/x-yaml", "yaml"},
		{"req.msgpack", "", "msgpack"},
		{"", "application/msgpack", "msgpack"},
	}
	for _, tt := range tests {
		d, err := r.FindDecoder(tt.filename, tt.contentType)
		require.NoError(t, err, "%s %s", tt.filename, tt.contentType)
		assert.Equal(t, tt.want, d.Name())
	}

	_, err := r.FindDecoder("drawing.dwg", "application/octet-stream")
	assert.Error(t, err)
}

func TestGetDecoderByName(t *testing.T) {
	r := NewRegistry()
	d, err := r.GetDecoderByName("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", d.Name())

	_, err = r.GetDecoderByName("xml")
	assert.Error(t, err)
	assert.Equal(t, []string{"json", "yaml", "msgpack"}, r.Names())
}

func TestDecodeJSONKeepsDefaults(t *testing.T) {
	req, err := NewRegistry().DecodeRequest(strings.NewReader(jsonRequest), "", "application/json", models.DefaultExportOptions())
	require.NoError(t, err)

	assert.Equal(t, "dwg-7", req.DrawingID)
	require.Len(t, req.Symbols, 1)
	assert.Equal(t, "P-101", req.Symbols[0].TagNumber)
	assert.Equal(t, 40.0, req.Symbols[0].BBox.Height)
	require.Len(t, req.Lines, 1)
	assert.True(t, req.Lines[0].IsDeleted)

	assert.Equal(t, models.PaperA3, req.Options.PaperSize)
	assert.Equal(t, "NTS", req.Options.Scale)
	assert.True(t, req.Options.IncludeTitleBlock)
	assert.Equal(t, "PID-7", req.TitleBlock.DrawingNumber)
}

func TestDecodeYAML(t *testing.T) {
	req, err := NewRegistry().DecodeRequest(strings.NewReader(yamlRequest), "req.yaml", "", models.DefaultExportOptions())
	require.NoError(t, err)

	assert.Equal(t, "dwg-8", req.DrawingID)
	require.Len(t, req.Symbols, 1)
	assert.Equal(t, models.CategoryValve, req.Symbols[0].Category)
	require.Len(t, req.Annotations, 1)
	assert.Equal(t, 90.0, req.Annotations[0].Rotation)
	assert.Equal(t, models.PaperA2, req.Options.PaperSize)
	assert.False(t, req.Options.IncludeTitleBlock)
	assert.True(t, req.Options.IncludeAnnotations)
}

func TestDecodeMsgpack(t *testing.T) {
	in := models.ExportRequest{
		DrawingID: "dwg-9",
		Lines:     []models.Line{{Start: models.Pt(1, 2), End: models.Pt(3, 4), LineNumber: "L-9"}},
		Options:   models.ExportOptions{Format: models.FormatDXF, PaperSize: models.PaperA0, Scale: "1:50"},
	}
	data, err := MarshalMsgpack(&in)
	require.NoError(t, err)

	req, err := NewRegistry().DecodeRequest(bytes.NewReader(data), "", "application/msgpack", models.DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, "dwg-9", req.DrawingID)
	require.Len(t, req.Lines, 1)
	assert.Equal(t, models.Pt(3, 4), req.Lines[0].End)
	assert.Equal(t, models.PaperA0, req.Options.PaperSize)
	assert.Equal(t, "1:50", req.Options.Scale)
}

func TestDecodeMalformed(t *testing.T) {
	r := NewRegistry()
	_, err := r.DecodeRequest(strings.NewReader("{not json"), "", "application/json", models.DefaultExportOptions())
	assert.ErrorContains(t, err, "decode json")

	_, err = r.DecodeRequest(strings.NewReader("symbols: [unterminated"), "x.yaml", "", models.DefaultExportOptions())
	assert.ErrorContains(t, err, "decode yaml")
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonRequest), 0o644))

	req, err := NewRegistry().DecodeFile(path, models.DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, "dwg-7", req.DrawingID)

	_, err = NewRegistry().DecodeFile(filepath.Join(t.TempDir(), "missing.json"), models.DefaultExportOptions())
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeFileAs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.txt")
	require.NoError(t, os.WriteFile(path, []byte(yamlRequest), 0o644))

	_, err := NewRegistry().DecodeFile(path, models.DefaultExportOptions())
	require.Error(t, err)

	req, err := NewRegistry().DecodeFileAs(path, "yaml", models.DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, "dwg-8", req.DrawingID)
	assert.Equal(t, models.PaperA2, req.Options.PaperSize)

	_, err = NewRegistry().DecodeFileAs(path, "csv", models.DefaultExportOptions())
	assert.ErrorContains(t, err, "decoder not found")
}
