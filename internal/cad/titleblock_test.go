package cad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

func titleTexts(t *testing.T, paper models.PaperSize, info models.TitleBlockInfo, scale string) map[string]*dxf.Text {
	t.Helper()
	p, err := PaperDimensions(paper)
	require.NoError(t, err)
	out := make(map[string]*dxf.Text)
	for _, e := range newTitleBlock(p, info, scale).entities() {
		assert.Equal(t, LayerTitleBlock, e.LayerName())
		if txt, ok := e.(*dxf.Text); ok {
			out[txt.Value] = txt
		}
	}
	return out
}

func TestTitleBlockOrigin(t *testing.T) {
	p, _ := PaperDimensions(models.PaperA1)
	assert.Equal(t, models.Pt(651, 10), TitleBlockOrigin(p))
	p, _ = PaperDimensions(models.PaperA4)
	assert.Equal(t, models.Pt(107, 10), TitleBlockOrigin(p))
}

func TestTitleBlockLayout(t *testing.T) {
	info := models.TitleBlockInfo{
		DrawingNumber: "PID-001",
		DrawingTitle:  "Crude Unit",
		ProjectName:   "Refinery",
		Revision:      "B",
		Date:          "2024-05-01",
		PreparedBy:    "AK",
		CheckedBy:     "JS",
		ApprovedBy:    "MR",
	}
	texts := titleTexts(t, models.PaperA1, info, "1:100")
	bx, by := 651.0, 10.0

	tests := []struct {
		value string
		at    models.Point
		h     dxf.HAlign
		v     dxf.VAlign
	}{
		{"Crude Unit", models.Pt(bx+90, by+53), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"Refinery", models.Pt(bx+90, by+38), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"PID-001", models.Pt(bx+90, by+23), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"PREPARED", models.Pt(bx+30, by+25), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"CHECKED", models.Pt(bx+90, by+25), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"APPROVED", models.Pt(bx+150, by+25), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"AK", models.Pt(bx+30, by+7), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"JS", models.Pt(bx+90, by+7), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"MR", models.Pt(bx+150, by+7), dxf.HAlignCenter, dxf.VAlignMiddle},
		{"REV B", models.Pt(bx+175, by+63), dxf.HAlignRight, dxf.VAlignBottom},
		{"2024-05-01", models.Pt(bx+5, by+63), dxf.HAlignLeft, dxf.VAlignBottom},
		{"SCALE 1:100", models.Pt(bx+90, by-3), dxf.HAlignCenter, dxf.VAlignTop},
	}
	require.Len(t, texts, len(tests))
	for _, tt := range tests {
		txt, ok := texts[tt.value]
		require.True(t, ok, "missing %q", tt.value)
		assert.Equal(t, tt.at, txt.Insert, tt.value)
		assert.Equal(t, tt.h, txt.HAlign, tt.value)
		assert.Equal(t, tt.v, txt.VAlign, tt.value)
	}
	assert.Equal(t, 5.0, texts["Crude Unit"].Height)
}

func TestTitleBlockEmptyFieldsRenderDash(t *testing.T) {
	p, _ := PaperDimensions(models.PaperA3)
	var values []string
	for _, e := range newTitleBlock(p, models.TitleBlockInfo{DrawingTitle: "Only Title"}, "").entities() {
		if txt, ok := e.(*dxf.Text); ok {
			values = append(values, txt.Value)
		}
	}
	assert.Contains(t, values, "Only Title")
	assert.Contains(t, values, "REV -")
	assert.Contains(t, values, "SCALE -")

	dashes := 0
	for _, v := range values {
		if v == "-" {
			dashes++
		}
	}
	// project, number, three signatures and the date
	assert.Equal(t, 6, dashes)
}

func TestTitleBlockRules(t *testing.T) {
	p, _ := PaperDimensions(models.PaperA2)
	origin := TitleBlockOrigin(p)
	var lines []*dxf.Line
	for _, e := range newTitleBlock(p, models.TitleBlockInfo{}, "NTS").entities() {
		if l, ok := e.(*dxf.Line); ok {
			lines = append(lines, l)
		}
	}
	require.Len(t, lines, 5)
	assert.Equal(t, origin.Add(models.Pt(0, 45)), lines[0].Start)
	assert.Equal(t, origin.Add(models.Pt(180, 45)), lines[0].End)
	assert.Equal(t, origin.Add(models.Pt(60, 0)), lines[3].Start)
	assert.Equal(t, origin.Add(models.Pt(60, 15)), lines[3].End)
}
