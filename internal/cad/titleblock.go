package cad

import (
	"github.com/pid-digitizer/backend/internal/dxf"
	"github.com/pid-digitizer/backend/internal/models"
)

// Title block panel size and its offset from the sheet's lower right corner.
const (
	TitleBlockWidth  = 180
	TitleBlockHeight = 60
	titleBlockInset  = 10
)

// emptyField is printed for title block values that were not supplied.
const emptyField = "-"

type titleBlock struct {
	origin models.Point
	info   models.TitleBlockInfo
	scale  string
}

func newTitleBlock(paper Paper, info models.TitleBlockInfo, scale string) titleBlock {
	return titleBlock{
		origin: TitleBlockOrigin(paper),
		info:   info,
		scale:  scale,
	}
}

// TitleBlockOrigin is the bottom left corner of the title block on a sheet.
func TitleBlockOrigin(paper Paper) models.Point {
	return pt(paper.Width-TitleBlockWidth-titleBlockInset, titleBlockInset)
}

func orDash(s string) string {
	if s == "" {
		return emptyField
	}
	return s
}

func (tb titleBlock) at(dx, dy float64) models.Point {
	return tb.origin.Add(pt(dx, dy))
}

func (tb titleBlock) entities() []dxf.Entity {
	line := func(x1, y1, x2, y2 float64) dxf.Entity {
		return &dxf.Line{
			Layer:      LayerTitleBlock,
			Start:      tb.at(x1, y1),
			End:        tb.at(x2, y2),
			Lineweight: dxf.LineweightByLayer,
		}
	}
	text := func(value string, dx, dy, height float64, h dxf.HAlign, v dxf.VAlign) dxf.Entity {
		return &dxf.Text{
			Layer:  LayerTitleBlock,
			Value:  value,
			Insert: tb.at(dx, dy),
			Height: height,
			Style:  StyleISOCP,
			HAlign: h,
			VAlign: v,
		}
	}
	const bw, bh = TitleBlockWidth, TitleBlockHeight
	center, middle := dxf.HAlignCenter, dxf.VAlignMiddle

	return []dxf.Entity{
		&dxf.Polyline{
			Layer:      LayerTitleBlock,
			Points:     []models.Point{tb.at(0, 0), tb.at(bw, 0), tb.at(bw, bh), tb.at(0, bh)},
			Closed:     true,
			Lineweight: dxf.LineweightByLayer,
		},
		line(0, 45, bw, 45),
		line(0, 30, bw, 30),
		line(0, 15, bw, 15),
		line(60, 0, 60, 15),
		line(120, 0, 120, 15),

		text(orDash(tb.info.DrawingTitle), 90, 53, 5, center, middle),
		text(orDash(tb.info.ProjectName), 90, 38, 3.5, center, middle),
		text(orDash(tb.info.DrawingNumber), 90, 23, 3.5, center, middle),

		text("PREPARED", 30, 25, 2.5, center, middle),
		text("CHECKED", 90, 25, 2.5, center, middle),
		text("APPROVED", 150, 25, 2.5, center, middle),
		text(orDash(tb.info.PreparedBy), 30, 7, 2.5, center, middle),
		text(orDash(tb.info.CheckedBy), 90, 7, 2.5, center, middle),
		text(orDash(tb.info.ApprovedBy), 150, 7, 2.5, center, middle),

		text("REV "+orDash(tb.info.Revision), 175, 63, 2.5, dxf.HAlignRight, dxf.VAlignBottom),
		text(orDash(tb.info.Date), 5, 63, 2.5, dxf.HAlignLeft, dxf.VAlignBottom),
		text("SCALE "+orDash(tb.scale), 90, -3, 2.5, center, dxf.VAlignTop),
	}
}
