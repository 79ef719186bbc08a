package cad

import "math"

// instrumentRadius sizes instrument bubbles at 15 units across.
const instrumentRadius = 7.5

// drawFieldInstrument is the plain bubble shared by field-mounted
// transmitters and indicators.
func drawFieldInstrument(c Canvas) {
	c.Circle(pt(0, 0), instrumentRadius)
}

// drawPanelInstrument is a bubble with a divider for panel-mounted devices.
func drawPanelInstrument(c Canvas) {
	c.Circle(pt(0, 0), instrumentRadius)
	c.Line(pt(-instrumentRadius, 0), pt(instrumentRadius, 0))
}

func drawController(c Canvas) {
	rect(c, 0, 0, 2*instrumentRadius, 2*instrumentRadius)
	c.Line(pt(-instrumentRadius, 0), pt(instrumentRadius, 0))
}

func drawAlarm(c Canvas) {
	points := make([]Point, 6)
	for i := range points {
		a := float64(i) * math.Pi / 3
		points[i] = pt(round(instrumentRadius*math.Cos(a)), round(instrumentRadius*math.Sin(a)))
	}
	c.Polygon(points...)
}

func drawSwitch(c Canvas) {
	r := instrumentRadius
	c.Polygon(pt(0, r), pt(r, 0), pt(0, -r), pt(-r, 0))
}

func drawOrificePlate(c Canvas) {
	c.Line(pt(-1.5, -6), pt(-1.5, 6))
	c.Line(pt(1.5, -6), pt(1.5, 6))
	c.Line(pt(-4, 6), pt(4, 6))
	c.Line(pt(-4, -6), pt(4, -6))
}

func drawThermowell(c Canvas) {
	rect(c, 0, 0, 4, 2*instrumentRadius)
}

func drawSamplePoint(c Canvas) {
	c.Circle(pt(0, 0), 3)
	c.Line(pt(0, -3), pt(0, -instrumentRadius))
}

func drawReliefInstrument(c Canvas) {
	c.Polygon(pt(-6, -instrumentRadius), pt(6, -instrumentRadius), pt(0, 2))
	spring(c, pt(0, 2), instrumentRadius-2)
}

// spring draws a zigzag spring glyph rising from base.
func spring(c Canvas, base Point, height float64) {
	const turns = 4
	step := height / (turns + 1)
	points := []Point{base}
	for i := 1; i <= turns; i++ {
		x := 2.0
		if i%2 == 0 {
			x = -2
		}
		points = append(points, pt(base.X+x, base.Y+float64(i)*step))
	}
	points = append(points, pt(base.X, base.Y+height))
	polyline(c, points...)
}

// round trims floating point noise from computed vertices.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
