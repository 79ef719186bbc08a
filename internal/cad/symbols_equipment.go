package cad

// Equipment symbols are drawn about 40 units across.
const equipmentSize = 40

// capsuleV draws a vertical vessel outline: two sides closed by half circles.
func capsuleV(c Canvas, width, height float64) {
	r := width / 2
	straight := height/2 - r
	c.Line(pt(-r, -straight), pt(-r, straight))
	c.Line(pt(r, -straight), pt(r, straight))
	c.Arc(pt(0, straight), r, 0, 180)
	c.Arc(pt(0, -straight), r, 180, 360)
}

// capsuleH draws a horizontal vessel outline.
func capsuleH(c Canvas, width, height float64) {
	r := height / 2
	straight := width/2 - r
	c.Line(pt(-straight, r), pt(straight, r))
	c.Line(pt(-straight, -r), pt(straight, -r))
	c.Arc(pt(straight, 0), r, 270, 90)
	c.Arc(pt(-straight, 0), r, 90, 270)
}

func drawVesselVertical(c Canvas) {
	capsuleV(c, equipmentSize/2, equipmentSize)
}

func drawVesselHorizontal(c Canvas) {
	capsuleH(c, equipmentSize, equipmentSize/2)
}

func drawTankStorage(c Canvas) {
	c.Polygon(pt(-20, -20), pt(20, -20), pt(16, 14), pt(-16, 14))
	polyline(c, pt(-16, 14), pt(0, 20), pt(16, 14))
}

func drawTankOpen(c Canvas) {
	polyline(c, pt(-20, 20), pt(-16, -20), pt(16, -20), pt(20, 20))
}

func drawColumn(c Canvas) {
	capsuleV(c, 16, 60)
	// Trays alternate from each wall.
	for i, y := range []float64{-18, -9, 0, 9, 18} {
		if i%2 == 0 {
			c.Line(pt(-8, y), pt(4, y))
		} else {
			c.Line(pt(-4, y), pt(8, y))
		}
	}
}

func drawShellTube(c Canvas) {
	rect(c, 0, 0, 40, 16)
	c.Line(pt(-14, -8), pt(-14, 8))
	c.Line(pt(14, -8), pt(14, 8))
	polyline(c, pt(-14, 0), pt(-10, 5), pt(-5, -5), pt(0, 5), pt(5, -5), pt(10, 5), pt(14, 0))
}

func drawPlateExchanger(c Canvas) {
	rect(c, 0, 0, 20, 40)
	for _, x := range []float64{-6, -2, 2, 6} {
		c.Line(pt(x, -16), pt(x, 16))
	}
}

func drawAirCooler(c Canvas) {
	rect(c, 0, 8, 40, 12)
	polyline(c, pt(-16, 8), pt(-8, 12), pt(0, 4), pt(8, 12), pt(16, 8))
	c.Circle(pt(0, -10), 8)
	c.Line(pt(-8, -10), pt(8, -10))
	c.Line(pt(0, -18), pt(0, -2))
}

func drawHeatExchanger(c Canvas) {
	c.Circle(pt(0, 0), 20)
	polyline(c, pt(-20, 0), pt(-10, 0), pt(-5, 8), pt(5, -8), pt(10, 0), pt(20, 0))
}

func drawPumpCentrifugal(c Canvas) {
	c.Circle(pt(0, 0), 20)
	c.Line(pt(0, 20), pt(20, 20))
	c.Polygon(pt(-8, -10), pt(-8, 10), pt(12, 0))
}

func drawPumpReciprocating(c Canvas) {
	rect(c, 0, 0, 40, 24)
	c.Line(pt(-10, -12), pt(-10, 12))
	c.Line(pt(-10, 0), pt(14, 0))
}

func drawPumpGear(c Canvas) {
	c.Circle(pt(0, 0), 20)
	c.Circle(pt(-7, 0), 7)
	c.Circle(pt(7, 0), 7)
}

func drawCompressorCentrifugal(c Canvas) {
	c.Circle(pt(0, 0), 20)
	c.Line(pt(-14, 14), pt(14, 6))
	c.Line(pt(-14, -14), pt(14, -6))
}

func drawCompressorReciprocating(c Canvas) {
	rect(c, 0, 0, 40, 24)
	c.Polygon(pt(-12, -8), pt(12, -4), pt(12, 4), pt(-12, 8))
}

func drawBlower(c Canvas) {
	c.Circle(pt(0, 0), 20)
	c.Line(pt(-14, -14), pt(14, 14))
	c.Line(pt(-14, 14), pt(14, -14))
	polyline(c, pt(0, 20), pt(20, 20), pt(20, 10))
}

func drawFilter(c Canvas) {
	const h = 18.0
	c.Polygon(pt(-20, -h), pt(20, -h), pt(0, h))
	// Filter medium a third of the way up.
	y := -h + 2*h/3
	half := 20 * (h - y) / (2 * h)
	c.Line(pt(-half, y), pt(half, y))
}

func drawReactor(c Canvas) {
	c.Circle(pt(0, 0), 20)
	c.Circle(pt(0, 0), 14)
	c.Line(pt(0, 28), pt(0, -10))
	c.Line(pt(-8, -10), pt(8, -10))
}

func drawFurnace(c Canvas) {
	rect(c, 0, 0, 40, 40)
	polyline(c, pt(-12, -14), pt(-6, -2), pt(0, -12), pt(6, 0), pt(12, -14))
}

func drawAgitator(c Canvas) {
	rect(c, 0, 16, 12, 8)
	c.Line(pt(0, 12), pt(0, -16))
	c.Line(pt(-10, -16), pt(10, -16))
}

// drawGeneric is the shape for classes outside the catalog.
func drawGeneric(c Canvas) {
	rect(c, 0, 0, 20, 20)
	c.Line(pt(-10, -10), pt(10, 10))
	c.Line(pt(-10, 10), pt(10, -10))
}
