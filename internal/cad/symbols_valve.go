package cad

// Valve bodies are 12 units long and 8 high.
const (
	valveHalfLength = 6
	valveHalfHeight = 4
)

// bowtie draws two closed triangles meeting at the origin.
func bowtie(c Canvas) {
	c.Polygon(pt(-valveHalfLength, -valveHalfHeight), pt(-valveHalfLength, valveHalfHeight), pt(0, 0))
	c.Polygon(pt(valveHalfLength, -valveHalfHeight), pt(valveHalfLength, valveHalfHeight), pt(0, 0))
}

// stem draws the actuator stem and returns its top.
func stem(c Canvas) Point {
	top := pt(0, 6)
	c.Line(pt(0, 0), top)
	return top
}

func drawValveGate(c Canvas) {
	bowtie(c)
}

func drawValveGlobe(c Canvas) {
	bowtie(c)
	c.Circle(pt(0, 0), 1.5)
}

func drawValveBall(c Canvas) {
	bowtie(c)
	c.Circle(pt(0, 0), 3)
}

func drawValvePlug(c Canvas) {
	bowtie(c)
	c.Line(pt(0, -valveHalfHeight), pt(0, valveHalfHeight))
}

func drawValveNeedle(c Canvas) {
	bowtie(c)
	c.Line(pt(-3, 0), pt(3, 0))
}

func drawValveManual(c Canvas) {
	bowtie(c)
	top := stem(c)
	c.Line(pt(-3, top.Y), pt(3, top.Y))
}

func drawValveButterfly(c Canvas) {
	c.Line(pt(-valveHalfLength, -valveHalfHeight), pt(-valveHalfLength, valveHalfHeight))
	c.Line(pt(valveHalfLength, -valveHalfHeight), pt(valveHalfLength, valveHalfHeight))
	c.Line(pt(-3, -valveHalfHeight), pt(3, valveHalfHeight))
	c.Circle(pt(0, 0), 1)
}

func drawValveThreeWay(c Canvas) {
	bowtie(c)
	c.Polygon(pt(-valveHalfHeight, -valveHalfLength), pt(valveHalfHeight, -valveHalfLength), pt(0, 0))
}

func drawValveDiaphragm(c Canvas) {
	bowtie(c)
	c.Arc(pt(0, valveHalfHeight), 3, 0, 180)
	c.Line(pt(-3, valveHalfHeight), pt(3, valveHalfHeight))
}

func drawValveCheck(c Canvas) {
	c.Polygon(pt(-valveHalfLength, -valveHalfHeight), pt(-valveHalfLength, valveHalfHeight), pt(3, 0))
	c.Line(pt(3, -valveHalfHeight), pt(3, valveHalfHeight))
	c.Line(pt(3, 0), pt(valveHalfLength, 0))
}

// drawValveRelief is an angle body, inlet below and outlet to the right,
// with the spring above.
func drawValveRelief(c Canvas) {
	c.Polygon(pt(-valveHalfHeight, -valveHalfLength), pt(valveHalfHeight, -valveHalfLength), pt(0, 0))
	c.Polygon(pt(valveHalfLength, -valveHalfHeight), pt(valveHalfLength, valveHalfHeight), pt(0, 0))
	spring(c, pt(0, 0), 7)
}

func drawControlValvePneumatic(c Canvas) {
	bowtie(c)
	top := stem(c)
	c.Arc(top, 4, 0, 180)
	c.Line(pt(-4, top.Y), pt(4, top.Y))
}

func drawControlValveElectric(c Canvas) {
	bowtie(c)
	top := stem(c)
	c.Circle(pt(0, top.Y+3), 3)
}

func drawControlValveHydraulic(c Canvas) {
	bowtie(c)
	top := stem(c)
	rect(c, 0, top.Y+3, 8, 6)
	c.Line(pt(-4, top.Y+3), pt(4, top.Y+3))
}
