package cad

import (
	"math"

	"github.com/pid-digitizer/backend/internal/models"
)

type primitive struct {
	kind   string
	points []models.Point
	radius float64
	start  float64
	end    float64
}

// recorder is a Canvas that keeps the primitives drawn on it.
type recorder struct {
	prims []primitive
}

func (r *recorder) Line(from, to models.Point) {
	r.prims = append(r.prims, primitive{kind: "line", points: []models.Point{from, to}})
}

func (r *recorder) Arc(center models.Point, radius, startAngle, endAngle float64) {
	r.prims = append(r.prims, primitive{kind: "arc", points: []models.Point{center}, radius: radius, start: startAngle, end: endAngle})
}

func (r *recorder) Circle(center models.Point, radius float64) {
	r.prims = append(r.prims, primitive{kind: "circle", points: []models.Point{center}, radius: radius})
}

func (r *recorder) Polygon(points ...models.Point) {
	r.prims = append(r.prims, primitive{kind: "polygon", points: append([]models.Point(nil), points...)})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, p := range r.prims {
		if p.kind == kind {
			n++
		}
	}
	return n
}

// extent is the largest distance from the origin along either axis.
func (r *recorder) extent() float64 {
	var m float64
	for _, p := range r.prims {
		for _, v := range p.points {
			m = math.Max(m, math.Max(math.Abs(v.X), math.Abs(v.Y))+p.radius)
		}
	}
	return m
}

// recordingSink hands out a recorder per block.
type recordingSink struct {
	blocks map[string]*recorder
	order  []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{blocks: make(map[string]*recorder)}
}

func (s *recordingSink) DefineBlock(name string) (Canvas, error) {
	r := &recorder{}
	s.blocks[name] = r
	s.order = append(s.order, name)
	return r, nil
}
