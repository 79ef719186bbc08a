package dxf

import "github.com/pid-digitizer/backend/internal/models"

// Block is a named, reusable group of entities defined around the origin.
// Its drawing methods put geometry on layer "0".
type Block struct {
	name     string
	entities []Entity
}

// Name returns the block name.
func (b *Block) Name() string {
	return b.name
}

// Entities returns the block's entities in drawing order.
func (b *Block) Entities() []Entity {
	return b.entities
}

// Line adds a segment.
func (b *Block) Line(from, to models.Point) {
	b.entities = append(b.entities, &Line{
		Layer:      DefaultLayer,
		Start:      from,
		End:        to,
		Lineweight: LineweightByLayer,
	})
}

// Arc adds a counterclockwise arc between two angles in degrees.
func (b *Block) Arc(center models.Point, radius, startAngle, endAngle float64) {
	b.entities = append(b.entities, &Arc{
		Layer:      DefaultLayer,
		Center:     center,
		Radius:     radius,
		StartAngle: startAngle,
		EndAngle:   endAngle,
	})
}

// Circle adds a full circle.
func (b *Block) Circle(center models.Point, radius float64) {
	b.entities = append(b.entities, &Circle{
		Layer:  DefaultLayer,
		Center: center,
		Radius: radius,
	})
}

// Polygon adds a closed polyline through the given vertices.
func (b *Block) Polygon(points ...models.Point) {
	pts := make([]models.Point, len(points))
	copy(pts, points)
	b.entities = append(b.entities, &Polyline{
		Layer:      DefaultLayer,
		Points:     pts,
		Closed:     true,
		Lineweight: LineweightByLayer,
	})
}
