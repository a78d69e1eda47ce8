// Package bbox defines the bounding-box and geometry contracts that the
// R-tree and spatial index consume. It deliberately does not implement a
// real geometry engine: the coordinate system, the shapes, and the
// predicate evaluation all belong to an external geometry module. Box and
// Point exist only so the module is self-testing without that external
// dependency.
package bbox

import "math"

// Box is an axis-aligned rectangle in the plane. A degenerate box (a point)
// has Min == Max on both axes.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Point is a degenerate Box used for nearest-neighbour queries and for
// geometries that are themselves points.
type Point struct {
	X, Y float64
}

// Geometry is anything that can report its own bounding box. The spatial
// index never inspects a geometry beyond this method; exact-shape
// predicates are delegated to a PredicateEvaluator.
type Geometry interface {
	Bounds() Box
}

// Bounds implements Geometry for Box itself.
func (b Box) Bounds() Box { return b }

// Bounds implements Geometry for Point.
func (p Point) Bounds() Box { return Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y} }

// Area returns the rectangle's area. A degenerate box has area zero.
func (b Box) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Margin returns half the perimeter, used by the R*-style split to score
// candidate axes independently of area.
func (b Box) Margin() float64 {
	return (b.MaxX - b.MinX) + (b.MaxY - b.MinY)
}

// Expand returns the smallest box containing both b and other.
func (b Box) Expand(other Box) Box {
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Enlargement is the area increase incurred by expanding b to also cover
// other. It is the metric the R-tree uses to choose an insertion subtree.
func (b Box) Enlargement(other Box) float64 {
	return b.Expand(other).Area() - b.Area()
}

// Intersects reports whether the two boxes share any point.
func (b Box) Intersects(other Box) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// Contains reports whether other lies entirely within b.
func (b Box) Contains(other Box) bool {
	return b.MinX <= other.MinX && b.MinY <= other.MinY &&
		b.MaxX >= other.MaxX && b.MaxY >= other.MaxY
}

// IntersectionArea returns the area shared by both boxes, or zero if they
// do not overlap.
func (b Box) IntersectionArea(other Box) float64 {
	width := math.Min(b.MaxX, other.MaxX) - math.Max(b.MinX, other.MinX)
	height := math.Min(b.MaxY, other.MaxY) - math.Max(b.MinY, other.MinY)
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height
}

// DistanceToPoint is the Euclidean distance from p to the nearest point of
// b, or zero if p lies inside b. It is a lower bound on the distance from p
// to any geometry whose bounds are b, which is what makes the k-NN
// best-first traversal correct.
func (b Box) DistanceToPoint(p Point) float64 {
	dx := math.Max(math.Max(b.MinX-p.X, 0), p.X-b.MaxX)
	dy := math.Max(math.Max(b.MinY-p.Y, 0), p.Y-b.MaxY)
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance is the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Predicate names a geometric relation a PredicateEvaluator can test.
type Predicate string

const (
	Intersects Predicate = "intersects"
	Overlaps   Predicate = "overlaps"
	Within     Predicate = "within"
	Touches    Predicate = "touches"
)

// Valid reports whether p is one of the predicates a PredicateEvaluator is
// required to support.
func (p Predicate) Valid() bool {
	switch p {
	case Intersects, Overlaps, Within, Touches:
		return true
	}
	return false
}

// PredicateEvaluator is the external geometry module's contract: given a
// query geometry, a predicate name and a batch of candidate geometries, it
// reports which candidates satisfy the predicate against the query. The
// spatial index never evaluates geometric predicates itself; it only uses
// bounding-box intersection to cut the candidate set down first.
type PredicateEvaluator interface {
	Evaluate(predicate Predicate, query Geometry, candidates []Geometry) ([]bool, error)
}
