package bbox

import "fmt"

// BoxEvaluator is a reference PredicateEvaluator that treats every
// Geometry's own bounding box as its exact shape. It exists so this module
// is self-testing without pulling in a real geometry engine; a production
// caller is expected to supply a PredicateEvaluator backed by an actual
// geometry library instead.
type BoxEvaluator struct{}

// Evaluate implements PredicateEvaluator.
func (BoxEvaluator) Evaluate(predicate Predicate, query Geometry, candidates []Geometry) ([]bool, error) {
	if !predicate.Valid() {
		return nil, fmt.Errorf("bbox: unknown predicate %q", predicate)
	}
	qb := query.Bounds()
	results := make([]bool, len(candidates))
	for i, c := range candidates {
		cb := c.Bounds()
		switch predicate {
		case Intersects:
			results[i] = qb.Intersects(cb)
		case Overlaps:
			results[i] = qb.Intersects(cb) && qb.IntersectionArea(cb) > 0 && !qb.Contains(cb) && !cb.Contains(qb)
		case Within:
			results[i] = qb.Contains(cb)
		case Touches:
			results[i] = qb.Intersects(cb) && qb.IntersectionArea(cb) == 0
		}
	}
	return results, nil
}
