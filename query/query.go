// Package query implements the query algebra: comparator leaves, boolean
// combinators, an optimizer that rewrites a tree into an equivalent but
// cheaper form, and an execution entry point. Nodes are immutable once
// built; the optimizer returns a fresh tree and never mutates its input,
// so a subquery shared between two top-level queries stays untouched.
package query

import (
	"errors"
	"fmt"
)

// ErrUnbound is returned when a Name operand has no matching binding.
var ErrUnbound = errors.New("query: unbound parameter")

// ErrNoIndex is returned by Execute when a query references no concrete
// index at all (e.g. an empty And/Or).
var ErrNoIndex = errors.New("query: no concrete index referenced")

// ErrNotSupported is returned by a ComparableIndex when asked to apply a
// comparator it does not implement.
var ErrNotSupported = errors.New("query: comparator not supported by index")

// DocId is a document identifier.
type DocId = int64

// DocIDSet is the result of applying a node: a plain set of document ids.
type DocIDSet map[DocId]struct{}

// NewDocIDSet builds a set from a slice of ids.
func NewDocIDSet(ids ...DocId) DocIDSet {
	s := make(DocIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s DocIDSet) Len() int { return len(s) }

// Intersect returns a new set containing only ids present in both.
func (s DocIDSet) Intersect(other DocIDSet) DocIDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(DocIDSet, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Union returns a new set containing every id present in either.
func (s DocIDSet) Union(other DocIDSet) DocIDSet {
	out := make(DocIDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Difference returns ids in s that are not in other.
func (s DocIDSet) Difference(other DocIDSet) DocIDSet {
	out := make(DocIDSet, len(s))
	for id := range s {
		if _, ok := other[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Ids returns the set's members as a slice, in no particular order.
func (s DocIDSet) Ids() []DocId {
	out := make([]DocId, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Bindings resolves Name references to concrete operand values during
// Apply.
type Bindings map[string]any

// ComparableIndex is the narrow dispatch surface a concrete index must
// satisfy for the query algebra to run comparators against it. It is
// defined here (not imported from catalog) so this package never depends
// on catalog; any index implementing these methods satisfies it
// implicitly, which is exactly what catalog.QueryableIndex requires.
type ComparableIndex interface {
	Name() string
	ApplyEq(v any) (DocIDSet, error)
	ApplyNotEq(v any) (DocIDSet, error)
	ApplyLt(v any) (DocIDSet, error)
	ApplyLe(v any) (DocIDSet, error)
	ApplyGt(v any) (DocIDSet, error)
	ApplyGe(v any) (DocIDSet, error)
	ApplyContains(v any) (DocIDSet, error)
	ApplyNotContains(v any) (DocIDSet, error)
	ApplyAny(vs []any) (DocIDSet, error)
	ApplyNotAny(vs []any) (DocIDSet, error)
	ApplyAll(vs []any) (DocIDSet, error)
	ApplyNotAll(vs []any) (DocIDSet, error)
	ApplyInRange(lo, hi any, startExclusive, endExclusive bool) (DocIDSet, error)
	ApplyNotInRange(lo, hi any, startExclusive, endExclusive bool) (DocIDSet, error)
}

// Operand is a comparator's right-hand value: a literal, a list of
// literals, or an unresolved Name.
type Operand interface {
	resolve(b Bindings) (any, error)
}

// Literal is a concrete operand value (string, int64, float64, bool, ...).
type Literal struct{ Value any }

func (l Literal) resolve(Bindings) (any, error) { return l.Value, nil }

// ListOperand is a list/tuple literal, used by Any/All/InRange endpoints.
type ListOperand struct{ Values []any }

func (l ListOperand) resolve(Bindings) (any, error) { return l.Values, nil }

// Name is an unresolved parameter reference, bound at Apply time.
type Name struct{ Ident string }

func (n Name) resolve(b Bindings) (any, error) {
	v, ok := b[n.Ident]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnbound, n.Ident)
	}
	return v, nil
}

// Node is satisfied by every query tree element.
type Node interface {
	Apply(b Bindings) (DocIDSet, error)
	Negate() Node
	Children() []Node
	Flush(deep bool)
	// referencesIndex reports whether this subtree touches at least one
	// concrete index, used by Execute's ErrNoIndex guard.
	referencesIndex() bool
}
