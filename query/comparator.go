package query

import "fmt"

// compOp names a comparator's operation; it doubles as the dispatch key
// into ComparableIndex and as the thing Negate flips.
type compOp int

const (
	opEq compOp = iota
	opNotEq
	opLt
	opLe
	opGt
	opGe
	opContains
	opNotContains
	opAny
	opNotAny
	opAll
	opNotAll
)

var negatedOp = map[compOp]compOp{
	opEq:          opNotEq,
	opNotEq:       opEq,
	opLt:          opGe,
	opGe:          opLt,
	opLe:          opGt,
	opGt:          opLe,
	opContains:    opNotContains,
	opNotContains: opContains,
	opAny:         opNotAny,
	opNotAny:      opAny,
	opAll:         opNotAll,
	opNotAll:      opAll,
}

// Comparator is a leaf node that evaluates exactly one index against one
// operand (or a list operand, for Any/All).
type Comparator struct {
	Op    compOp
	Index ComparableIndex
	Value Operand
}

func newComparator(op compOp, idx ComparableIndex, v Operand) *Comparator {
	return &Comparator{Op: op, Index: idx, Value: v}
}

// Eq, NotEq, Lt, Le, Gt, Ge, Contains, NotContains, Any, NotAny, All,
// NotAll build the corresponding comparator node.
func Eq(idx ComparableIndex, v Operand) *Comparator          { return newComparator(opEq, idx, v) }
func NotEq(idx ComparableIndex, v Operand) *Comparator       { return newComparator(opNotEq, idx, v) }
func Lt(idx ComparableIndex, v Operand) *Comparator          { return newComparator(opLt, idx, v) }
func Le(idx ComparableIndex, v Operand) *Comparator          { return newComparator(opLe, idx, v) }
func Gt(idx ComparableIndex, v Operand) *Comparator          { return newComparator(opGt, idx, v) }
func Ge(idx ComparableIndex, v Operand) *Comparator          { return newComparator(opGe, idx, v) }
func Contains(idx ComparableIndex, v Operand) *Comparator    { return newComparator(opContains, idx, v) }
func NotContains(idx ComparableIndex, v Operand) *Comparator { return newComparator(opNotContains, idx, v) }
func Any(idx ComparableIndex, v Operand) *Comparator         { return newComparator(opAny, idx, v) }
func NotAny(idx ComparableIndex, v Operand) *Comparator      { return newComparator(opNotAny, idx, v) }
func All(idx ComparableIndex, v Operand) *Comparator         { return newComparator(opAll, idx, v) }
func NotAll(idx ComparableIndex, v Operand) *Comparator      { return newComparator(opNotAll, idx, v) }

func (c *Comparator) Children() []Node      { return nil }
func (c *Comparator) Flush(bool)            {}
func (c *Comparator) referencesIndex() bool { return c.Index != nil }

// Negate returns the comparator with its operator flipped to the De
// Morgan-complementary one, per negate(negate(q)) == q.
func (c *Comparator) Negate() Node {
	flipped, ok := negatedOp[c.Op]
	if !ok {
		panic(fmt.Sprintf("query: comparator op %d has no negation", c.Op))
	}
	return &Comparator{Op: flipped, Index: c.Index, Value: c.Value}
}

func (c *Comparator) Apply(b Bindings) (DocIDSet, error) {
	v, err := c.Value.resolve(b)
	if err != nil {
		return nil, err
	}
	switch c.Op {
	case opEq:
		return c.Index.ApplyEq(v)
	case opNotEq:
		return c.Index.ApplyNotEq(v)
	case opLt:
		return c.Index.ApplyLt(v)
	case opLe:
		return c.Index.ApplyLe(v)
	case opGt:
		return c.Index.ApplyGt(v)
	case opGe:
		return c.Index.ApplyGe(v)
	case opContains:
		return c.Index.ApplyContains(v)
	case opNotContains:
		return c.Index.ApplyNotContains(v)
	case opAny:
		return c.Index.ApplyAny(toSlice(v))
	case opNotAny:
		return c.Index.ApplyNotAny(toSlice(v))
	case opAll:
		return c.Index.ApplyAll(toSlice(v))
	case opNotAll:
		return c.Index.ApplyNotAll(toSlice(v))
	}
	return nil, fmt.Errorf("query: unknown comparator op %d", c.Op)
}

func toSlice(v any) []any {
	if vs, ok := v.([]any); ok {
		return vs
	}
	return []any{v}
}

// RangeComparator is InRange/NotInRange: a < Index < b (with independent
// endpoint exclusivity), or its negation.
type RangeComparator struct {
	Negated        bool
	Index          ComparableIndex
	Lo, Hi         Operand
	StartExclusive bool
	EndExclusive   bool
}

// InRange builds an InRange(index, lo, hi, startExclusive, endExclusive)
// node.
func InRange(idx ComparableIndex, lo, hi Operand, startExclusive, endExclusive bool) *RangeComparator {
	return &RangeComparator{Index: idx, Lo: lo, Hi: hi, StartExclusive: startExclusive, EndExclusive: endExclusive}
}

// NotInRange builds the negated form directly.
func NotInRange(idx ComparableIndex, lo, hi Operand, startExclusive, endExclusive bool) *RangeComparator {
	return &RangeComparator{Negated: true, Index: idx, Lo: lo, Hi: hi, StartExclusive: startExclusive, EndExclusive: endExclusive}
}

func (r *RangeComparator) Children() []Node      { return nil }
func (r *RangeComparator) Flush(bool)            {}
func (r *RangeComparator) referencesIndex() bool { return r.Index != nil }

func (r *RangeComparator) Negate() Node {
	return &RangeComparator{
		Negated:        !r.Negated,
		Index:          r.Index,
		Lo:             r.Lo,
		Hi:             r.Hi,
		StartExclusive: r.StartExclusive,
		EndExclusive:   r.EndExclusive,
	}
}

func (r *RangeComparator) Apply(b Bindings) (DocIDSet, error) {
	lo, err := r.Lo.resolve(b)
	if err != nil {
		return nil, err
	}
	hi, err := r.Hi.resolve(b)
	if err != nil {
		return nil, err
	}
	if r.Negated {
		return r.Index.ApplyNotInRange(lo, hi, r.StartExclusive, r.EndExclusive)
	}
	return r.Index.ApplyInRange(lo, hi, r.StartExclusive, r.EndExclusive)
}
