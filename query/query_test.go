package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal in-memory ComparableIndex for testing the
// algebra and optimizer without a concrete catalog index.
type fakeIndex struct {
	name    string
	values  map[DocId]any // docid -> indexed value, for Eq/Gt/Lt etc.
	applied []string       // records which Apply* method ran, for spy tests
}

func newFakeIndex(name string, values map[DocId]any) *fakeIndex {
	return &fakeIndex{name: name, values: values}
}

func (f *fakeIndex) Name() string { return f.name }

func (f *fakeIndex) matching(pred func(any) bool) DocIDSet {
	out := DocIDSet{}
	for id, v := range f.values {
		if pred(v) {
			out[id] = struct{}{}
		}
	}
	return out
}

func (f *fakeIndex) ApplyEq(v any) (DocIDSet, error) {
	f.applied = append(f.applied, "eq")
	return f.matching(func(x any) bool { return x == v }), nil
}
func (f *fakeIndex) ApplyNotEq(v any) (DocIDSet, error) {
	return f.matching(func(x any) bool { return x != v }), nil
}
func (f *fakeIndex) ApplyLt(v any) (DocIDSet, error) {
	return f.matching(func(x any) bool { return x.(int) < v.(int) }), nil
}
func (f *fakeIndex) ApplyLe(v any) (DocIDSet, error) {
	return f.matching(func(x any) bool { return x.(int) <= v.(int) }), nil
}
func (f *fakeIndex) ApplyGt(v any) (DocIDSet, error) {
	return f.matching(func(x any) bool { return x.(int) > v.(int) }), nil
}
func (f *fakeIndex) ApplyGe(v any) (DocIDSet, error) {
	return f.matching(func(x any) bool { return x.(int) >= v.(int) }), nil
}
func (f *fakeIndex) ApplyContains(v any) (DocIDSet, error) { return DocIDSet{}, nil }
func (f *fakeIndex) ApplyNotContains(v any) (DocIDSet, error) { return DocIDSet{}, nil }
func (f *fakeIndex) ApplyAny(vs []any) (DocIDSet, error) {
	set := map[any]struct{}{}
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return f.matching(func(x any) bool { _, ok := set[x]; return ok }), nil
}
func (f *fakeIndex) ApplyNotAny(vs []any) (DocIDSet, error) {
	set := map[any]struct{}{}
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return f.matching(func(x any) bool { _, ok := set[x]; return !ok }), nil
}
func (f *fakeIndex) ApplyAll(vs []any) (DocIDSet, error) { return f.ApplyAny(vs) }
func (f *fakeIndex) ApplyNotAll(vs []any) (DocIDSet, error) { return f.ApplyNotAny(vs) }
func (f *fakeIndex) ApplyInRange(lo, hi any, startExclusive, endExclusive bool) (DocIDSet, error) {
	return f.matching(func(x any) bool {
		xi, loi, hii := x.(int), lo.(int), hi.(int)
		lowOK := xi > loi
		if !startExclusive {
			lowOK = xi >= loi
		}
		highOK := xi < hii
		if !endExclusive {
			highOK = xi <= hii
		}
		return lowOK && highOK
	}), nil
}
func (f *fakeIndex) ApplyNotInRange(lo, hi any, startExclusive, endExclusive bool) (DocIDSet, error) {
	in, err := f.ApplyInRange(lo, hi, startExclusive, endExclusive)
	if err != nil {
		return nil, err
	}
	out := DocIDSet{}
	for id := range f.values {
		if _, ok := in[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func TestAndShortCircuitsOnEmpty(t *testing.T) {
	a := newFakeIndex("a", map[DocId]any{1: 5})
	spy := newFakeIndex("spy", map[DocId]any{1: 5})

	empty := Eq(a, Literal{Value: 999})
	sideEffecting := Eq(spy, Literal{Value: 5})

	and := NewAnd(empty, sideEffecting)
	result, err := and.Apply(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, spy.applied, "right operand of a short-circuited And must not run")
}

func TestNegateInvolution(t *testing.T) {
	idx := newFakeIndex("a", nil)
	q := Eq(idx, Literal{Value: 1})
	twice := q.Negate().Negate()
	assert.Equal(t, q, twice)
}

func TestOptimizeOrOfEqBecomesAny(t *testing.T) {
	idx := newFakeIndex("a", map[DocId]any{1: 1, 2: 2, 3: 3})
	q := NewOr(Eq(idx, Literal{Value: 1}), Eq(idx, Literal{Value: 2}), Eq(idx, Literal{Value: 3}))
	opt := Optimize(q)
	c, ok := opt.(*Comparator)
	require.True(t, ok, "expected a single Any comparator, got %T", opt)
	assert.Equal(t, opAny, c.Op)
}

func TestOptimizeAndOfGtLtBecomesInRange(t *testing.T) {
	idx := newFakeIndex("a", nil)
	q := NewAnd(Gt(idx, Literal{Value: 0}), Lt(idx, Literal{Value: 5}))
	opt := Optimize(q)
	r, ok := opt.(*RangeComparator)
	require.True(t, ok, "expected InRange, got %T", opt)
	assert.False(t, r.Negated)
	assert.Equal(t, 0, r.Lo.(Literal).Value)
	assert.Equal(t, 5, r.Hi.(Literal).Value)
	assert.True(t, r.StartExclusive)
	assert.True(t, r.EndExclusive)
}

func TestOptimizeDoesNotMutateSharedSubquery(t *testing.T) {
	x := newFakeIndex("x", map[DocId]any{1: "p", 2: "a"})
	y := newFakeIndex("y", map[DocId]any{1: "e"})

	shared := NewOr(Eq(x, Literal{Value: "p"}), Eq(x, Literal{Value: "a"}))
	top := NewAnd(shared, Eq(y, Literal{Value: "e"}))
	_ = Optimize(top)

	// shared itself, independently of the optimized copy embedded above,
	// must still be an Or of two Eq comparators.
	require.Len(t, shared.Operands, 2)
	for _, o := range shared.Operands {
		c, ok := o.(*Comparator)
		require.True(t, ok)
		assert.Equal(t, opEq, c.Op)
	}
}

func TestExecuteRejectsIndexFreeQuery(t *testing.T) {
	// And() with no operands references no index.
	_, err := Execute(NewAnd(), ExecuteOptions{})
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestNotPushesThroughOr(t *testing.T) {
	idx := newFakeIndex("a", nil)
	q := NewNot(NewOr(Gt(idx, Literal{Value: 5}), Lt(idx, Literal{Value: 1})))
	opt := Optimize(q)
	r, ok := opt.(*RangeComparator)
	require.True(t, ok, "expected InRange, got %T", opt)
	assert.False(t, r.Negated)
}

func TestUnboundNameErrors(t *testing.T) {
	idx := newFakeIndex("a", map[DocId]any{1: 1})
	q := Eq(idx, Name{Ident: "missing"})
	_, err := q.Apply(Bindings{})
	assert.ErrorIs(t, err, ErrUnbound)
}
