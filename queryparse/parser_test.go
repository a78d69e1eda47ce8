package queryparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docindex/query"
)

type stubIndex struct{ name string }

func (s *stubIndex) Name() string                                  { return s.name }
func (s *stubIndex) ApplyEq(any) (query.DocIDSet, error)            { return nil, nil }
func (s *stubIndex) ApplyNotEq(any) (query.DocIDSet, error)         { return nil, nil }
func (s *stubIndex) ApplyLt(any) (query.DocIDSet, error)            { return nil, nil }
func (s *stubIndex) ApplyLe(any) (query.DocIDSet, error)            { return nil, nil }
func (s *stubIndex) ApplyGt(any) (query.DocIDSet, error)            { return nil, nil }
func (s *stubIndex) ApplyGe(any) (query.DocIDSet, error)            { return nil, nil }
func (s *stubIndex) ApplyContains(any) (query.DocIDSet, error)      { return nil, nil }
func (s *stubIndex) ApplyNotContains(any) (query.DocIDSet, error)   { return nil, nil }
func (s *stubIndex) ApplyAny([]any) (query.DocIDSet, error)         { return nil, nil }
func (s *stubIndex) ApplyNotAny([]any) (query.DocIDSet, error)      { return nil, nil }
func (s *stubIndex) ApplyAll([]any) (query.DocIDSet, error)         { return nil, nil }
func (s *stubIndex) ApplyNotAll([]any) (query.DocIDSet, error)      { return nil, nil }
func (s *stubIndex) ApplyInRange(lo, hi any, se, ee bool) (query.DocIDSet, error) {
	return nil, nil
}
func (s *stubIndex) ApplyNotInRange(lo, hi any, se, ee bool) (query.DocIDSet, error) {
	return nil, nil
}

func resolverWith(names ...string) IndexResolver {
	indexes := map[string]*stubIndex{}
	for _, n := range names {
		indexes[n] = &stubIndex{name: n}
	}
	return func(name string) (query.ComparableIndex, error) {
		idx, ok := indexes[name]
		if !ok {
			return nil, &unknownIndexError{name}
		}
		return idx, nil
	}
}

type unknownIndexError struct{ name string }

func (e *unknownIndexError) Error() string { return "unknown index: " + e.name }

func TestParseOrOfEqOptimizesToAny(t *testing.T) {
	node, err := Parse(`a == 1 or a == 2 or a == 3`, resolverWith("a"))
	require.NoError(t, err)
	opt := query.Optimize(node)
	c, ok := opt.(*query.Comparator)
	require.True(t, ok, "got %T", opt)
	require.Equal(t, "a", c.Index.Name())
}

func TestParseAndOfRangeOptimizesToInRange(t *testing.T) {
	node, err := Parse(`a > 0 and a < 5`, resolverWith("a"))
	require.NoError(t, err)
	opt := query.Optimize(node)
	r, ok := opt.(*query.RangeComparator)
	require.True(t, ok, "got %T", opt)
	require.False(t, r.Negated)
}

func TestParsePrecedenceAndBeforeOr(t *testing.T) {
	node, err := Parse(`a == 1 or a == 2 and a == 3`, resolverWith("a"))
	require.NoError(t, err)
	or, ok := node.(*query.Or)
	require.True(t, ok, "got %T", node)
	require.Len(t, or.Operands, 2)
	_, isAnd := or.Operands[1].(*query.And)
	require.True(t, isAnd)
}

func TestParseRangeChain(t *testing.T) {
	node, err := Parse(`0 < a < 5`, resolverWith("a"))
	require.NoError(t, err)
	r, ok := node.(*query.RangeComparator)
	require.True(t, ok, "got %T", node)
	require.True(t, r.StartExclusive)
	require.True(t, r.EndExclusive)
}

func TestParseNotRangeChain(t *testing.T) {
	node, err := Parse(`not(0 < a < 5)`, resolverWith("a"))
	require.NoError(t, err)
	_, ok := node.(*query.Not)
	require.True(t, ok, "got %T", node)
}

func TestParseFunctionMembership(t *testing.T) {
	node, err := Parse(`name in any([1, 2, 3])`, resolverWith("name"))
	require.NoError(t, err)
	c, ok := node.(*query.Comparator)
	require.True(t, ok, "got %T", node)
	require.Equal(t, "name", c.Index.Name())
}

func TestParseDottedIndexName(t *testing.T) {
	node, err := Parse(`a.b.c == 1`, resolverWith("a.b.c"))
	require.NoError(t, err)
	c, ok := node.(*query.Comparator)
	require.True(t, ok, "got %T", node)
	require.Equal(t, "a.b.c", c.Index.Name())
}

func TestParseRejectsIndexOnRightOfEquals(t *testing.T) {
	_, err := Parse(`1 == a`, resolverWith("a"))
	require.Error(t, err)
}

func TestParseBooleanCombinatorSugar(t *testing.T) {
	node, err := Parse(`a == 1 & a == 2`, resolverWith("a"))
	require.NoError(t, err)
	_, ok := node.(*query.And)
	require.True(t, ok, "got %T", node)
}

func TestParseCatalogQueryScenario(t *testing.T) {
	expr := `(allowed == 'a' and allowed == 'b' and (name in any(['x', 'y'])) and not(title == 'title3')) and body in text`
	node, err := Parse(expr, resolverWith("allowed", "name", "title", "text"))
	require.NoError(t, err)
	require.NotNil(t, node)
}
