package query

// Optimize rewrites n into an equivalent but cheaper tree. It never
// mutates n; every constructor here builds fresh nodes, so a subtree
// shared with another query is untouched.
func Optimize(n Node) Node {
	switch v := n.(type) {
	case *Not:
		// Push the negation down first, then re-optimize the result: this
		// is what turns Not(Or(Gt,Lt)) into InRange (via And(Le,Ge)) for
		// free, since the And/Or merge rules below run again on the
		// negated tree.
		return Optimize(v.Child.Negate())
	case *And:
		return optimizeAnd(v)
	case *Or:
		return optimizeOr(v)
	default:
		return n
	}
}

func optimizeChildren(operands []Node) []Node {
	out := make([]Node, len(operands))
	for i, o := range operands {
		out[i] = Optimize(o)
	}
	return out
}

// optimizeAnd applies rules 2 and 3: Eq-merge into All, and Gt/Lt pair
// merge into InRange, per index.
func optimizeAnd(a *And) Node {
	operands := optimizeChildren(a.Operands)

	byIndexEq := map[ComparableIndex][]Operand{}
	var eqOrder []ComparableIndex
	var rest []Node
	var gtLt = map[ComparableIndex]*RangeComparator{}
	var gtLtOrder []ComparableIndex

	for _, o := range operands {
		if c, ok := o.(*Comparator); ok && c.Op == opEq {
			if _, seen := byIndexEq[c.Index]; !seen {
				eqOrder = append(eqOrder, c.Index)
			}
			byIndexEq[c.Index] = append(byIndexEq[c.Index], c.Value)
			continue
		}
		if c, ok := o.(*Comparator); ok && (c.Op == opGt || c.Op == opGe || c.Op == opLt || c.Op == opLe) {
			rc, seen := gtLt[c.Index]
			if !seen {
				rc = &RangeComparator{Index: c.Index}
				gtLt[c.Index] = rc
				gtLtOrder = append(gtLtOrder, c.Index)
			}
			if ((c.Op == opGt || c.Op == opGe) && rc.Lo != nil) || ((c.Op == opLt || c.Op == opLe) && rc.Hi != nil) {
				rest = append(rest, o)
				continue
			}
			switch c.Op {
			case opGt:
				rc.Lo = c.Value
				rc.StartExclusive = true
			case opGe:
				rc.Lo = c.Value
				rc.StartExclusive = false
			case opLt:
				rc.Hi = c.Value
				rc.EndExclusive = true
			case opLe:
				rc.Hi = c.Value
				rc.EndExclusive = false
			}
			continue
		}
		rest = append(rest, o)
	}

	var merged []Node
	for _, idx := range eqOrder {
		values := byIndexEq[idx]
		var vs []any
		allLiterals := true
		for _, v := range values {
			lit, ok := v.(Literal)
			if !ok {
				allLiterals = false
				break
			}
			vs = append(vs, lit.Value)
		}
		if len(values) == 1 || !allLiterals {
			for _, v := range values {
				merged = append(merged, Eq(idx, v))
			}
			continue
		}
		merged = append(merged, All(idx, ListOperand{Values: vs}))
	}
	for _, idx := range gtLtOrder {
		rc := gtLt[idx]
		if rc.Lo != nil && rc.Hi != nil {
			merged = append(merged, rc)
			continue
		}
		// Only one bound was present on this index: it wasn't a real
		// Gt+Lt pair, hand it back as a plain comparator.
		if rc.Lo != nil {
			op := opGt
			if !rc.StartExclusive {
				op = opGe
			}
			merged = append(merged, newComparator(op, idx, rc.Lo))
		} else {
			op := opLt
			if !rc.EndExclusive {
				op = opLe
			}
			merged = append(merged, newComparator(op, idx, rc.Hi))
		}
	}
	merged = append(merged, rest...)

	if len(merged) == 1 {
		return merged[0]
	}
	return &And{Operands: merged}
}

// optimizeOr applies rules 1 and 4: Eq-merge into Any, and Gt/Lt pair
// merge into NotInRange, per index.
func optimizeOr(o *Or) Node {
	operands := optimizeChildren(o.Operands)

	byIndexEq := map[ComparableIndex][]Operand{}
	var eqOrder []ComparableIndex
	var rest []Node
	gtLt := map[ComparableIndex]*RangeComparator{}
	var gtLtOrder []ComparableIndex

	for _, n := range operands {
		if c, ok := n.(*Comparator); ok && c.Op == opEq {
			if _, seen := byIndexEq[c.Index]; !seen {
				eqOrder = append(eqOrder, c.Index)
			}
			byIndexEq[c.Index] = append(byIndexEq[c.Index], c.Value)
			continue
		}
		if c, ok := n.(*Comparator); ok && (c.Op == opGt || c.Op == opGe || c.Op == opLt || c.Op == opLe) {
			rc, seen := gtLt[c.Index]
			if !seen {
				rc = &RangeComparator{Index: c.Index, Negated: true}
				gtLt[c.Index] = rc
				gtLtOrder = append(gtLtOrder, c.Index)
			}
			if ((c.Op == opGt || c.Op == opGe) && rc.Hi != nil) || ((c.Op == opLt || c.Op == opLe) && rc.Lo != nil) {
				rest = append(rest, n)
				continue
			}
			// The flags describe the excluded range: a strict Gt/Lt leaves
			// its bound inside that range (closed end), Ge/Le leaves it out.
			switch c.Op {
			case opGt:
				rc.Hi = c.Value
				rc.EndExclusive = false
			case opGe:
				rc.Hi = c.Value
				rc.EndExclusive = true
			case opLt:
				rc.Lo = c.Value
				rc.StartExclusive = false
			case opLe:
				rc.Lo = c.Value
				rc.StartExclusive = true
			}
			continue
		}
		rest = append(rest, n)
	}

	var merged []Node
	for _, idx := range eqOrder {
		values := byIndexEq[idx]
		var vs []any
		allLiterals := true
		for _, v := range values {
			lit, ok := v.(Literal)
			if !ok {
				allLiterals = false
				break
			}
			vs = append(vs, lit.Value)
		}
		if len(values) == 1 || !allLiterals {
			for _, v := range values {
				merged = append(merged, Eq(idx, v))
			}
			continue
		}
		merged = append(merged, Any(idx, ListOperand{Values: vs}))
	}
	for _, idx := range gtLtOrder {
		rc := gtLt[idx]
		if rc.Lo != nil && rc.Hi != nil {
			// Or(Gt(i,b), Lt(i,a)) -> NotInRange(i,a,b): here rc.Hi was
			// set by the Gt branch (the upper exclusion bound) and rc.Lo
			// by the Lt branch (the lower exclusion bound).
			merged = append(merged, rc)
			continue
		}
		if rc.Hi != nil {
			op := opGt
			if rc.EndExclusive {
				op = opGe
			}
			merged = append(merged, newComparator(op, idx, rc.Hi))
		} else {
			op := opLt
			if rc.StartExclusive {
				op = opLe
			}
			merged = append(merged, newComparator(op, idx, rc.Lo))
		}
	}
	merged = append(merged, rest...)

	if len(merged) == 1 {
		return merged[0]
	}
	return &Or{Operands: merged}
}
