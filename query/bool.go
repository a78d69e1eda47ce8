package query

// And is an n-ary conjunction, evaluated left to right. If an earlier
// operand evaluates to the empty set, later operands are never applied —
// the empty-set short circuit is observable, so side effects in a later
// branch must not run.
type And struct {
	Operands []Node
}

func NewAnd(operands ...Node) *And { return &And{Operands: operands} }

func (a *And) Children() []Node { return a.Operands }

func (a *And) Flush(deep bool) {
	for _, o := range a.Operands {
		o.Flush(deep)
	}
}

func (a *And) referencesIndex() bool {
	for _, o := range a.Operands {
		if o.referencesIndex() {
			return true
		}
	}
	return false
}

func (a *And) Negate() Node {
	negated := make([]Node, len(a.Operands))
	for i, o := range a.Operands {
		negated[i] = o.Negate()
	}
	return &Or{Operands: negated}
}

func (a *And) Apply(b Bindings) (DocIDSet, error) {
	if len(a.Operands) == 0 {
		return DocIDSet{}, nil
	}
	result, err := a.Operands[0].Apply(b)
	if err != nil {
		return nil, err
	}
	for _, o := range a.Operands[1:] {
		if len(result) == 0 {
			return result, nil
		}
		next, err := o.Apply(b)
		if err != nil {
			return nil, err
		}
		result = result.Intersect(next)
	}
	return result, nil
}

// Or is an n-ary disjunction, evaluated left to right. If an operand
// evaluates to the empty set its contribution is just the empty set —
// no special casing needed beyond plain union — but per spec, an Or with
// exactly one non-empty side returns that side's result as-is rather than
// re-wrapping it, which union already does for free.
type Or struct {
	Operands []Node
}

func NewOr(operands ...Node) *Or { return &Or{Operands: operands} }

func (o *Or) Children() []Node { return o.Operands }

func (o *Or) Flush(deep bool) {
	for _, c := range o.Operands {
		c.Flush(deep)
	}
}

func (o *Or) referencesIndex() bool {
	for _, c := range o.Operands {
		if c.referencesIndex() {
			return true
		}
	}
	return false
}

func (o *Or) Negate() Node {
	negated := make([]Node, len(o.Operands))
	for i, c := range o.Operands {
		negated[i] = c.Negate()
	}
	return &And{Operands: negated}
}

func (o *Or) Apply(b Bindings) (DocIDSet, error) {
	if len(o.Operands) == 0 {
		return DocIDSet{}, nil
	}
	result, err := o.Operands[0].Apply(b)
	if err != nil {
		return nil, err
	}
	for _, c := range o.Operands[1:] {
		next, err := c.Apply(b)
		if err != nil {
			return nil, err
		}
		result = result.Union(next)
	}
	return result, nil
}

// Not negates its single child by asking it to negate itself, then
// evaluates the result — so negate(negate(q)) == q falls out of Negate
// being an involution on every node type.
type Not struct {
	Child Node
}

func NewNot(child Node) *Not { return &Not{Child: child} }

func (n *Not) Children() []Node      { return []Node{n.Child} }
func (n *Not) Flush(deep bool)       { n.Child.Flush(deep) }
func (n *Not) referencesIndex() bool { return n.Child.referencesIndex() }
func (n *Not) Negate() Node          { return n.Child }
func (n *Not) Apply(b Bindings) (DocIDSet, error) { return n.Child.Negate().Apply(b) }
