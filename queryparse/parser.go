package queryparse

import (
	"fmt"

	"docindex/query"
)

// IndexResolver maps an index name (possibly dotted, e.g. "a.b.c") to the
// concrete index the parsed query tree should reference.
type IndexResolver func(name string) (query.ComparableIndex, error)

// Parse parses expr into exactly one query tree, resolving index names via
// resolve. Malformed input, unknown operators, bad operand combinations,
// wrong any()/all() arity, and non-range chained comparators all produce
// an error. These are plain errors with no sentinel to match against, and
// CatalogQuery.Run returns them unchanged.
func Parse(expr string, resolve IndexResolver) (query.Node, error) {
	lx := newLexer(expr)
	toks, err := lx.tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, resolve: resolve}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, fmt.Errorf("queryparse: unexpected trailing input at %q", p.cur().text)
	}
	return node, nil
}

type parser struct {
	toks    []token
	pos     int
	resolve IndexResolver
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur().kind != k {
		return token{}, fmt.Errorf("queryparse: expected %s, got %q", what, p.cur().text)
	}
	return p.advance(), nil
}

// parseExpr := parseAnd (('or'|'|') parseAnd)*
func (p *parser) parseExpr() (query.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []query.Node{left}
	for p.cur().kind == tokOr || p.cur().kind == tokPipe {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return query.NewOr(operands...), nil
}

// parseAnd := parseNot (('and'|'&') parseNot)*
func (p *parser) parseAnd() (query.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	operands := []query.Node{left}
	for p.cur().kind == tokAnd || p.cur().kind == tokAmp {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return query.NewAnd(operands...), nil
}

// parseNot := ('not'|'~') parseNot | parseComparison
func (p *parser) parseNot() (query.Node, error) {
	if p.cur().kind == tokNot || p.cur().kind == tokTilde {
		p.advance()
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return query.NewNot(child), nil
	}
	return p.parseComparison()
}

// parseComparison handles grouping, the simple comparator forms, the
// in/not-in membership and function-call forms, and range chains.
func (p *parser) parseComparison() (query.Node, error) {
	if p.cur().kind == tokLParen {
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if p.cur().kind == tokIdent {
		return p.parseIdentLed()
	}
	return p.parseLiteralLedRange()
}

// parseIdentLed handles forms where a (possibly dotted) identifier leads:
// name == val, name != val, name <,<=,>,>= val, name in any([...]),
// name not in any([...])/all([...]).
func (p *parser) parseIdentLed() (query.Node, error) {
	name, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}

	switch p.cur().kind {
	case tokEq, tokNotEq:
		op := p.advance().kind
		idx, err := p.resolve(name)
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if op == tokEq {
			return query.Eq(idx, val), nil
		}
		return query.NotEq(idx, val), nil

	case tokLt, tokLe, tokGt, tokGe:
		op := p.advance().kind
		idx, err := p.resolve(name)
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch op {
		case tokLt:
			return query.Lt(idx, val), nil
		case tokLe:
			return query.Le(idx, val), nil
		case tokGt:
			return query.Gt(idx, val), nil
		default:
			return query.Ge(idx, val), nil
		}

	case tokIn:
		p.advance()
		if p.cur().kind == tokAny || p.cur().kind == tokAll {
			return p.parseFunctionMembership(name, false)
		}
		// Not the any()/all() function form: name was actually a bare
		// value (a Name reference), and what follows "in" is the index,
		// per the general "val in name" membership form.
		return p.parseValLedMembership(query.Name{Ident: name}, false)

	case tokNot:
		// "name not in any([...])" / "name not in all([...])", or the
		// general "name not in idx" form with name as a bare value.
		p.advance()
		if _, err := p.expect(tokIn, "'in'"); err != nil {
			return nil, err
		}
		if p.cur().kind == tokAny || p.cur().kind == tokAll {
			return p.parseFunctionMembership(name, true)
		}
		return p.parseValLedMembership(query.Name{Ident: name}, true)

	default:
		return nil, fmt.Errorf("queryparse: unexpected token %q after identifier %q", p.cur().text, name)
	}
}

// parseFunctionMembership parses any([...]) or all([...]) following
// "name in" / "name not in", arity-checking the single list/tuple
// argument.
func (p *parser) parseFunctionMembership(name string, negated bool) (query.Node, error) {
	idx, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	isAny := p.cur().kind == tokAny
	isAll := p.cur().kind == tokAll
	if !isAny && !isAll {
		return nil, fmt.Errorf("queryparse: expected any(...) or all(...) after %q in", name)
	}
	p.advance()
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	list, err := p.parseListArgument()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	switch {
	case isAny && !negated:
		return query.Any(idx, list), nil
	case isAny && negated:
		return query.NotAny(idx, list), nil
	case isAll && !negated:
		return query.All(idx, list), nil
	default:
		return query.NotAll(idx, list), nil
	}
}

// parseListArgument parses exactly one list or tuple literal, erroring on
// wrong arity (zero or more than one argument to any()/all()).
func (p *parser) parseListArgument() (query.ListOperand, error) {
	if p.cur().kind != tokLBracket && p.cur().kind != tokLParen {
		return query.ListOperand{}, fmt.Errorf("queryparse: any()/all() requires exactly one list/tuple argument")
	}
	v, err := p.parseValue()
	if err != nil {
		return query.ListOperand{}, err
	}
	list, ok := v.(query.ListOperand)
	if !ok {
		return query.ListOperand{}, fmt.Errorf("queryparse: any()/all() requires exactly one list/tuple argument")
	}
	return list, nil
}

// parseLiteralLedRange handles "val in name", "val not in name", and the
// four range-chain forms "a <(=) name <(=) b".
func (p *parser) parseLiteralLedRange() (query.Node, error) {
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	switch p.cur().kind {
	case tokIn:
		p.advance()
		return p.parseValLedMembership(first, false)

	case tokNot:
		p.advance()
		if _, err := p.expect(tokIn, "'in'"); err != nil {
			return nil, err
		}
		return p.parseValLedMembership(first, true)

	case tokLt, tokLe:
		startExclusive := p.cur().kind == tokLt
		p.advance()
		name, err := p.parseDottedIdent()
		if err != nil {
			return nil, err
		}
		idx, err := p.resolve(name)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokLt && p.cur().kind != tokLe {
			return nil, fmt.Errorf("queryparse: chained comparator other than a range form")
		}
		endExclusive := p.cur().kind == tokLt
		p.advance()
		hi, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return query.InRange(idx, first, hi, startExclusive, endExclusive), nil

	default:
		return nil, fmt.Errorf("queryparse: %q is not a valid expression statement", p.cur().text)
	}
}

// parseValLedMembership parses the index name following "in"/"not in" and
// builds Contains/NotContains(idx, val).
func (p *parser) parseValLedMembership(val query.Operand, negated bool) (query.Node, error) {
	name, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}
	idx, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	if negated {
		return query.NotContains(idx, val), nil
	}
	return query.Contains(idx, val), nil
}

func (p *parser) parseDottedIdent() (string, error) {
	t, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return "", err
	}
	name := t.text
	for p.cur().kind == tokDot {
		p.advance()
		next, err := p.expect(tokIdent, "identifier")
		if err != nil {
			return "", err
		}
		name += "." + next.text
	}
	return name, nil
}

// parseValue parses a single operand value: a literal, a list ([...]), a
// tuple ((...) of identifiers becomes a list of Name references), or a
// bare identifier (a Name reference for deferred binding).
func (p *parser) parseValue() (query.Operand, error) {
	switch p.cur().kind {
	case tokInt, tokFloat:
		v, err := parseNumberLiteral(p.advance())
		if err != nil {
			return nil, err
		}
		return query.Literal{Value: v}, nil
	case tokString:
		return query.Literal{Value: p.advance().text}, nil
	case tokIdent:
		return query.Name{Ident: p.advance().text}, nil
	case tokLBracket:
		return p.parseBracketed(tokLBracket, tokRBracket, false)
	case tokLParen:
		return p.parseBracketed(tokLParen, tokRParen, true)
	default:
		return nil, fmt.Errorf("queryparse: unexpected token %q in value position", p.cur().text)
	}
}

// parseBracketed parses a comma-separated value list delimited by open/
// close. isTuple distinguishes '(' ')' so an all-identifier tuple can be
// special-cased into Name references (already the default for bare idents
// via parseValue, so no extra work is needed beyond using the same
// element parser for both list and tuple).
func (p *parser) parseBracketed(open, closeTok tokenKind, isTuple bool) (query.Operand, error) {
	if _, err := p.expect(open, "bracket"); err != nil {
		return query.ListOperand{}, err
	}
	var values []any
	for p.cur().kind != closeTok {
		v, err := p.parseValue()
		if err != nil {
			return query.ListOperand{}, err
		}
		switch vv := v.(type) {
		case query.Literal:
			values = append(values, vv.Value)
		case query.Name:
			values = append(values, vv)
		case query.ListOperand:
			values = append(values, vv.Values)
		}
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(closeTok, "closing bracket"); err != nil {
		return query.ListOperand{}, err
	}
	_ = isTuple
	return query.ListOperand{Values: values}, nil
}
