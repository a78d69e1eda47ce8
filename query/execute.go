package query

import "docindex/catalog/resultset"

// Resolver resolves a docid to its underlying object, for a ResultSet.
type Resolver func(DocId) (any, error)

// ExecuteOptions configures Execute.
type ExecuteOptions struct {
	Optimize bool
	Bindings Bindings
	Resolver Resolver
}

// Execute is the query entry point: it optionally optimizes n, applies
// it, and wraps the resulting docid set in a ResultSet. It rejects a
// query that references no concrete index.
func Execute(n Node, opts ExecuteOptions) (*resultset.ResultSet, error) {
	if !n.referencesIndex() {
		return nil, ErrNoIndex
	}
	if opts.Optimize {
		n = Optimize(n)
	}
	ids, err := n.Apply(opts.Bindings)
	if err != nil {
		return nil, err
	}
	var resolve resultset.Resolver
	if opts.Resolver != nil {
		resolve = func(id resultset.DocId) (any, error) { return opts.Resolver(DocId(id)) }
	}
	docids := make([]resultset.DocId, 0, len(ids))
	for id := range ids {
		docids = append(docids, resultset.DocId(id))
	}
	return resultset.New(docids, resolve), nil
}
