// Package store defines the persistent-object-store contract the core
// consumes but never implements: ordered integer-keyed maps, integer
// sets, a counter primitive, transactional commit/abort, and the ability
// to mark an attribute transient (non-persistent, reconstructed lazily).
// Concrete backings live in store/memstore (in-process reference) and
// store/boltstore (go.etcd.io/bbolt backed, durable across process
// restarts).
package store

import "errors"

// ErrNoTransaction is returned by Commit/Abort when called outside an
// active transaction.
var ErrNoTransaction = errors.New("store: no active transaction")

// ErrClosed is returned by any operation attempted after Close.
var ErrClosed = errors.New("store: store is closed")

// OrderedMap is an ordered int64-keyed map of opaque byte-slice values,
// iterable in key order.
type OrderedMap interface {
	Get(key int64) ([]byte, bool, error)
	Set(key int64, value []byte) error
	Delete(key int64) error
	Iterate(fn func(key int64, value []byte) (keepGoing bool, err error)) error
	Len() (int, error)
}

// IntSet is a persistent set of int64 keys.
type IntSet interface {
	Add(id int64) error
	Remove(id int64) error
	Contains(id int64) (bool, error)
	Members() ([]int64, error)
	Len() (int, error)
}

// Counter is a persistent monotonic-capable integer primitive.
type Counter interface {
	Value() (int64, error)
	Increment(delta int64) (int64, error)
	Set(v int64) error
}

// Store is the abstract persistent-object-store contract. KeyWidth is
// either 32 or 64, fixing the integer domain of every container this
// store hands out.
type Store interface {
	KeyWidth() int

	OrderedMap(name string) (OrderedMap, error)
	IntSet(name string) (IntSet, error)
	Counter(name string) (Counter, error)

	// MarkTransient records that name's backing data must never be
	// persisted; concrete stores skip it on Commit and treat it as
	// absent (to be lazily rebuilt by the caller) after a reopen.
	MarkTransient(name string) error

	Begin() (Tx, error)
	Close() error
}

// Tx is a single transactional unit of work.
type Tx interface {
	Commit() error
	Abort() error
}
