package btree

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned by Insert when the key is already present
// anywhere in the tree.
var ErrDuplicateKey = errors.New("btree: record already exists")

// ErrKeyNotFound is returned by Remove when the descent terminates at
// a leaf without a match.
var ErrKeyNotFound = errors.New("btree: no record with that key")

// ErrEmptyTree is returned by Remove and Print on an empty tree.
var ErrEmptyTree = errors.New("btree: tree is empty")

// invariantViolation panics on a structural condition the algorithm
// treats as must-never-happen (spec.md §7): a missing sibling during
// merge, a corrupt page shape, and the like. These are not recoverable
// the way DuplicateKey/KeyNotFound are.
func invariantViolation(format string, args ...any) {
	panic(fmt.Errorf("btree: invariant violation: "+format, args...))
}
