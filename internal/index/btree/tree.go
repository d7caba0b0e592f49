// Package btree implements the B-tree algorithmic layer: insertion
// with compensation-before-split, deletion with compensation-before-
// merge, internal-node deletion via leaf predecessor/successor, and
// root collapse. It consumes a pagestore.PageStore for all persistence
// and never touches a file directly.
package btree

import (
	"go.uber.org/zap"

	"btreeidx/internal/storage/layout"
	"btreeidx/internal/storage/pagestore"
	"btreeidx/internal/telemetry"
)

// BTree is the algorithmic layer over a PageStore. SentinelKey
// (0x7FFFFFFF) is forbidden as a user key.
type BTree struct {
	store  *pagestore.PageStore
	order  int
	rootID int32 // 0 means the tree is empty; page ids are 1-based
	height int
	log    *zap.SugaredLogger
}

// New builds an empty BTree of the given order over store.
func New(store *pagestore.PageStore, order int, log *zap.SugaredLogger) *BTree {
	return &BTree{store: store, order: order, log: log}
}

// Height returns the current tree height (0 for an empty tree).
func (t *BTree) Height() int { return t.height }

// Report snapshots the store's I/O counters alongside the current
// height, matching the stdout line spec.md §6 requires.
func (t *BTree) Report() telemetry.Report {
	return telemetry.Report{
		Counters: telemetry.Counters{
			IndexReads:  t.store.IndexReads,
			IndexWrites: t.store.IndexWrites,
			DataReads:   t.store.DataReads,
			DataWrites:  t.store.DataWrites,
		},
		Height: t.height,
	}
}

// flush writes back every dirty buffered page and clears both buffers;
// the I/O counters are left as they are (beginOperation resets them at
// the start of the next operation). Every exported BTree operation
// calls this before returning, per spec.md §5's "each operation runs
// to completion, including flush, before the next begins".
func (t *BTree) flush() error {
	return t.store.FlushBuffers()
}

func (t *BTree) beginOperation() {
	t.store.ResetCounters()
}

// findPosition scans a node's records left to right and returns the
// first index whose key is >= k, and whether that slot is an exact
// match. Per spec.md §4.1.3/§4.1.2 this linear scan is the node-level
// primitive both search and descent use.
func findPosition(page *layout.IndexPage, k int32) (pos int, found bool) {
	for i, r := range page.Records {
		if r.Key == k {
			return i, true
		}
		if k < r.Key {
			return i, false
		}
	}
	return len(page.Records), false
}

// minRecords is d, the floor every non-root page must keep.
func (t *BTree) minRecords() int { return t.order }

// maxRecords is 2d, the ceiling every page must not exceed.
func (t *BTree) maxRecords() int { return 2 * t.order }

// updateParentPointer rewrites a child's persisted ParentPageID. This
// exists purely for on-disk format fidelity (spec.md invariant I6);
// the algorithms themselves navigate via the explicit descent path.
func (t *BTree) updateParentPointer(childID, newParentID int32) error {
	child, err := t.store.GetIndexPage(childID)
	if err != nil {
		return err
	}
	child.ParentPageID = newParentID
	child.Dirty = true
	return nil
}

// updateChildrenParents rewrites ParentPageID for every child pointer
// in pointers to ownerID.
func (t *BTree) updateChildrenParents(pointers []int32, ownerID int32) error {
	for _, childID := range pointers {
		if childID == layout.SentinelKey {
			continue
		}
		if err := t.updateParentPointer(childID, ownerID); err != nil {
			return err
		}
	}
	return nil
}
