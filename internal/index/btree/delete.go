package btree

import (
	"btreeidx/internal/storage/layout"
	"btreeidx/internal/telemetry"
)

// Remove deletes the record with the given key, wherever in the tree
// it lives, and reclaims its data-file slot.
func (t *BTree) Remove(key int32) (telemetry.Report, error) {
	t.beginOperation()
	err := t.remove(key)
	if ferr := t.flush(); err == nil {
		err = ferr
	}
	if t.log != nil {
		if err != nil {
			t.log.Infow("remove failed", "key", key, "error", err)
		} else {
			t.log.Debugw("remove ok", "key", key)
		}
	}
	return t.Report(), err
}

func (t *BTree) remove(key int32) error {
	if t.rootID == 0 {
		return ErrEmptyTree
	}
	return t.deleteFromSubtree(t.rootID, nil, key)
}

// deleteFromSubtree walks toward key, deleting it in place at a leaf
// or, for an internal-node hit, via predecessor/successor substitution.
func (t *BTree) deleteFromSubtree(pageID int32, path descentPath, key int32) error {
	page, err := t.store.GetIndexPage(pageID)
	if err != nil {
		return err
	}
	pos, found := findPosition(page, key)

	if found {
		if page.IsLeaf() {
			target := page.Records[pos]
			removeRecordAt(page, pos)
			page.Dirty = true
			if ok, err := t.store.RemoveRecordFromDataFile(target.DataPageID, target.Key); err != nil {
				return err
			} else if !ok {
				invariantViolation("delete: data record for key %d missing from page %d", target.Key, target.DataPageID)
			}
			return t.repair(page, path)
		}
		return t.deleteInternalRecord(page, path, pos)
	}

	if page.IsLeaf() {
		return ErrKeyNotFound
	}
	childID := page.Pointers[pos]
	next := appendPath(path, pathEntry{pageID: pageID, childIndex: pos})
	return t.deleteFromSubtree(childID, next, key)
}

func appendPath(path descentPath, entry pathEntry) descentPath {
	next := make(descentPath, len(path), len(path)+1)
	copy(next, path)
	return append(next, entry)
}

// deleteInternalRecord removes the key held at page.Records[idx] by
// substituting the predecessor (rightmost descendant of the left
// child) when it has spare records, else the successor (leftmost
// descendant of the right child) when it does, else the predecessor
// regardless — repair then handles the resulting underflow.
func (t *BTree) deleteInternalRecord(page *layout.IndexPage, path descentPath, idx int) error {
	leftChildID := page.Pointers[idx]
	rightChildID := page.Pointers[idx+1]

	leftChild, err := t.store.GetIndexPage(leftChildID)
	if err != nil {
		return err
	}
	if leftChild.N() > t.order {
		return t.replaceWithPredecessor(page, path, idx, leftChildID)
	}

	rightChild, err := t.store.GetIndexPage(rightChildID)
	if err != nil {
		return err
	}
	if rightChild.N() > t.order {
		return t.replaceWithSuccessor(page, path, idx, rightChildID)
	}

	return t.replaceWithPredecessor(page, path, idx, leftChildID)
}

func (t *BTree) replaceWithPredecessor(page *layout.IndexPage, path descentPath, idx int, leftChildID int32) error {
	basePath := appendPath(path, pathEntry{pageID: page.PageID, childIndex: idx})
	leaf, fullPath, err := t.descendRightmost(leftChildID, basePath)
	if err != nil {
		return err
	}

	evicted := page.Records[idx]
	pred := leaf.Records[len(leaf.Records)-1]
	page.Records[idx] = pred
	page.Dirty = true

	removeRecordAt(leaf, len(leaf.Records)-1)
	leaf.Dirty = true

	if ok, err := t.store.RemoveRecordFromDataFile(evicted.DataPageID, evicted.Key); err != nil {
		return err
	} else if !ok {
		invariantViolation("delete: data record for key %d missing from page %d", evicted.Key, evicted.DataPageID)
	}
	return t.repair(leaf, fullPath)
}

func (t *BTree) replaceWithSuccessor(page *layout.IndexPage, path descentPath, idx int, rightChildID int32) error {
	basePath := appendPath(path, pathEntry{pageID: page.PageID, childIndex: idx + 1})
	leaf, fullPath, err := t.descendLeftmost(rightChildID, basePath)
	if err != nil {
		return err
	}

	evicted := page.Records[idx]
	succ := leaf.Records[0]
	page.Records[idx] = succ
	page.Dirty = true

	removeRecordAt(leaf, 0)
	leaf.Dirty = true

	if ok, err := t.store.RemoveRecordFromDataFile(evicted.DataPageID, evicted.Key); err != nil {
		return err
	} else if !ok {
		invariantViolation("delete: data record for key %d missing from page %d", evicted.Key, evicted.DataPageID)
	}
	return t.repair(leaf, fullPath)
}

func (t *BTree) descendRightmost(startID int32, base descentPath) (*layout.IndexPage, descentPath, error) {
	pageID := startID
	path := base
	for {
		page, err := t.store.GetIndexPage(pageID)
		if err != nil {
			return nil, nil, err
		}
		if page.IsLeaf() {
			return page, path, nil
		}
		childIdx := len(page.Pointers) - 1
		path = appendPath(path, pathEntry{pageID: pageID, childIndex: childIdx})
		pageID = page.Pointers[childIdx]
	}
}

func (t *BTree) descendLeftmost(startID int32, base descentPath) (*layout.IndexPage, descentPath, error) {
	pageID := startID
	path := base
	for {
		page, err := t.store.GetIndexPage(pageID)
		if err != nil {
			return nil, nil, err
		}
		if page.IsLeaf() {
			return page, path, nil
		}
		path = appendPath(path, pathEntry{pageID: pageID, childIndex: 0})
		pageID = page.Pointers[0]
	}
}

func removeRecordAt(page *layout.IndexPage, pos int) {
	copy(page.Records[pos:], page.Records[pos+1:])
	page.Records = page.Records[:len(page.Records)-1]
}

func removePointerAt(page *layout.IndexPage, pos int) {
	copy(page.Pointers[pos:], page.Pointers[pos+1:])
	page.Pointers = page.Pointers[:len(page.Pointers)-1]
}

// repair restores the minimum-occupancy invariant for node after a
// deletion, walking up path as compensation and merge cascade.
func (t *BTree) repair(node *layout.IndexPage, path descentPath) error {
	if path.isRoot() {
		return t.repairRoot(node)
	}
	if node.N() >= t.minRecords() {
		return nil
	}

	parentEntry, rest := path.last()
	parent, err := t.store.GetIndexPage(parentEntry.pageID)
	if err != nil {
		return err
	}
	childIdx := parentEntry.childIndex

	var left *layout.IndexPage
	if childIdx > 0 {
		leftID := parent.Pointers[childIdx-1]
		left, err = t.store.GetIndexPage(leftID)
		if err != nil {
			return err
		}
		if left.N() > t.minRecords() {
			return t.compensateDeleteLeft(left, node, parent, childIdx-1)
		}
		t.store.ReduceUsageIndex(leftID)
	}

	var right *layout.IndexPage
	if childIdx < len(parent.Pointers)-1 {
		rightID := parent.Pointers[childIdx+1]
		right, err = t.store.GetIndexPage(rightID)
		if err != nil {
			return err
		}
		if right.N() > t.minRecords() {
			return t.compensateDeleteRight(node, right, parent, childIdx)
		}
		t.store.ReduceUsageIndex(rightID)
	}

	if right != nil {
		return t.mergeNodes(node, right, parent, childIdx, rest)
	}
	if left != nil {
		return t.mergeNodes(left, node, parent, childIdx-1, rest)
	}

	invariantViolation("repair: node %d has no sibling to merge with", node.PageID)
	return nil
}

// compensateDeleteLeft borrows from the left sibling: the parent
// separator slides down as node's new leftmost record, left's last
// record rises to take its place in the parent.
func (t *BTree) compensateDeleteLeft(left, node, parent *layout.IndexPage, sepIdx int) error {
	sep := parent.Records[sepIdx]
	node.Records = append([]layout.IndexRecord{sep}, node.Records...)

	liftedIdx := len(left.Records) - 1
	lifted := left.Records[liftedIdx]
	left.Records = left.Records[:liftedIdx]
	parent.Records[sepIdx] = lifted

	if !node.IsLeaf() {
		lastPtrIdx := len(left.Pointers) - 1
		movedChild := left.Pointers[lastPtrIdx]
		left.Pointers = left.Pointers[:lastPtrIdx]
		node.Pointers = append([]int32{movedChild}, node.Pointers...)
		if err := t.updateParentPointer(movedChild, node.PageID); err != nil {
			return err
		}
	}

	left.Dirty, node.Dirty, parent.Dirty = true, true, true
	return nil
}

// compensateDeleteRight is the mirror of compensateDeleteLeft, using
// the right sibling's first record and first child.
func (t *BTree) compensateDeleteRight(node, right, parent *layout.IndexPage, sepIdx int) error {
	sep := parent.Records[sepIdx]
	node.Records = append(node.Records, sep)

	lifted := right.Records[0]
	right.Records = right.Records[1:]
	parent.Records[sepIdx] = lifted

	if !node.IsLeaf() {
		movedChild := right.Pointers[0]
		right.Pointers = right.Pointers[1:]
		node.Pointers = append(node.Pointers, movedChild)
		if err := t.updateParentPointer(movedChild, node.PageID); err != nil {
			return err
		}
	}

	node.Dirty, right.Dirty, parent.Dirty = true, true, true
	return nil
}

// mergeNodes absorbs right and the parent separator at sepIdx into
// left, then removes that separator and right's pointer from parent,
// recursively repairing the parent.
func (t *BTree) mergeNodes(left, right, parent *layout.IndexPage, sepIdx int, rest descentPath) error {
	sep := parent.Records[sepIdx]
	merged := append(append(append([]layout.IndexRecord{}, left.Records...), sep), right.Records...)
	left.Records = merged

	if !left.IsLeaf() {
		mergedPtrs := append(append([]int32{}, left.Pointers...), right.Pointers...)
		left.Pointers = mergedPtrs
		if err := t.updateChildrenParents(right.Pointers, left.PageID); err != nil {
			return err
		}
	}
	left.Dirty = true

	right.Records = nil
	right.Pointers = nil
	right.ParentPageID = layout.SentinelKey
	right.Dirty = true

	removeRecordAt(parent, sepIdx)
	removePointerAt(parent, sepIdx+1)
	parent.Dirty = true

	return t.repair(parent, rest)
}

// repairRoot collapses the root when it has been emptied by a merge:
// an emptied leaf root means the tree is now empty; an emptied
// internal root is replaced by its sole remaining child.
func (t *BTree) repairRoot(node *layout.IndexPage) error {
	if node.N() > 0 {
		return nil
	}
	if node.IsLeaf() {
		node.Records = nil
		node.Pointers = nil
		node.ParentPageID = layout.SentinelKey
		node.Dirty = true
		t.rootID = 0
		t.height = 0
		return nil
	}

	if len(node.Pointers) != 1 {
		invariantViolation("root collapse: expected exactly 1 child, got %d", len(node.Pointers))
	}
	soleChildID := node.Pointers[0]
	soleChild, err := t.store.GetIndexPage(soleChildID)
	if err != nil {
		return err
	}
	soleChild.ParentPageID = layout.SentinelKey
	soleChild.Dirty = true

	node.Records = nil
	node.Pointers = nil
	node.ParentPageID = layout.SentinelKey
	node.Dirty = true

	t.rootID = soleChildID
	t.height--
	return nil
}
