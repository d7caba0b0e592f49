package btree

import (
	"btreeidx/internal/storage/layout"
	"btreeidx/internal/telemetry"
)

// Insert adds record to the data file and installs an IndexRecord for
// it. Fails with ErrDuplicateKey when the key already exists anywhere
// in the tree; per the resolved open question in SPEC_FULL.md §9, the
// descent for duplicates runs before any data-file mutation, so a
// rejected insert leaves no orphan data-page slot behind.
func (t *BTree) Insert(record layout.Record) (telemetry.Report, error) {
	t.beginOperation()
	err := t.insert(record)
	if ferr := t.flush(); err == nil {
		err = ferr
	}
	if t.log != nil {
		if err != nil {
			t.log.Infow("insert failed", "key", record.Key, "error", err)
		} else {
			t.log.Debugw("insert ok", "key", record.Key)
		}
	}
	return t.Report(), err
}

func (t *BTree) insert(record layout.Record) error {
	if err := layout.Validate(record.Key, record.Payload); err != nil {
		return err
	}

	if t.rootID == 0 {
		dataPageID, err := t.store.AddRecordToDataFile(record)
		if err != nil {
			return err
		}
		leaf, err := t.store.CreateNewIndexPage(true)
		if err != nil {
			return err
		}
		leaf.Records = []layout.IndexRecord{{Key: record.Key, DataPageID: dataPageID}}
		leaf.Dirty = true
		t.rootID = leaf.PageID
		t.height = 1
		return nil
	}

	path, leafID, leafPos, duplicate, err := t.descendForInsert(record.Key)
	if err != nil {
		return err
	}
	if duplicate {
		return ErrDuplicateKey
	}

	dataPageID, err := t.store.AddRecordToDataFile(record)
	if err != nil {
		return err
	}
	leaf, err := t.store.GetIndexPage(leafID)
	if err != nil {
		return err
	}
	insertRecordAt(leaf, leafPos, layout.IndexRecord{Key: record.Key, DataPageID: dataPageID})
	leaf.Dirty = true
	return t.bubbleInsert(leaf, path)
}

// descendForInsert walks from the root looking for key, reporting a
// duplicate as soon as it is found at any level (spec.md §4.1.3:
// equality is checked on every node visited, not just leaves).
func (t *BTree) descendForInsert(key int32) (path descentPath, leafID int32, pos int, duplicate bool, err error) {
	pageID := t.rootID
	for {
		page, gerr := t.store.GetIndexPage(pageID)
		if gerr != nil {
			return nil, 0, 0, false, gerr
		}
		p, found := findPosition(page, key)
		if found {
			return path, pageID, p, true, nil
		}
		if page.IsLeaf() {
			return path, pageID, p, false, nil
		}
		path = append(path, pathEntry{pageID: pageID, childIndex: p})
		pageID = page.Pointers[p]
	}
}

func insertRecordAt(page *layout.IndexPage, pos int, rec layout.IndexRecord) {
	page.Records = append(page.Records, layout.IndexRecord{})
	copy(page.Records[pos+1:], page.Records[pos:])
	page.Records[pos] = rec
}

func insertPointerAt(page *layout.IndexPage, pos int, childID int32) {
	page.Pointers = append(page.Pointers, 0)
	copy(page.Pointers[pos+1:], page.Pointers[pos:])
	page.Pointers[pos] = childID
}

// bubbleInsert handles a node that may have just overflowed to 2d+1
// records: it tries left-then-right compensation with a sibling before
// falling back to a split, recursing up the path as needed.
func (t *BTree) bubbleInsert(node *layout.IndexPage, path descentPath) error {
	if node.N() <= t.maxRecords() {
		node.Dirty = true
		return nil
	}

	if path.isRoot() {
		return t.splitRoot(node)
	}

	parentEntry, rest := path.last()
	parent, err := t.store.GetIndexPage(parentEntry.pageID)
	if err != nil {
		return err
	}
	childIdx := parentEntry.childIndex

	if childIdx > 0 {
		leftID := parent.Pointers[childIdx-1]
		left, lerr := t.store.GetIndexPage(leftID)
		if lerr != nil {
			return lerr
		}
		if left.N() < t.maxRecords() {
			return t.compensateInsertLeft(left, node, parent, childIdx-1)
		}
		t.store.ReduceUsageIndex(leftID)
	}
	if childIdx < len(parent.Pointers)-1 {
		rightID := parent.Pointers[childIdx+1]
		right, rerr := t.store.GetIndexPage(rightID)
		if rerr != nil {
			return rerr
		}
		if right.N() < t.maxRecords() {
			return t.compensateInsertRight(node, right, parent, childIdx)
		}
		t.store.ReduceUsageIndex(rightID)
	}

	return t.splitAndPromote(node, parent, childIdx, rest)
}

// compensateInsertLeft redistributes node's overflow with its left
// sibling through the parent separator at sepIdx.
func (t *BTree) compensateInsertLeft(left, node, parent *layout.IndexPage, sepIdx int) error {
	sep := parent.Records[sepIdx]
	combined := append(append(append([]layout.IndexRecord{}, left.Records...), sep), node.Records...)
	mid := len(combined) / 2
	newSep := combined[mid]

	if !node.IsLeaf() {
		combinedPtrs := append(append([]int32{}, left.Pointers...), node.Pointers...)
		leftPtrs := append([]int32{}, combinedPtrs[:mid+1]...)
		nodePtrs := append([]int32{}, combinedPtrs[mid+1:]...)
		left.Pointers = leftPtrs
		node.Pointers = nodePtrs
		if err := t.updateChildrenParents(leftPtrs, left.PageID); err != nil {
			return err
		}
		if err := t.updateChildrenParents(nodePtrs, node.PageID); err != nil {
			return err
		}
	}

	left.Records = append([]layout.IndexRecord{}, combined[:mid]...)
	node.Records = append([]layout.IndexRecord{}, combined[mid+1:]...)
	parent.Records[sepIdx] = newSep
	left.Dirty, node.Dirty, parent.Dirty = true, true, true
	return nil
}

// compensateInsertRight is the mirror of compensateInsertLeft using
// the right sibling.
func (t *BTree) compensateInsertRight(node, right, parent *layout.IndexPage, sepIdx int) error {
	sep := parent.Records[sepIdx]
	combined := append(append(append([]layout.IndexRecord{}, node.Records...), sep), right.Records...)
	mid := len(combined) / 2
	newSep := combined[mid]

	if !node.IsLeaf() {
		combinedPtrs := append(append([]int32{}, node.Pointers...), right.Pointers...)
		nodePtrs := append([]int32{}, combinedPtrs[:mid+1]...)
		rightPtrs := append([]int32{}, combinedPtrs[mid+1:]...)
		node.Pointers = nodePtrs
		right.Pointers = rightPtrs
		if err := t.updateChildrenParents(nodePtrs, node.PageID); err != nil {
			return err
		}
		if err := t.updateChildrenParents(rightPtrs, right.PageID); err != nil {
			return err
		}
	}

	node.Records = append([]layout.IndexRecord{}, combined[:mid]...)
	right.Records = append([]layout.IndexRecord{}, combined[mid+1:]...)
	parent.Records[sepIdx] = newSep
	node.Dirty, right.Dirty, parent.Dirty = true, true, true
	return nil
}

// splitAndPromote splits an overflowing non-root node: the element at
// index d is promoted to the parent; the new page always lands to the
// right of node.
func (t *BTree) splitAndPromote(node, parent *layout.IndexPage, childIdx int, rest descentPath) error {
	median, newPage, err := t.splitNode(node)
	if err != nil {
		return err
	}
	insertRecordAt(parent, childIdx, median)
	insertPointerAt(parent, childIdx+1, newPage.PageID)
	if err := t.updateParentPointer(newPage.PageID, parent.PageID); err != nil {
		return err
	}
	parent.Dirty = true
	return t.bubbleInsert(parent, rest)
}

// splitRoot splits an overflowing root, growing the tree's height.
func (t *BTree) splitRoot(node *layout.IndexPage) error {
	median, newPage, err := t.splitNode(node)
	if err != nil {
		return err
	}
	newRoot, err := t.store.CreateNewIndexPage(false)
	if err != nil {
		return err
	}
	newRoot.Records = []layout.IndexRecord{median}
	newRoot.Pointers = []int32{node.PageID, newPage.PageID}
	newRoot.Dirty = true

	node.ParentPageID = newRoot.PageID
	newPage.ParentPageID = newRoot.PageID
	node.Dirty, newPage.Dirty = true, true

	t.rootID = newRoot.PageID
	t.height++
	return nil
}

// splitNode divides an overflowing (2d+1 record) node in two, leaving
// indices [0,d) in node and moving (d,2d] into a freshly allocated
// page; it returns the record promoted to the parent and the new page.
func (t *BTree) splitNode(node *layout.IndexPage) (layout.IndexRecord, *layout.IndexPage, error) {
	medianIdx := t.order
	median := node.Records[medianIdx]
	leftRecs := append([]layout.IndexRecord{}, node.Records[:medianIdx]...)
	rightRecs := append([]layout.IndexRecord{}, node.Records[medianIdx+1:]...)

	newPage, err := t.store.CreateNewIndexPage(node.IsLeaf())
	if err != nil {
		return layout.IndexRecord{}, nil, err
	}

	node.Records = leftRecs
	newPage.Records = rightRecs

	if !node.IsLeaf() {
		leftPtrs := append([]int32{}, node.Pointers[:medianIdx+1]...)
		rightPtrs := append([]int32{}, node.Pointers[medianIdx+1:]...)
		node.Pointers = leftPtrs
		newPage.Pointers = rightPtrs
		newPage.Leaf = false
		if err := t.updateChildrenParents(rightPtrs, newPage.PageID); err != nil {
			return layout.IndexRecord{}, nil, err
		}
	} else {
		newPage.Leaf = true
	}

	node.Dirty = true
	newPage.Dirty = true
	return median, newPage, nil
}
