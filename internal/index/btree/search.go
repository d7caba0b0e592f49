package btree

import "btreeidx/internal/telemetry"

// Search reports whether key exists anywhere in the tree.
func (t *BTree) Search(key int32) (bool, telemetry.Report, error) {
	t.beginOperation()
	found, err := t.search(key)
	if ferr := t.flush(); err == nil {
		err = ferr
	}
	return found, t.Report(), err
}

func (t *BTree) search(key int32) (bool, error) {
	if t.rootID == 0 {
		return false, nil
	}
	pageID := t.rootID
	for {
		page, err := t.store.GetIndexPage(pageID)
		if err != nil {
			return false, err
		}
		pos, found := findPosition(page, key)
		if found {
			return true, nil
		}
		if page.IsLeaf() {
			return false, nil
		}
		pageID = page.Pointers[pos]
	}
}
