package btree

import (
	"errors"

	"btreeidx/internal/storage/layout"
	"btreeidx/internal/telemetry"
)

// Update replaces the record at oldKey with newRecord, implemented as
// remove(oldKey) followed by insert(newRecord) under a single counter
// window. This is deliberately non-atomic: per spec.md §4.1, remove is
// expected to fail silently (logged) when oldKey is absent, so insert
// still runs unconditionally even when the remove half reports
// ErrKeyNotFound or ErrEmptyTree; only a structural/IO error aborts the
// insert half. If the insert half fails after a successful remove, the
// old record is already gone.
func (t *BTree) Update(oldKey int32, newRecord layout.Record) (telemetry.Report, error) {
	t.beginOperation()

	removeErr := t.remove(oldKey)
	if removeErr != nil && !errors.Is(removeErr, ErrKeyNotFound) && !errors.Is(removeErr, ErrEmptyTree) {
		if ferr := t.flush(); removeErr == nil {
			removeErr = ferr
		}
		return t.Report(), removeErr
	}

	err := t.insert(newRecord)
	if ferr := t.flush(); err == nil {
		err = ferr
	}
	if t.log != nil {
		if err != nil {
			t.log.Infow("update failed", "oldKey", oldKey, "newKey", newRecord.Key, "error", err)
		} else {
			t.log.Debugw("update ok", "oldKey", oldKey, "newKey", newRecord.Key)
		}
	}
	return t.Report(), err
}
