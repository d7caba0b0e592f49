package btree

import (
	"strconv"
	"strings"

	"btreeidx/internal/storage/layout"
	"btreeidx/internal/telemetry"
)

// Print renders a parenthesized in-order traversal of the tree, for
// debugging and for the testable in-order-ascending property (P1).
// Each key is rendered as "key" or "key:payload" depending on
// withPayloads; internal nodes interleave children and keys as
// "(child0 key0 child1 key1 ... childN)", leaves as "(key0 key1 ...)".
func (t *BTree) Print(withPayloads bool) (string, telemetry.Report, error) {
	t.beginOperation()
	s, err := t.print(withPayloads)
	if ferr := t.flush(); err == nil {
		err = ferr
	}
	return s, t.Report(), err
}

func (t *BTree) print(withPayloads bool) (string, error) {
	if t.rootID == 0 {
		return "", ErrEmptyTree
	}
	var b strings.Builder
	if err := t.printNode(&b, t.rootID, withPayloads); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *BTree) printNode(b *strings.Builder, pageID int32, withPayloads bool) error {
	page, err := t.store.GetIndexPage(pageID)
	if err != nil {
		return err
	}

	b.WriteByte('(')
	if page.IsLeaf() {
		for i, rec := range page.Records {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := t.writeKeyLabel(b, rec, withPayloads); err != nil {
				return err
			}
		}
	} else {
		for i, rec := range page.Records {
			if err := t.printNode(b, page.Pointers[i], withPayloads); err != nil {
				return err
			}
			b.WriteByte(' ')
			if err := t.writeKeyLabel(b, rec, withPayloads); err != nil {
				return err
			}
			b.WriteByte(' ')
		}
		if err := t.printNode(b, page.Pointers[len(page.Records)], withPayloads); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func (t *BTree) writeKeyLabel(b *strings.Builder, rec layout.IndexRecord, withPayloads bool) error {
	b.WriteString(strconv.Itoa(int(rec.Key)))
	if !withPayloads {
		return nil
	}
	dp, err := t.store.GetDataPage(rec.DataPageID)
	if err != nil {
		return err
	}
	full, found := dp.Find(rec.Key)
	if !found {
		invariantViolation("print: key %d missing from data page %d", rec.Key, rec.DataPageID)
	}
	b.WriteByte(':')
	b.WriteString(full.Payload)
	return nil
}
