// Package dump renders the on-disk index and data files as
// human-readable text, one page per line, independent of any buffer
// state — it reads both files directly the same way PageStore does
// when it misses its buffers.
package dump

import (
	"fmt"
	"os"
	"strings"

	"btreeidx/internal/storage/layout"
)

// IndexFile returns one line per stored index page: its id, leaf/
// internal kind, parent, records, and child pointers.
func IndexFile(path string, order int) (string, error) {
	pageSize := layout.IndexPageSize(order)
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("dump: read index file: %w", err)
	}

	var b strings.Builder
	count := len(buf) / pageSize
	for i := 0; i < count; i++ {
		id := int32(i + 1)
		page, err := layout.DecodeIndexPage(buf[i*pageSize:(i+1)*pageSize], id, order)
		if err != nil {
			return "", fmt.Errorf("dump: decode index page %d: %w", id, err)
		}
		writeIndexPage(&b, page)
	}
	return b.String(), nil
}

func writeIndexPage(b *strings.Builder, page *layout.IndexPage) {
	kind := "internal"
	if page.IsLeaf() {
		kind = "leaf"
	}
	fmt.Fprintf(b, "index[%d] %s parent=%d records=", page.PageID, kind, page.ParentPageID)
	for i, r := range page.Records {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "(%d->dp%d)", r.Key, r.DataPageID)
	}
	if !page.IsLeaf() {
		b.WriteString(" children=")
		for i, p := range page.Pointers {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%d", p)
		}
	}
	b.WriteByte('\n')
}

// DataFile returns one line per stored data page listing its live
// records; sentinel slots are omitted.
func DataFile(path string, order int) (string, error) {
	pageSize := layout.PageSize(order)
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("dump: read data file: %w", err)
	}

	var b strings.Builder
	count := len(buf) / pageSize
	for i := 0; i < count; i++ {
		id := int32(i + 1)
		page, err := layout.DecodeDataPage(buf[i*pageSize:(i+1)*pageSize], id, order)
		if err != nil {
			return "", fmt.Errorf("dump: decode data page %d: %w", id, err)
		}
		writeDataPage(&b, page)
	}
	return b.String(), nil
}

func writeDataPage(b *strings.Builder, page *layout.DataPage) {
	fmt.Fprintf(b, "data[%d] count=%d/%d records=", page.PageNumber, page.Count(), page.Capacity())
	first := true
	for _, r := range page.Records {
		if r.IsEmpty() {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(b, "(%d:%s)", r.Key, r.Payload)
	}
	b.WriteByte('\n')
}
