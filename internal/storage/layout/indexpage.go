package layout

import (
	"encoding/binary"
	"fmt"
)

// IndexRecord is a (key, data-page-id) entry stored inside an index page.
type IndexRecord struct {
	Key        int32
	DataPageID int32
}

// IndexPage is a B-tree node: an ordered list of IndexRecords
// interleaved with child page ids, plus a back-pointer to its parent
// page. Leaf == true iff Pointers is empty; otherwise
// len(Pointers) == len(Records)+1.
type IndexPage struct {
	PageID       int32
	Order        int
	Records      []IndexRecord
	Pointers     []int32 // nil/empty for a leaf
	ParentPageID int32   // SentinelKey if root
	Leaf         bool
	Dirty        bool
}

// NewIndexPage returns an empty page of the given kind.
func NewIndexPage(pageID int32, order int, leaf bool) *IndexPage {
	p := &IndexPage{
		PageID:       pageID,
		Order:        order,
		ParentPageID: SentinelKey,
		Leaf:         leaf,
		Dirty:        true,
	}
	if !leaf {
		p.Pointers = []int32{SentinelKey}
	}
	return p
}

// ID returns the page's identity, satisfying pagestore's buffer-frame interface.
func (p *IndexPage) ID() int32 { return p.PageID }

// IsDirty reports the page's dirty bit.
func (p *IndexPage) IsDirty() bool { return p.Dirty }

// N returns the number of records currently stored.
func (p *IndexPage) N() int { return len(p.Records) }

// IsLeaf reports whether the page has no children.
func (p *IndexPage) IsLeaf() bool { return p.Leaf || len(p.Pointers) == 0 }

// IsEmpty reports whether the page has zero records, zero pointers,
// and no parent (the definition used for root-collapse bookkeeping).
func (p *IndexPage) IsEmpty() bool {
	return len(p.Records) == 0 && len(p.Pointers) == 0 && p.ParentPageID == SentinelKey
}

// IndexPageSize returns the on-disk size, in bytes, of an index page
// of the given order: 24*order + 8.
func IndexPageSize(order int) int { return 24*order + 8 }

// IndexPageOffset returns the byte offset of the given 1-based page id
// within the index file.
func IndexPageOffset(pageID int32, order int) int64 {
	return (int64(pageID) - 1) * int64(IndexPageSize(order))
}

// EncodeIndexPage serializes p into an IndexPageSize(order)-byte block:
// p0 | (k1,dp1,p1) | ... | (k_2d,dp_2d,p_2d) | parent.
func EncodeIndexPage(p *IndexPage) []byte {
	cap2d := 2 * p.Order
	buf := make([]byte, IndexPageSize(p.Order))

	writeI32(buf[0:4], firstPointer(p))

	off := 4
	for i := 0; i < cap2d; i++ {
		var key, dp, ptr int32 = SentinelKey, SentinelKey, SentinelKey
		if i < len(p.Records) {
			key = p.Records[i].Key
			dp = p.Records[i].DataPageID
		}
		if !p.IsLeaf() && i+1 < len(p.Pointers) {
			ptr = p.Pointers[i+1]
		}
		writeI32(buf[off:off+4], key)
		writeI32(buf[off+4:off+8], dp)
		writeI32(buf[off+8:off+12], ptr)
		off += 12
	}
	writeI32(buf[off:off+4], p.ParentPageID)
	return buf
}

func firstPointer(p *IndexPage) int32 {
	if p.IsLeaf() || len(p.Pointers) == 0 {
		return SentinelKey
	}
	return p.Pointers[0]
}

// DecodeIndexPage parses an IndexPageSize(order)-byte block into an
// IndexPage. Leaf/internal is inferred from the first child pointer
// p0: a sentinel p0 means a leaf.
func DecodeIndexPage(buf []byte, pageID int32, order int) (*IndexPage, error) {
	want := IndexPageSize(order)
	if len(buf) != want {
		return nil, fmt.Errorf("layout: DecodeIndexPage: want %d bytes, got %d", want, len(buf))
	}
	cap2d := 2 * order
	p0 := readI32(buf[0:4])

	var records []IndexRecord
	var ptrs []int32
	off := 4
	for i := 0; i < cap2d; i++ {
		key := readI32(buf[off : off+4])
		dp := readI32(buf[off+4 : off+8])
		ptr := readI32(buf[off+8 : off+12])
		off += 12
		if key == SentinelKey {
			break
		}
		records = append(records, IndexRecord{Key: key, DataPageID: dp})
		ptrs = append(ptrs, ptr)
	}
	parentOff := 4 + 12*cap2d
	parent := readI32(buf[parentOff : parentOff+4])

	leaf := p0 == SentinelKey
	var pointers []int32
	if !leaf {
		pointers = append(pointers, p0)
		pointers = append(pointers, ptrs...)
	}

	return &IndexPage{
		PageID:       pageID,
		Order:        order,
		Records:      records,
		Pointers:     pointers,
		ParentPageID: parent,
		Leaf:         leaf,
	}, nil
}

func writeI32(b []byte, v int32) { binary.BigEndian.PutUint32(b, uint32(v)) }
func readI32(b []byte) int32     { return int32(binary.BigEndian.Uint32(b)) }
