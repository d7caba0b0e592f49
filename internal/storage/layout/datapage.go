package layout

import "fmt"

// DataPage is a fixed-capacity bucket of Records, the unit of heap I/O.
// Capacity is 2*order records; unused slots hold the sentinel record.
type DataPage struct {
	PageNumber int32 // 1-based
	Order      int
	Records    []Record // len == Capacity(); unused entries are sentinel
	Dirty      bool
}

// ID returns the page's identity, satisfying pagestore's buffer-frame interface.
func (p *DataPage) ID() int32 { return p.PageNumber }

// IsDirty reports the page's dirty bit.
func (p *DataPage) IsDirty() bool { return p.Dirty }

// Capacity returns 2*order, the number of record slots on this page.
func (p *DataPage) Capacity() int { return 2 * p.Order }

// NewDataPage returns a fully-sentinel page of the given page number.
func NewDataPage(pageNumber int32, order int) *DataPage {
	recs := make([]Record, 2*order)
	for i := range recs {
		recs[i] = EmptyRecord()
	}
	return &DataPage{PageNumber: pageNumber, Order: order, Records: recs, Dirty: true}
}

// Count returns the number of live (non-sentinel) records on the page.
func (p *DataPage) Count() int {
	n := 0
	for _, r := range p.Records {
		if !r.IsEmpty() {
			n++
		}
	}
	return n
}

// IsFull reports whether every slot holds a live record.
func (p *DataPage) IsFull() bool { return p.Count() >= p.Capacity() }

// IsEmpty reports whether the page holds no live records.
func (p *DataPage) IsEmpty() bool { return p.Count() == 0 }

// Append places rec into the first free slot. Callers must check
// IsFull first; Append panics on a full page since that is a
// must-never-happen condition for the caller's allocation logic.
func (p *DataPage) Append(rec Record) {
	for i, r := range p.Records {
		if r.IsEmpty() {
			p.Records[i] = rec
			p.Dirty = true
			return
		}
	}
	panic(fmt.Sprintf("layout: Append on full data page %d", p.PageNumber))
}

// Find returns the record with the given key and true, or the zero
// Record and false if absent.
func (p *DataPage) Find(key int32) (Record, bool) {
	for _, r := range p.Records {
		if !r.IsEmpty() && r.Key == key {
			return r, true
		}
	}
	return Record{}, false
}

// Remove deletes the record with the given key, replacing its slot
// with the sentinel. Reports whether a record was removed.
func (p *DataPage) Remove(key int32) bool {
	for i, r := range p.Records {
		if !r.IsEmpty() && r.Key == key {
			p.Records[i] = EmptyRecord()
			p.Dirty = true
			return true
		}
	}
	return false
}

// PageSize returns the on-disk size, in bytes, of a data page of the
// given order: 34 * 2 * order.
func PageSize(order int) int { return RecordSize * 2 * order }

// DataPageOffset returns the byte offset of the given 1-based page
// number within the data file.
func DataPageOffset(pageNumber int32, order int) int64 {
	return (int64(pageNumber) - 1) * int64(PageSize(order))
}

// EncodeDataPage serializes p into a PageSize(order)-byte block.
func EncodeDataPage(p *DataPage) []byte {
	buf := make([]byte, PageSize(p.Order))
	off := 0
	for _, r := range p.Records {
		copy(buf[off:off+RecordSize], EncodeRecord(r))
		off += RecordSize
	}
	return buf
}

// DecodeDataPage parses a PageSize(order)-byte block into a DataPage.
func DecodeDataPage(buf []byte, pageNumber int32, order int) (*DataPage, error) {
	want := PageSize(order)
	if len(buf) != want {
		return nil, fmt.Errorf("layout: DecodeDataPage: want %d bytes, got %d", want, len(buf))
	}
	recs := make([]Record, 2*order)
	off := 0
	for i := range recs {
		r, err := DecodeRecord(buf[off : off+RecordSize])
		if err != nil {
			return nil, fmt.Errorf("layout: DecodeDataPage: slot %d: %w", i, err)
		}
		recs[i] = r
		off += RecordSize
	}
	return &DataPage{PageNumber: pageNumber, Order: order, Records: recs}, nil
}
