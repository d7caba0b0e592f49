// Package pagestore implements the page store and buffer manager: two
// parallel files (index, data), fixed-size slotted pages, free-page
// recycling, and per-file LRU buffers with dirty-bit write-back.
//
// Per spec.md §5, the two files are opened per I/O call in
// random-access mode; no long-lived file handle is kept between calls,
// and every open is paired with a guaranteed close.
package pagestore

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"btreeidx/internal/storage/layout"
)

// PageStore owns both files, serializes/deserializes pages, tracks
// free (reusable) index pages and partially-full data pages, maintains
// two independent LRU buffers, and counts reads/writes.
type PageStore struct {
	indexPath string
	dataPath  string
	order     int
	log       *zap.SugaredLogger

	indexBuf *lruBuffer[*layout.IndexPage]
	dataBuf  *lruBuffer[*layout.DataPage]

	freeIndexIDs   []int32 // recycled, reusable index page ids
	nonFullDataIDs []int32 // data pages with spare capacity
	nextIndexID    int32   // monotonic counter for fresh index ids
	nextDataID     int32   // monotonic counter for fresh data ids
	tailDataPageID int32   // 0 means "no tail yet"

	IndexReads  int
	IndexWrites int
	DataReads   int
	DataWrites  int
}

// Options configures a new PageStore.
type Options struct {
	IndexPath           string
	DataPath            string
	Order               int
	IndexBufferCapacity int
	DataBufferCapacity  int
	Logger              *zap.SugaredLogger
}

// New truncates both files (this is a learning tool, not a durable
// store) and returns a ready PageStore.
func New(opts Options) (*PageStore, error) {
	if err := truncateFile(opts.IndexPath); err != nil {
		return nil, fmt.Errorf("pagestore: truncate index file: %w", err)
	}
	if err := truncateFile(opts.DataPath); err != nil {
		return nil, fmt.Errorf("pagestore: truncate data file: %w", err)
	}

	s := &PageStore{
		indexPath:   opts.IndexPath,
		dataPath:    opts.DataPath,
		order:       opts.Order,
		log:         opts.Logger,
		nextIndexID: 1,
		nextDataID:  1,
	}
	s.indexBuf = newLRUBuffer(opts.IndexBufferCapacity, s.saveIndexPage)
	s.dataBuf = newLRUBuffer(opts.DataBufferCapacity, s.saveDataPage)
	return s, nil
}

func truncateFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// ResetCounters zeroes the I/O counters; called at the start of every
// user-visible operation.
func (s *PageStore) ResetCounters() {
	s.IndexReads, s.IndexWrites, s.DataReads, s.DataWrites = 0, 0, 0, 0
}

// Order returns the tree order this store was configured with.
func (s *PageStore) Order() int { return s.order }

// ───────────────────────────────────────────────────────────────────
// Index pages
// ───────────────────────────────────────────────────────────────────

// GetIndexPage returns the index page with the given id, from the
// buffer if cached (moving it to MRU), otherwise from the index file.
func (s *PageStore) GetIndexPage(id int32) (*layout.IndexPage, error) {
	if p, ok := s.indexBuf.get(id); ok {
		return p, nil
	}
	p, err := s.readIndexPage(id)
	if err != nil {
		return nil, err
	}
	s.IndexReads++
	if _, _, err := s.indexBuf.admit(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReduceUsageIndex demotes an index page to the LRU tail without
// evicting it. BTree calls this after consulting a sibling whose
// record count disqualified it from compensation.
func (s *PageStore) ReduceUsageIndex(id int32) {
	s.indexBuf.reduceUsage(id)
}

// CreateNewIndexPage allocates a fresh index page: the head of the
// free-id list if non-empty, else a freshly minted id. The page is
// always admitted to the buffer dirty.
func (s *PageStore) CreateNewIndexPage(leaf bool) (*layout.IndexPage, error) {
	var id int32
	if len(s.freeIndexIDs) > 0 {
		id, s.freeIndexIDs = s.freeIndexIDs[0], s.freeIndexIDs[1:]
	} else {
		id = s.nextIndexID
		s.nextIndexID++
	}
	p := layout.NewIndexPage(id, s.order, leaf)
	if _, _, err := s.indexBuf.admit(p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkIndexDirty flags a page for write-back; call after any mutation.
func (s *PageStore) MarkIndexDirty(p *layout.IndexPage) { p.Dirty = true }

func (s *PageStore) readIndexPage(id int32) (*layout.IndexPage, error) {
	f, err := os.OpenFile(s.indexPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pagestore: open index file: %w", err)
	}
	defer f.Close()

	size := layout.IndexPageSize(s.order)
	buf := make([]byte, size)
	off := layout.IndexPageOffset(id, s.order)
	if _, err := f.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("pagestore: read index page %d: %w", id, err)
	}
	return layout.DecodeIndexPage(buf, id, s.order)
}

// saveIndexPage writes p only if its dirty bit is set. A save that
// finds the page empty also records its id into the free list.
func (s *PageStore) saveIndexPage(p *layout.IndexPage) error {
	if !p.Dirty {
		return nil
	}
	f, err := os.OpenFile(s.indexPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("pagestore: open index file: %w", err)
	}
	defer f.Close()

	buf := layout.EncodeIndexPage(p)
	off := layout.IndexPageOffset(p.PageID, s.order)
	if _, err := f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("pagestore: write index page %d: %w", p.PageID, err)
	}
	s.IndexWrites++
	p.Dirty = false

	if p.IsEmpty() {
		s.recycleIndexID(p.PageID)
	}
	return nil
}

func (s *PageStore) recycleIndexID(id int32) {
	for _, existing := range s.freeIndexIDs {
		if existing == id {
			return
		}
	}
	s.freeIndexIDs = append(s.freeIndexIDs, id)
}

// ───────────────────────────────────────────────────────────────────
// Data pages
// ───────────────────────────────────────────────────────────────────

// GetDataPage returns the data page with the given id, from the
// buffer if cached, otherwise from the data file.
func (s *PageStore) GetDataPage(id int32) (*layout.DataPage, error) {
	if p, ok := s.dataBuf.get(id); ok {
		return p, nil
	}
	p, err := s.readDataPage(id)
	if err != nil {
		return nil, err
	}
	s.DataReads++
	if _, _, err := s.dataBuf.admit(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateNewDataPage allocates a data page: the head of the non-full
// list if one exists (loaded with its remaining records), else a fresh
// id appended at the tail.
func (s *PageStore) CreateNewDataPage() (*layout.DataPage, error) {
	var id int32
	if len(s.nonFullDataIDs) > 0 {
		id, s.nonFullDataIDs = s.nonFullDataIDs[0], s.nonFullDataIDs[1:]
		return s.GetDataPage(id)
	} else {
		id = s.nextDataID
		s.nextDataID++
	}
	p := layout.NewDataPage(id, s.order)
	if _, _, err := s.dataBuf.admit(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddRecordToDataFile appends rec to the current tail data page,
// allocating or reusing a non-full page first if the tail is full or
// absent. Returns the id of the page the record landed on.
func (s *PageStore) AddRecordToDataFile(rec layout.Record) (int32, error) {
	var tail *layout.DataPage
	var err error

	if s.tailDataPageID != 0 {
		tail, err = s.GetDataPage(s.tailDataPageID)
		if err != nil {
			return 0, err
		}
	}

	if tail == nil || tail.IsFull() {
		tail, err = s.CreateNewDataPage()
		if err != nil {
			return 0, err
		}
		s.tailDataPageID = tail.PageNumber
	}

	tail.Append(rec)
	return tail.PageNumber, nil
}

// RemoveRecordFromDataFile deletes the record with the given key from
// the named data page. If the page is not the tail and isn't already
// tracked as non-full, it is registered there for future reuse.
// Reports whether a record was actually removed.
func (s *PageStore) RemoveRecordFromDataFile(pageID, key int32) (bool, error) {
	p, err := s.GetDataPage(pageID)
	if err != nil {
		return false, err
	}
	if !p.Remove(key) {
		return false, nil
	}

	if pageID != s.tailDataPageID {
		already := false
		for _, id := range s.nonFullDataIDs {
			if id == pageID {
				already = true
				break
			}
		}
		if !already {
			s.nonFullDataIDs = append(s.nonFullDataIDs, pageID)
		}
	}
	return true, nil
}

func (s *PageStore) readDataPage(id int32) (*layout.DataPage, error) {
	f, err := os.OpenFile(s.dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pagestore: open data file: %w", err)
	}
	defer f.Close()

	size := layout.PageSize(s.order)
	buf := make([]byte, size)
	off := layout.DataPageOffset(id, s.order)
	if _, err := f.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, fmt.Errorf("pagestore: read data page %d: %w", id, err)
	}
	return layout.DecodeDataPage(buf, id, s.order)
}

// saveDataPage writes p only if its dirty bit is set; unused slots
// are always sentinel bytes because DataPage.Records is fixed-width.
func (s *PageStore) saveDataPage(p *layout.DataPage) error {
	if !p.Dirty {
		return nil
	}
	f, err := os.OpenFile(s.dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("pagestore: open data file: %w", err)
	}
	defer f.Close()

	buf := layout.EncodeDataPage(p)
	off := layout.DataPageOffset(p.PageNumber, s.order)
	if _, err := f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("pagestore: write data page %d: %w", p.PageNumber, err)
	}
	s.DataWrites++
	p.Dirty = false
	return nil
}

// ───────────────────────────────────────────────────────────────────
// Flush
// ───────────────────────────────────────────────────────────────────

// FlushBuffers writes back every dirty buffered page from both
// buffers and clears both buffers. Called at the end of every
// user-visible operation.
func (s *PageStore) FlushBuffers() error {
	for _, p := range s.indexBuf.drain() {
		if err := s.saveIndexPage(p); err != nil {
			return err
		}
	}
	for _, p := range s.dataBuf.drain() {
		if err := s.saveDataPage(p); err != nil {
			return err
		}
	}
	if s.log != nil {
		s.log.Debugw("flushed buffers",
			"indexReads", s.IndexReads, "indexWrites", s.IndexWrites,
			"dataReads", s.DataReads, "dataWrites", s.DataWrites)
	}
	return nil
}
