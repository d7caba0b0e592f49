package btree

import (
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"btreeidx/internal/storage/layout"
	"btreeidx/internal/storage/pagestore"
)

func newTestTree(t *testing.T, order, bufCap int) *BTree {
	t.Helper()
	dir := t.TempDir()
	store, err := pagestore.New(pagestore.Options{
		IndexPath:           filepath.Join(dir, "index.txt"),
		DataPath:            filepath.Join(dir, "data.txt"),
		Order:               order,
		IndexBufferCapacity: bufCap,
		DataBufferCapacity:  bufCap,
	})
	require.NoError(t, err)
	return New(store, order, nil)
}

func TestInsertAndSearchBasic(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 10, Payload: "ten"})
	require.NoError(t, err)

	found, _, err := tree.Search(10)
	require.NoError(t, err)
	require.True(t, found)

	found, _, err = tree.Search(99)
	require.NoError(t, err)
	require.False(t, found)
}

func TestInsertDuplicateKeyRejected(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "a"})
	require.NoError(t, err)

	_, err = tree.Insert(layout.Record{Key: 1, Payload: "b"})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertReservedKeyRejected(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: layout.SentinelKey, Payload: "x"})
	require.ErrorIs(t, err, layout.ErrReservedKey)
}

func TestRemoveOnEmptyTree(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Remove(1)
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestRemoveKeyNotFound(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "a"})
	require.NoError(t, err)

	_, err = tree.Remove(2)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSearchAfterInsertAndRemove(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 7, Payload: "seven"})
	require.NoError(t, err)

	found, _, err := tree.Search(7)
	require.NoError(t, err)
	require.True(t, found)

	_, err = tree.Remove(7)
	require.NoError(t, err)

	found, _, err = tree.Search(7)
	require.NoError(t, err)
	require.False(t, found)
}

func TestUpdateReplacesRecord(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "old"})
	require.NoError(t, err)

	_, err = tree.Update(1, layout.Record{Key: 2, Payload: "new"})
	require.NoError(t, err)

	found, _, err := tree.Search(1)
	require.NoError(t, err)
	require.False(t, found)

	found, _, err = tree.Search(2)
	require.NoError(t, err)
	require.True(t, found)
}

func TestUpdateOnMissingKeyStillInsertsNewRecord(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "a"})
	require.NoError(t, err)

	_, err = tree.Update(99, layout.Record{Key: 2, Payload: "b"})
	require.NoError(t, err)

	found, _, err := tree.Search(1)
	require.NoError(t, err)
	require.True(t, found)

	found, _, err = tree.Search(2)
	require.NoError(t, err)
	require.True(t, found)
}

// TestManyInsertsGrowHeightAndStayOrdered drives enough insertions through
// a small order-2 tree to force several splits, checking properties P1
// (ascending in-order traversal) and that height grows monotonically.
func TestManyInsertsGrowHeightAndStayOrdered(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	keys := []int32{50, 30, 70, 20, 40, 60, 80, 10, 25, 35, 45, 55, 65, 75, 85, 5, 15, 90, 100, 1}

	lastHeight := 0
	for _, k := range keys {
		_, err := tree.Insert(layout.Record{Key: k, Payload: "v"})
		require.NoError(t, err)
		require.GreaterOrEqual(t, tree.Height(), lastHeight)
		lastHeight = tree.Height()
	}

	for _, k := range keys {
		found, _, err := tree.Search(k)
		require.NoError(t, err)
		require.True(t, found, "key %d should be present", k)
	}

	requireAscending(t, tree)
}

// TestInsertThenRemoveAllYieldsEmptyTree exercises property P8: removing
// every inserted key in a different order than insertion collapses the
// tree back to height 0.
func TestInsertThenRemoveAllYieldsEmptyTree(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	insertOrder := []int32{50, 30, 70, 20, 40, 60, 80, 10, 25, 35, 45, 55, 65, 75, 85}
	removeOrder := []int32{10, 85, 25, 75, 35, 65, 45, 55, 20, 80, 30, 70, 40, 60, 50}

	for _, k := range insertOrder {
		_, err := tree.Insert(layout.Record{Key: k, Payload: "v"})
		require.NoError(t, err)
	}
	for _, k := range removeOrder {
		_, err := tree.Remove(k)
		require.NoError(t, err, "removing key %d", k)
	}

	require.Equal(t, 0, tree.Height())
	_, err := tree.Remove(1)
	require.ErrorIs(t, err, ErrEmptyTree)
}

// TestDeleteForcesMergeAcrossLevels removes enough keys from a small
// order-2 tree to push several nodes below minimum occupancy, forcing
// compensation and merge, and checks the survivors are still findable
// and the tree stays ordered.
func TestDeleteForcesMergeAcrossLevels(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	keys := []int32{50, 30, 70, 20, 40, 60, 80, 10, 25, 35, 45}
	for _, k := range keys {
		_, err := tree.Insert(layout.Record{Key: k, Payload: "v"})
		require.NoError(t, err)
	}

	toRemove := []int32{10, 20, 25, 30}
	for _, k := range toRemove {
		_, err := tree.Remove(k)
		require.NoError(t, err)
	}

	remaining := []int32{50, 70, 40, 60, 80, 35, 45}
	for _, k := range remaining {
		found, _, err := tree.Search(k)
		require.NoError(t, err)
		require.True(t, found, "key %d should remain", k)
	}
	for _, k := range toRemove {
		found, _, err := tree.Search(k)
		require.NoError(t, err)
		require.False(t, found, "key %d should be gone", k)
	}
	requireAscending(t, tree)
}

func TestPrintOnEmptyTree(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, _, err := tree.Print(false)
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestPrintWithPayloads(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "alpha"})
	require.NoError(t, err)
	_, err = tree.Insert(layout.Record{Key: 2, Payload: "beta"})
	require.NoError(t, err)

	s, _, err := tree.Print(true)
	require.NoError(t, err)
	require.Contains(t, s, "1:alpha")
	require.Contains(t, s, "2:beta")
}

// TestReportCountersResetPerOperation checks that each operation starts
// its I/O counters from zero (spec.md §6).
func TestReportCountersResetPerOperation(t *testing.T) {
	tree := newTestTree(t, 2, 3)
	_, err := tree.Insert(layout.Record{Key: 1, Payload: "a"})
	require.NoError(t, err)

	// The insert wrote one index and one data page; the search only
	// reads the single leaf root back, so nothing may carry over.
	_, report, err := tree.Search(1)
	require.NoError(t, err)
	require.Equal(t, 1, report.IndexReads)
	require.Zero(t, report.IndexWrites)
	require.Zero(t, report.DataWrites)
}

var intPattern = regexp.MustCompile(`\d+`)

func requireAscending(t *testing.T, tree *BTree) {
	t.Helper()
	s, _, err := tree.Print(false)
	require.NoError(t, err)

	matches := intPattern.FindAllString(s, -1)
	prev := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		require.NoError(t, err)
		require.Greater(t, n, prev, "keys must strictly increase in in-order traversal")
		prev = n
	}
}
