package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"btreeidx/internal/storage/layout"
)

func TestDataFileRendersLiveRecordsOnly(t *testing.T) {
	const order = 2
	p := layout.NewDataPage(1, order)
	p.Append(layout.Record{Key: 1, Payload: "one"})

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, layout.EncodeDataPage(p), 0o644))

	s, err := DataFile(path, order)
	require.NoError(t, err)
	require.Contains(t, s, "data[1]")
	require.Contains(t, s, "(1:one)")
}

func TestIndexFileRendersLeafAndInternal(t *testing.T) {
	const order = 2
	leaf := layout.NewIndexPage(1, order, true)
	leaf.Records = []layout.IndexRecord{{Key: 5, DataPageID: 1}}
	leaf.ParentPageID = 2

	internal := layout.NewIndexPage(2, order, false)
	internal.Records = []layout.IndexRecord{{Key: 10, DataPageID: 2}}
	internal.Pointers = []int32{1, 3}

	path := filepath.Join(t.TempDir(), "index.txt")
	buf := append(layout.EncodeIndexPage(leaf), layout.EncodeIndexPage(internal)...)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	s, err := IndexFile(path, order)
	require.NoError(t, err)
	require.Contains(t, s, "index[1] leaf")
	require.Contains(t, s, "5->dp1")
	require.Contains(t, s, "index[2] internal")
	require.Contains(t, s, "children=1,3")
}
