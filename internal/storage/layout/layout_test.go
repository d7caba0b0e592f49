package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	r := Record{Key: 42, Payload: "hello"}
	buf := EncodeRecord(r)
	require.Len(t, buf, RecordSize)

	got, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestRecordSentinelRoundTrip(t *testing.T) {
	buf := EncodeRecord(EmptyRecord())
	got, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.True(t, got.IsEmpty())
}

func TestValidateRejectsSentinelKeyAndDot(t *testing.T) {
	require.ErrorIs(t, Validate(SentinelKey, "x"), ErrReservedKey)
	require.ErrorIs(t, Validate(1, "a.b"), ErrPayloadChar)
	require.NoError(t, Validate(1, "ok"))
}

func TestDataPageRoundTrip(t *testing.T) {
	const order = 2
	p := NewDataPage(3, order)
	p.Append(Record{Key: 10, Payload: "ten"})
	p.Append(Record{Key: 20, Payload: "twenty"})

	buf := EncodeDataPage(p)
	require.Len(t, buf, PageSize(order))

	decoded, err := DecodeDataPage(buf, 3, order)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Count())
	rec, ok := decoded.Find(10)
	require.True(t, ok)
	require.Equal(t, "ten", rec.Payload)
}

func TestDataPageFullAndRemove(t *testing.T) {
	const order = 2
	p := NewDataPage(1, order)
	require.True(t, p.IsEmpty())
	for i := int32(1); i <= int32(p.Capacity()); i++ {
		p.Append(Record{Key: i, Payload: "x"})
	}
	require.True(t, p.IsFull())
	require.True(t, p.Remove(1))
	require.False(t, p.IsFull())
	require.False(t, p.Remove(1))
}

func TestIndexPageLeafRoundTrip(t *testing.T) {
	const order = 2
	p := NewIndexPage(5, order, true)
	p.Records = []IndexRecord{{Key: 10, DataPageID: 1}, {Key: 20, DataPageID: 2}}
	p.ParentPageID = 1

	buf := EncodeIndexPage(p)
	require.Len(t, buf, IndexPageSize(order))

	decoded, err := DecodeIndexPage(buf, 5, order)
	require.NoError(t, err)
	require.True(t, decoded.IsLeaf())
	require.Equal(t, p.Records, decoded.Records)
	require.Equal(t, int32(1), decoded.ParentPageID)
}

func TestIndexPageInternalRoundTrip(t *testing.T) {
	const order = 2
	p := NewIndexPage(7, order, false)
	p.Records = []IndexRecord{{Key: 30, DataPageID: SentinelKey}}
	p.Pointers = []int32{11, 12}
	p.ParentPageID = SentinelKey

	buf := EncodeIndexPage(p)
	decoded, err := DecodeIndexPage(buf, 7, order)
	require.NoError(t, err)
	require.False(t, decoded.IsLeaf())
	require.Equal(t, []int32{11, 12}, decoded.Pointers)
	require.Equal(t, SentinelKey, decoded.ParentPageID)
}

func TestIndexPageSizeFormula(t *testing.T) {
	require.Equal(t, 24*2+8, IndexPageSize(2))
	require.Equal(t, 34*4, PageSize(2))
}
