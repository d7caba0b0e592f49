package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportString(t *testing.T) {
	r := Report{Counters: Counters{IndexReads: 1, IndexWrites: 2, DataReads: 3, DataWrites: 4}, Height: 5}
	require.Equal(t, "(1, 2, 3, 4) height=5", r.String())
}

func TestCountersReset(t *testing.T) {
	c := Counters{IndexReads: 1, IndexWrites: 2, DataReads: 3, DataWrites: 4}
	c.Reset()
	require.Equal(t, Counters{}, c)
}
