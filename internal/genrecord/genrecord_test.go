package genrecord

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"btreeidx/internal/storage/layout"
)

func TestPayloadIsAlwaysValid(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		p := Payload(r)
		require.LessOrEqual(t, len(p), layout.PayloadSize)
		require.NotEmpty(t, p)
		require.NoError(t, layout.Validate(1, p))
	}
}

func TestKeyStaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		k := Key(r, 50)
		require.GreaterOrEqual(t, k, int32(1))
		require.LessOrEqual(t, k, int32(50))
	}
}
