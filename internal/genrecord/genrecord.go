// Package genrecord generates well-formed payloads for synthetic
// record insertion, mirroring the random-record generator the
// original data-collaborator played in test/benchmark drivers.
package genrecord

import (
	"math/rand"

	"btreeidx/internal/storage/layout"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Payload returns a random lowercase-ASCII string between 1 and
// layout.PayloadSize characters, guaranteed free of the pad
// character so it round-trips through layout.Validate.
func Payload(r *rand.Rand) string {
	n := 1 + r.Intn(layout.PayloadSize)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

// Record returns a record with the given key and a random payload.
func Record(r *rand.Rand, key int32) layout.Record {
	return layout.Record{Key: key, Payload: Payload(r)}
}

// Key returns a random key in [1, max], never the reserved sentinel.
func Key(r *rand.Rand, max int32) int32 {
	if max < 1 {
		max = 1
	}
	if max >= layout.SentinelKey {
		max = layout.SentinelKey - 1
	}
	return 1 + r.Int31n(max)
}
