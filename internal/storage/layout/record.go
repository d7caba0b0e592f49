// Package layout implements the on-disk binary formats for records and
// pages. Encoding and decoding live here, separated from the buffer
// manager and its file handles, so the wire format can be exercised
// without touching a real file.
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// SentinelKey marks an empty record slot, an absent child pointer,
	// or a root page's missing parent. Reserved: user keys may never
	// take this value.
	SentinelKey int32 = 0x7FFFFFFF

	// PayloadSize is the fixed, '.'-padded payload width in bytes.
	PayloadSize = 30

	// PayloadPad is the sentinel padding byte; payloads may not contain it.
	PayloadPad = '.'

	// RecordSize is the on-disk size of a Record: a 4-byte key plus the
	// fixed-width payload.
	RecordSize = 4 + PayloadSize
)

// ErrReservedKey is returned when a caller supplies the sentinel value
// as a user key.
var ErrReservedKey = errors.New("layout: key 0x7FFFFFFF is reserved")

// ErrPayloadChar is returned when a payload contains the padding sentinel.
var ErrPayloadChar = errors.New("layout: payload must not contain '.'")

// Record is a fixed-size (key, payload) pair, the unit of user data.
type Record struct {
	Key     int32
	Payload string // unpadded; padding is applied at encode time
}

// EmptyRecord returns the sentinel "unused slot" record.
func EmptyRecord() Record {
	return Record{Key: SentinelKey, Payload: ""}
}

// IsEmpty reports whether r is the sentinel "unused slot" record.
func (r Record) IsEmpty() bool {
	return r.Key == SentinelKey
}

// Validate checks that a record with this key and payload is legal to
// store: not the sentinel key and a
// payload free of the padding character, no longer than PayloadSize.
func Validate(key int32, payload string) error {
	if key == SentinelKey {
		return ErrReservedKey
	}
	if len(payload) > PayloadSize {
		return fmt.Errorf("layout: payload %q exceeds %d bytes", payload, PayloadSize)
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] == PayloadPad {
			return ErrPayloadChar
		}
	}
	return nil
}

// EncodeRecord writes r into a fresh RecordSize-byte slice: a 4-byte
// big-endian key followed by the payload padded to PayloadSize bytes
// with '.'.
func EncodeRecord(r Record) []byte {
	buf := make([]byte, RecordSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(r.Key))
	copy(buf[4:], r.Payload)
	for i := 4 + len(r.Payload); i < RecordSize; i++ {
		buf[i] = PayloadPad
	}
	return buf
}

// DecodeRecord reads a RecordSize-byte slice back into a Record,
// stripping trailing '.' padding from the payload.
func DecodeRecord(buf []byte) (Record, error) {
	if len(buf) != RecordSize {
		return Record{}, fmt.Errorf("layout: DecodeRecord: want %d bytes, got %d", RecordSize, len(buf))
	}
	key := int32(binary.BigEndian.Uint32(buf[0:4]))
	payload := string(buf[4:RecordSize])
	end := len(payload)
	for end > 0 && payload[end-1] == PayloadPad {
		end--
	}
	return Record{Key: key, Payload: payload[:end]}, nil
}
