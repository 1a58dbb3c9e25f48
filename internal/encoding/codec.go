// Package encoding implements the binary blob format for versioned value
// histories: a snappy-compressed pair of columns, delta-of-delta encoded
// timestamps and zigzag varint values.
package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// blobMagic identifies a history blob, followed by a format version byte.
var blobMagic = [4]byte{'C', 'V', 'H', '1'}

var (
	// ErrBadMagic is returned when a blob does not start with the history magic.
	ErrBadMagic = errors.New("encoding: not a history blob")
	// ErrCorrupt is returned when a blob fails structural validation.
	ErrCorrupt = errors.New("encoding: corrupt history blob")
)

// EncodeColumns serializes parallel timestamp and value columns into a blob.
func EncodeColumns(timestamps, values []int64) ([]byte, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("encoding: column length mismatch: %d vs %d", len(timestamps), len(values))
	}

	tsBlock := EncodeTimestamps(timestamps)
	valBlock := encodeValues(values)

	payload := make([]byte, 0, 4+len(tsBlock)+len(valBlock))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(tsBlock)))
	payload = append(payload, tsBlock...)
	payload = append(payload, valBlock...)

	out := make([]byte, 4, 4+snappy.MaxEncodedLen(len(payload)))
	copy(out, blobMagic[:])
	compressed := snappy.Encode(out[4:cap(out)], payload)
	return out[:4+len(compressed)], nil
}

// DecodeColumns deserializes a blob back into its timestamp and value columns.
func DecodeColumns(blob []byte) (timestamps, values []int64, err error) {
	if len(blob) < 4 || blob[0] != blobMagic[0] || blob[1] != blobMagic[1] ||
		blob[2] != blobMagic[2] || blob[3] != blobMagic[3] {
		return nil, nil, ErrBadMagic
	}
	payload, err := snappy.Decode(nil, blob[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(payload) < 4 {
		return nil, nil, ErrCorrupt
	}
	tsLen := int(binary.LittleEndian.Uint32(payload))
	if 4+tsLen > len(payload) {
		return nil, nil, ErrCorrupt
	}

	timestamps, err = DecodeTimestamps(payload[4 : 4+tsLen])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	values, err = decodeValues(payload[4+tsLen:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(values) != len(timestamps) {
		return nil, nil, ErrCorrupt
	}
	return timestamps, values, nil
}

// encodeValues packs a value column as count plus zigzag uvarints.
func encodeValues(values []int64) []byte {
	out := make([]byte, 0, 4+len(values))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(values)))
	for _, v := range values {
		zz := uint64(v<<1) ^ uint64(v>>63)
		out = binary.AppendUvarint(out, zz)
	}
	return out
}

func decodeValues(data []byte) ([]int64, error) {
	if len(data) < 4 {
		return nil, ErrCorrupt
	}
	count := int(binary.LittleEndian.Uint32(data))
	data = data[4:]

	out := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		zz, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, ErrCorrupt
		}
		data = data[n:]
		out = append(out, int64(zz>>1)^-int64(zz&1))
	}
	return out, nil
}
