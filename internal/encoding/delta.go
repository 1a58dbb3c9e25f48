package encoding

import (
	"encoding/binary"
	"errors"

	"github.com/chronoval-db/chronoval/internal/bits"
)

// Timestamp compression uses delta-of-delta encoding: version history
// timestamps are sorted and usually near-regular, so second differences
// cluster around zero and pack into a few bits each.

// TimestampEncoder compresses a sorted int64 timestamp column.
type TimestampEncoder struct {
	bw        *bits.Writer
	prevTs    int64
	prevDelta int64
	count     int
}

// NewTimestampEncoder creates an empty encoder.
func NewTimestampEncoder() *TimestampEncoder {
	return &TimestampEncoder{bw: bits.NewWriter()}
}

// Add appends a timestamp to the compressed stream.
func (e *TimestampEncoder) Add(ts int64) {
	switch e.count {
	case 0:
		e.bw.WriteBits(uint64(ts), 64)
	case 1:
		delta := ts - e.prevTs
		writeZigzagVarint(e.bw, delta)
		e.prevDelta = delta
	default:
		delta := ts - e.prevTs
		dod := delta - e.prevDelta
		switch {
		case dod == 0:
			e.bw.WriteBit(0)
		case dod >= -63 && dod <= 64:
			e.bw.WriteBits(0b10, 2)
			e.bw.WriteBits(uint64(dod+63), 7)
		case dod >= -255 && dod <= 256:
			e.bw.WriteBits(0b110, 3)
			e.bw.WriteBits(uint64(dod+255), 9)
		case dod >= -2047 && dod <= 2048:
			e.bw.WriteBits(0b1110, 4)
			e.bw.WriteBits(uint64(dod+2047), 12)
		default:
			e.bw.WriteBits(0b1111, 4)
			e.bw.WriteBits(uint64(dod), 64)
		}
		e.prevDelta = delta
	}
	e.prevTs = ts
	e.count++
}

// Bytes returns the count-prefixed compressed column.
func (e *TimestampEncoder) Bytes() []byte {
	body := e.bw.Bytes()
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out, uint32(e.count))
	copy(out[4:], body)
	return out
}

// EncodeTimestamps compresses a timestamp column.
func EncodeTimestamps(timestamps []int64) []byte {
	enc := NewTimestampEncoder()
	for _, ts := range timestamps {
		enc.Add(ts)
	}
	return enc.Bytes()
}

// DecodeTimestamps decompresses a column produced by EncodeTimestamps.
func DecodeTimestamps(data []byte) ([]int64, error) {
	if len(data) < 4 {
		return nil, errors.New("encoding: timestamp column too short")
	}
	count := int(binary.LittleEndian.Uint32(data))
	br := bits.NewReader(data[4:])

	out := make([]int64, 0, count)
	var prevTs, prevDelta int64
	for i := 0; i < count; i++ {
		switch i {
		case 0:
			v, err := br.ReadBits(64)
			if err != nil {
				return nil, err
			}
			prevTs = int64(v)
		case 1:
			delta, err := readZigzagVarint(br)
			if err != nil {
				return nil, err
			}
			prevDelta = delta
			prevTs += delta
		default:
			dod, err := readDoD(br)
			if err != nil {
				return nil, err
			}
			prevDelta += dod
			prevTs += prevDelta
		}
		out = append(out, prevTs)
	}
	return out, nil
}

func readDoD(br *bits.Reader) (int64, error) {
	b, err := br.ReadBit()
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 0, nil
	}
	// Consume the remaining prefix bits, widest bucket last.
	for _, bucket := range []struct {
		width int
		bias  int64
	}{{7, 63}, {9, 255}, {12, 2047}} {
		b, err = br.ReadBit()
		if err != nil {
			return 0, err
		}
		if b == 0 {
			v, err := br.ReadBits(bucket.width)
			if err != nil {
				return 0, err
			}
			return int64(v) - bucket.bias, nil
		}
	}
	v, err := br.ReadBits(64)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func writeZigzagVarint(bw *bits.Writer, v int64) {
	zz := uint64((v << 1) ^ (v >> 63))
	for {
		b := zz & 0x7f
		zz >>= 7
		if zz != 0 {
			bw.WriteBits(b|0x80, 8)
		} else {
			bw.WriteBits(b, 8)
			return
		}
	}
}

func readZigzagVarint(br *bits.Reader) (int64, error) {
	var shift uint
	var acc uint64
	for {
		b, err := br.ReadBits(8)
		if err != nil {
			return 0, err
		}
		acc |= (b & 0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return int64((acc >> 1) ^ uint64((int64(acc&1)<<63)>>63)), nil
}
