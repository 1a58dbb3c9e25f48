// Package bits provides bit-level I/O for the history codec.
package bits

import "errors"

// ErrShortBuffer is returned when a read runs past the end of the input.
var ErrShortBuffer = errors.New("bits: read past end of buffer")

// Writer appends individual bits to a growing byte buffer.
type Writer struct {
	buf     []byte
	pending byte
	filled  uint8
}

// NewWriter creates an empty bit writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteBit appends one bit.
func (w *Writer) WriteBit(bit uint8) {
	w.pending = w.pending<<1 | (bit & 1)
	w.filled++
	if w.filled == 8 {
		w.buf = append(w.buf, w.pending)
		w.pending = 0
		w.filled = 0
	}
}

// WriteBits appends the low n bits of v, most significant first.
func (w *Writer) WriteBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(uint8(v >> uint(i)))
	}
}

// Bytes flushes any partial byte (zero padded) and returns the buffer.
func (w *Writer) Bytes() []byte {
	if w.filled > 0 {
		w.buf = append(w.buf, w.pending<<(8-w.filled))
		w.pending = 0
		w.filled = 0
	}
	return w.buf
}

// Reader consumes bits from a byte buffer.
type Reader struct {
	buf  []byte
	pos  int
	left uint8
	curr byte
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (uint8, error) {
	if r.left == 0 {
		if r.pos >= len(r.buf) {
			return 0, ErrShortBuffer
		}
		r.curr = r.buf[r.pos]
		r.pos++
		r.left = 8
	}
	r.left--
	return (r.curr >> r.left) & 1, nil
}

// ReadBits returns the next n bits as the low bits of a uint64.
func (r *Reader) ReadBits(n int) (uint64, error) {
	var v uint64
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | uint64(bit)
	}
	return v, nil
}
