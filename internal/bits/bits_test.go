package bits

import "testing"

func TestWriteReadBits(t *testing.T) {
	w := NewWriter()
	w.WriteBit(1)
	w.WriteBits(0b1011, 4)
	w.WriteBits(0xDEADBEEF, 32)
	w.WriteBits(1<<63|5, 64)

	r := NewReader(w.Bytes())

	b, err := r.ReadBit()
	if err != nil || b != 1 {
		t.Fatalf("ReadBit = (%d, %v), want (1, nil)", b, err)
	}
	v, err := r.ReadBits(4)
	if err != nil || v != 0b1011 {
		t.Fatalf("ReadBits(4) = (%b, %v), want 1011", v, err)
	}
	v, err = r.ReadBits(32)
	if err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadBits(32) = (%x, %v), want deadbeef", v, err)
	}
	v, err = r.ReadBits(64)
	if err != nil || v != 1<<63|5 {
		t.Fatalf("ReadBits(64) = (%x, %v)", v, err)
	}
}

func TestPartialByteFlush(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	data := w.Bytes()
	if len(data) != 1 {
		t.Fatalf("len = %d, want 1", len(data))
	}
	// Partial byte is left-aligned, zero padded.
	if data[0] != 0b1010_0000 {
		t.Errorf("flushed byte = %08b", data[0])
	}
}

func TestReadPastEnd(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBits(8); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadBit(); err != ErrShortBuffer {
		t.Errorf("err = %v, want ErrShortBuffer", err)
	}
}
