package bincode

import "encoding/binary"

// Writer appends values in the layout Buffer reads.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{buf: []byte{}}
}

// Write appends e.
func (w *Writer) Write(e Encoder) *Writer {
	e.EncodeBincode(w)
	return w
}

func (w *Writer) WriteBytes(b []byte) *Writer {
	w.WriteUint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) WriteBool(v bool) *Writer {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *Writer) WriteUint32(v uint32) *Writer {
	var tmp [Uint32Size]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
	return w
}

func (w *Writer) WriteUint64(v uint64) *Writer {
	var tmp [Uint64Size]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
	return w
}

// WriteInt64 appends v in two's complement.
func (w *Writer) WriteInt64(v int64) *Writer {
	return w.WriteUint64(uint64(v))
}

// WriteString appends s as a length-prefixed byte sequence.
func (w *Writer) WriteString(s string) *Writer {
	return w.WriteBytes([]byte(s))
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns a copy of the written bytes.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}
