package bincode

import "fmt"

// Buffer is a read cursor over a single byte sequence. The cursor only moves
// forward.
type Buffer struct {
	data   []byte
	cursor int
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{data: []byte{}}
}

// From returns a buffer over a copy of data, positioned at its start.
func From(data []byte) *Buffer {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Buffer{data: cp}
}

// Read decodes the next value into d and advances the cursor by the encoded
// size of the decoded value. On error the cursor is left untouched and d must
// not be used.
func (b *Buffer) Read(d Decoder) error {
	rest := b.data[b.cursor:]
	if err := d.DecodeBincode(rest); err != nil {
		return &DecodeError{Offset: b.cursor, Type: typeName(d), Err: err}
	}

	n := d.BincodeSize()
	if n < 0 || n > len(rest) {
		return &DecodeError{
			Offset: b.cursor,
			Type:   typeName(d),
			Err:    fmt.Errorf("decoded size %d exceeds %d remaining bytes", n, len(rest)),
		}
	}
	b.cursor += n
	return nil
}

// ReadBytes reads a length-prefixed byte sequence.
func (b *Buffer) ReadBytes() ([]byte, error) {
	var v Bytes
	if err := b.Read(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadBool reads a single byte boolean.
func (b *Buffer) ReadBool() (bool, error) {
	var v Bool
	if err := b.Read(&v); err != nil {
		return false, err
	}
	return bool(v), nil
}

// ReadUint32 reads a little-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	var v Uint32
	if err := b.Read(&v); err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// ReadUint64 reads a little-endian uint64.
func (b *Buffer) ReadUint64() (uint64, error) {
	var v Uint64
	if err := b.Read(&v); err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// Cursor returns the offset of the next unread byte.
func (b *Buffer) Cursor() int { return b.cursor }

// Len returns the total number of bytes held by the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int { return len(b.data) - b.cursor }
