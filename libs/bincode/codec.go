package bincode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// BoolSize is the encoded size of a bool.
	BoolSize = 1
	// Uint32Size is the encoded size of a uint32.
	Uint32Size = 4
	// Uint64Size is the encoded size of a uint64.
	Uint64Size = 8
	// LenPrefixSize is the size of the length prefix of a byte sequence.
	LenPrefixSize = Uint64Size
)

var (
	// ErrUnexpectedEnd is returned when fewer bytes remain than a value needs.
	ErrUnexpectedEnd = errors.New("unexpected end of input")
	// ErrInvalidBool is returned when a bool byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("invalid bool encoding")
	// ErrLengthOverflow is returned when a length prefix does not fit in an int.
	ErrLengthOverflow = errors.New("length prefix overflows int")
)

// Decoder is implemented by values that can be read from a Buffer.
//
// DecodeBincode decodes the value from the beginning of data; data may hold
// more bytes than the value needs. BincodeSize reports how many bytes the
// value occupies once encoded.
type Decoder interface {
	DecodeBincode(data []byte) error
	BincodeSize() int
}

// Encoder is implemented by values that can be appended to a Writer.
type Encoder interface {
	EncodeBincode(w *Writer)
}

// Bytes is a length-prefixed byte sequence.
type Bytes []byte

func (b *Bytes) DecodeBincode(data []byte) error {
	if len(data) < LenPrefixSize {
		return ErrUnexpectedEnd
	}
	n := binary.LittleEndian.Uint64(data)
	if n > math.MaxInt32 {
		return ErrLengthOverflow
	}
	if uint64(len(data)-LenPrefixSize) < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEnd, n, len(data)-LenPrefixSize)
	}
	out := make([]byte, n)
	copy(out, data[LenPrefixSize:])
	*b = out
	return nil
}

func (b Bytes) BincodeSize() int { return LenPrefixSize + len(b) }

func (b Bytes) EncodeBincode(w *Writer) { w.WriteBytes(b) }

// Bool is a single byte boolean.
type Bool bool

func (b *Bool) DecodeBincode(data []byte) error {
	if len(data) < BoolSize {
		return ErrUnexpectedEnd
	}
	switch data[0] {
	case 0:
		*b = false
	case 1:
		*b = true
	default:
		return fmt.Errorf("%w: 0x%02x", ErrInvalidBool, data[0])
	}
	return nil
}

func (Bool) BincodeSize() int { return BoolSize }

func (b Bool) EncodeBincode(w *Writer) { w.WriteBool(bool(b)) }

// Uint32 is a little-endian 32-bit word.
type Uint32 uint32

func (u *Uint32) DecodeBincode(data []byte) error {
	if len(data) < Uint32Size {
		return ErrUnexpectedEnd
	}
	*u = Uint32(binary.LittleEndian.Uint32(data))
	return nil
}

func (Uint32) BincodeSize() int { return Uint32Size }

func (u Uint32) EncodeBincode(w *Writer) { w.WriteUint32(uint32(u)) }

// Uint64 is a little-endian 64-bit word.
type Uint64 uint64

func (u *Uint64) DecodeBincode(data []byte) error {
	if len(data) < Uint64Size {
		return ErrUnexpectedEnd
	}
	*u = Uint64(binary.LittleEndian.Uint64(data))
	return nil
}

func (Uint64) BincodeSize() int { return Uint64Size }

func (u Uint64) EncodeBincode(w *Writer) { w.WriteUint64(uint64(u)) }

// Marshal returns the encoding of e.
func Marshal(e Encoder) []byte {
	w := NewWriter()
	e.EncodeBincode(w)
	return w.Bytes()
}

// Unmarshal decodes exactly one value from data. Trailing bytes are an error.
func Unmarshal(data []byte, d Decoder) error {
	buf := From(data)
	if err := buf.Read(d); err != nil {
		return err
	}
	if buf.Remaining() != 0 {
		return &DecodeError{
			Offset: buf.Cursor(),
			Type:   typeName(d),
			Err:    fmt.Errorf("%d trailing bytes", buf.Remaining()),
		}
	}
	return nil
}

// DecodeError is returned by Buffer.Read when the unread bytes are truncated
// or do not parse as the requested type.
type DecodeError struct {
	Offset int
	Type   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bincode: decoding %s at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
