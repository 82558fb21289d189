package types

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode

	// ErrNullHeader is returned when a header is required but the encoding
	// holds null.
	ErrNullHeader = errors.New("header is null")
)

func init() {
	var err error
	cborEnc, err = cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// MarshalCBOR encodes v the way headers are written to the step tape.
// Times keep nanosecond precision.
func MarshalCBOR(v interface{}) ([]byte, error) {
	return cborEnc.Marshal(v)
}

// UnmarshalCBOR decodes a header or other value written by MarshalCBOR.
func UnmarshalCBOR(data []byte, v interface{}) error {
	return cborDec.Unmarshal(data, v)
}

// IsCBORNull reports whether data is a single CBOR null or undefined.
func IsCBORNull(data []byte) bool {
	return len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7)
}

// EncodeTransition encodes t as an optional header: null for Genesis and the
// prior header for a Continuation.
func EncodeTransition(t Transition) ([]byte, error) {
	switch t := t.(type) {
	case Genesis:
		return MarshalCBOR(nil)
	case Continuation:
		if t.Prior == nil {
			return nil, errors.New("continuation without a prior header")
		}
		return MarshalCBOR(t.Prior)
	default:
		return nil, fmt.Errorf("unknown transition %T", t)
	}
}

// DecodeTransition decodes an optional header written by EncodeTransition.
// decode is called only when a header is present.
func DecodeTransition(data []byte, decode func([]byte) (ChainHeader, error)) (Transition, error) {
	if IsCBORNull(data) {
		return Genesis{}, nil
	}
	h, err := decode(data)
	if err != nil {
		return nil, err
	}
	return Continuation{Prior: h}, nil
}

// DecodeLightBlock decodes a required LightBlock.
func DecodeLightBlock(data []byte) (*LightBlock, error) {
	var lb *LightBlock
	if err := UnmarshalCBOR(data, &lb); err != nil {
		return nil, fmt.Errorf("decoding light block: %w", err)
	}
	if lb == nil {
		return nil, ErrNullHeader
	}
	return lb, nil
}

// DecodeExtendedHeader decodes a required ExtendedHeader.
func DecodeExtendedHeader(data []byte) (*ExtendedHeader, error) {
	var eh *ExtendedHeader
	if err := UnmarshalCBOR(data, &eh); err != nil {
		return nil, fmt.Errorf("decoding extended header: %w", err)
	}
	if eh == nil {
		return nil, ErrNullHeader
	}
	return eh, nil
}
