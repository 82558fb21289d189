package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tendermint/lightivc/crypto/tmhash"
	"github.com/tendermint/lightivc/libs/bincode"
)

// DigestSize is the size of a Digest in bytes.
const DigestSize = tmhash.Size

// Digest is a SHA-256 output. It identifies verifying keys, the genesis
// header and chain heads.
type Digest [DigestSize]byte

var (
	_ bincode.Decoder = (*Digest)(nil)
	_ bincode.Encoder = Digest{}
)

// DigestOf returns the SHA-256 of bz.
func DigestOf(bz []byte) Digest {
	var d Digest
	copy(d[:], tmhash.Sum(bz))
	return d
}

// DigestFromBytes converts a 32 byte slice to a Digest.
func DigestFromBytes(bz []byte) (Digest, error) {
	var d Digest
	if len(bz) != DigestSize {
		return d, fmt.Errorf("expected %d byte digest, got %d bytes", DigestSize, len(bz))
	}
	copy(d[:], bz)
	return d, nil
}

// MustDigestFromBytes is like DigestFromBytes but panics on a wrong length.
func MustDigestFromBytes(bz []byte) Digest {
	d, err := DigestFromBytes(bz)
	if err != nil {
		panic(err)
	}
	return d
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestSize)
	copy(out, d[:])
	return out
}

// Equal reports byte-exact equality.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d[:], other[:])
}

// IsZero reports whether every byte of d is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	bz, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil {
		return err
	}
	v, err := DigestFromBytes(bz)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DecodeBincode reads a digest committed as a length-prefixed byte sequence.
// Any length other than DigestSize is malformed.
func (d *Digest) DecodeBincode(data []byte) error {
	var raw bincode.Bytes
	if err := raw.DecodeBincode(data); err != nil {
		return err
	}
	v, err := DigestFromBytes(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (Digest) BincodeSize() int { return bincode.LenPrefixSize + DigestSize }

func (d Digest) EncodeBincode(w *bincode.Writer) { w.WriteBytes(d[:]) }
