package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tendermint/lightivc/libs/bincode"
)

const (
	// VerifyingKeyWords is the number of 32-bit words in a VerifyingKeyID.
	VerifyingKeyWords = 8
	// VerifyingKeyIDSize is the encoded size of a VerifyingKeyID.
	VerifyingKeyIDSize = VerifyingKeyWords * bincode.Uint32Size
)

// VerifyingKeyID identifies the program whose proofs form a chain. Every step
// of one chain must use the same VerifyingKeyID.
type VerifyingKeyID [VerifyingKeyWords]uint32

var (
	_ bincode.Decoder = (*VerifyingKeyID)(nil)
	_ bincode.Encoder = VerifyingKeyID{}
)

// VerifyingKeyIDFromBytes interprets 32 bytes as eight little-endian words.
func VerifyingKeyIDFromBytes(bz []byte) (VerifyingKeyID, error) {
	var id VerifyingKeyID
	if len(bz) != VerifyingKeyIDSize {
		return id, fmt.Errorf("expected %d byte verifying key id, got %d bytes", VerifyingKeyIDSize, len(bz))
	}
	for i := range id {
		id[i] = binary.LittleEndian.Uint32(bz[i*4:])
	}
	return id, nil
}

// ParseVerifyingKeyID parses the hex form produced by String.
func ParseVerifyingKeyID(s string) (VerifyingKeyID, error) {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return VerifyingKeyID{}, err
	}
	return VerifyingKeyIDFromBytes(bz)
}

// Bytes encodes the words little-endian, in order. Hash is computed over this
// encoding, so it is part of the wire format.
func (id VerifyingKeyID) Bytes() []byte {
	out := make([]byte, VerifyingKeyIDSize)
	for i, w := range id {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Hash returns the SHA-256 of Bytes.
func (id VerifyingKeyID) Hash() Digest {
	return DigestOf(id.Bytes())
}

func (id VerifyingKeyID) String() string {
	return hex.EncodeToString(id.Bytes())
}

func (id VerifyingKeyID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *VerifyingKeyID) UnmarshalText(text []byte) error {
	v, err := ParseVerifyingKeyID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// DecodeBincode reads eight little-endian words with no length prefix.
func (id *VerifyingKeyID) DecodeBincode(data []byte) error {
	if len(data) < VerifyingKeyIDSize {
		return bincode.ErrUnexpectedEnd
	}
	v, err := VerifyingKeyIDFromBytes(data[:VerifyingKeyIDSize])
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (VerifyingKeyID) BincodeSize() int { return VerifyingKeyIDSize }

func (id VerifyingKeyID) EncodeBincode(w *bincode.Writer) {
	for _, word := range id {
		w.WriteUint32(word)
	}
}
