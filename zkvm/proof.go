package zkvm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tendermint/lightivc/crypto/tmhash"
	tmbytes "github.com/tendermint/lightivc/libs/bytes"
	"github.com/tendermint/lightivc/types"
)

var (
	// ErrInvalidSeal is returned when a seal does not bind the proof's
	// verifying key hash to its public values.
	ErrInvalidSeal = errors.New("invalid proof seal")
	// ErrWrongVerifyingKey is returned when a proof was made for another
	// verifying key.
	ErrWrongVerifyingKey = errors.New("proof made under a different verifying key")
)

// Proof attests that the program identified by VKeyHash committed
// PublicValues.
type Proof struct {
	VKeyHash     types.Digest     `json:"vkey_hash"`
	PublicValues tmbytes.HexBytes `json:"public_values"`
	Seal         tmbytes.HexBytes `json:"seal"`
}

// NewProof seals publicValues under vkey.
func NewProof(vkey types.VerifyingKeyID, publicValues []byte) Proof {
	vkeyHash := vkey.Hash()
	pv := make([]byte, len(publicValues))
	copy(pv, publicValues)
	return Proof{
		VKeyHash:     vkeyHash,
		PublicValues: pv,
		Seal:         seal(vkeyHash, types.DigestOf(pv)),
	}
}

func seal(vkeyHash, publicValuesDigest types.Digest) []byte {
	h := tmhash.New()
	h.Write(vkeyHash[:])           // nolint: errcheck
	h.Write(publicValuesDigest[:]) // nolint: errcheck
	return h.Sum(nil)
}

// Digest returns the SHA-256 of the public values.
func (p Proof) Digest() types.Digest {
	return types.DigestOf(p.PublicValues)
}

// ValidateBasic checks the seal.
func (p Proof) ValidateBasic() error {
	if !bytes.Equal(p.Seal, seal(p.VKeyHash, p.Digest())) {
		return ErrInvalidSeal
	}
	return nil
}

// Verify checks the proof was sealed under vkey.
func (p Proof) Verify(vkey types.VerifyingKeyID) error {
	if p.VKeyHash != vkey.Hash() {
		return ErrWrongVerifyingKey
	}
	return p.ValidateBasic()
}

// Values decodes the public values.
func (p Proof) Values() (types.PublicValues, error) {
	return types.DecodePublicValues(p.PublicValues)
}

func (p Proof) String() string {
	return fmt.Sprintf("Proof{vkey:%v values:%X seal:%X}",
		p.VKeyHash, tmbytes.Fingerprint(p.PublicValues), tmbytes.Fingerprint(p.Seal))
}
