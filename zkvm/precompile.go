package zkvm

import (
	"errors"
	"fmt"

	"github.com/tendermint/lightivc/types"
)

// ErrProofNotFound is returned when no attached proof matches a claim.
var ErrProofNotFound = errors.New("no proof for claim")

// ProofSetPrecompile verifies recursive claims against the proofs attached
// to a tape.
type ProofSetPrecompile struct {
	proofs []Proof
}

// NewProofSetPrecompile returns a precompile over the proofs attached to
// stdin.
func NewProofSetPrecompile(stdin *Stdin) *ProofSetPrecompile {
	return &ProofSetPrecompile{proofs: stdin.Proofs()}
}

// VerifyProof succeeds when an attached proof was sealed under vkey and its
// public values hash to publicValuesDigest.
func (pc *ProofSetPrecompile) VerifyProof(vkey types.VerifyingKeyID, publicValuesDigest types.Digest) error {
	vkeyHash := vkey.Hash()
	for _, p := range pc.proofs {
		if p.VKeyHash != vkeyHash || p.Digest() != publicValuesDigest {
			continue
		}
		if err := p.ValidateBasic(); err != nil {
			return fmt.Errorf("proof for %v: %w", publicValuesDigest, err)
		}
		return nil
	}
	return fmt.Errorf("%w: vkey %v, public values %v", ErrProofNotFound, vkeyHash, publicValuesDigest)
}
