package types

import (
	"errors"
	"fmt"

	"github.com/tendermint/lightivc/crypto"
	"github.com/tendermint/lightivc/crypto/ed25519"
)

// Validator is a volatile state for each Validator.
// NOTE: The ProposerPriority is not included in Validator.Bytes();
// it is carried only so RPC validator sets decode unchanged.
type Validator struct {
	Address          crypto.Address `json:"address"`
	PubKey           ed25519.PubKey `json:"pub_key"`
	VotingPower      int64          `json:"voting_power,string"`
	ProposerPriority int64          `json:"proposer_priority,string"`
}

// NewValidator returns a new validator with the given pubkey and voting power.
func NewValidator(pubKey ed25519.PubKey, votingPower int64) *Validator {
	return &Validator{
		Address:     pubKey.Address(),
		PubKey:      pubKey,
		VotingPower: votingPower,
	}
}

// ValidateBasic performs basic validation.
func (v *Validator) ValidateBasic() error {
	if v == nil {
		return errors.New("nil validator")
	}
	if err := v.PubKey.ValidateBasic(); err != nil {
		return fmt.Errorf("validator does not have a public key: %w", err)
	}

	if v.VotingPower < 0 {
		return errors.New("validator has negative voting power")
	}

	addr := v.PubKey.Address()
	if !addr.Equal(v.Address) {
		return fmt.Errorf("validator address is incorrectly derived from pubkey. Exp: %v, got %v", addr, v.Address)
	}

	return nil
}

// Copy creates a new copy of the validator so we can mutate ProposerPriority.
// Panics if the validator is nil.
func (v *Validator) Copy() *Validator {
	vCopy := *v
	return &vCopy
}

// String returns a string representation of String.
//
// 1. address
// 2. public key
// 3. voting power
// 4. proposer priority
func (v *Validator) String() string {
	if v == nil {
		return "nil-Validator"
	}
	return fmt.Sprintf("Validator{%v %v VP:%v A:%v}",
		v.Address,
		v.PubKey,
		v.VotingPower,
		v.ProposerPriority)
}

// Bytes computes the unique encoding of a validator with a given voting power.
// These are the bytes that gets hashed in consensus. It excludes address
// as its redundant with the pubkey. This also excludes ProposerPriority
// which changes every round.
//
// The layout is tendermint.types.SimpleValidator with the key in the
// ed25519 arm of tendermint.crypto.PublicKey.
func (v *Validator) Bytes() []byte {
	var pk protoEncoder
	pk.message(1, v.PubKey.Bytes())

	var e protoEncoder
	e.message(1, pk.Bytes())
	e.uvarint(2, uint64(v.VotingPower))
	return e.Bytes()
}
