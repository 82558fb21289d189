package ivc

import (
	"errors"
	"fmt"

	"github.com/tendermint/lightivc/types"
)

// ErrGenesisMismatch is returned by strategies when the first header of a
// chain does not hash to the genesis hash.
var ErrGenesisMismatch = errors.New("header does not hash to the genesis hash")

// ErrInvalidGenesis is returned by strategies when the first header of a
// chain has no hash or fails basic validation.
var ErrInvalidGenesis = errors.New("invalid genesis header")

// ErrDecode is a fatal error: an input item is truncated or malformed.
type ErrDecode struct {
	Item string
	Err  error
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Item, e.Err)
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrPrecompile is a fatal error: the precompile rejected the proof of the
// previous public values.
type ErrPrecompile struct {
	Digest types.Digest
	Err    error
}

func (e ErrPrecompile) Error() string {
	return fmt.Sprintf("recursive proof of %v rejected: %v", e.Digest, e.Err)
}

func (e ErrPrecompile) Unwrap() error { return e.Err }

// Check names one of the continuity checks run against the previous public
// values.
type Check int

const (
	CheckVKeyHash Check = iota
	CheckGenesisHash
	CheckHeadHash
	CheckPriorOK
)

func (c Check) String() string {
	switch c {
	case CheckVKeyHash:
		return "vkey_hash"
	case CheckGenesisHash:
		return "genesis_hash"
	case CheckHeadHash:
		return "head_hash"
	case CheckPriorOK:
		return "prior_ok"
	default:
		return fmt.Sprintf("Check(%d)", int(c))
	}
}

// ConsistencyError means the previous public values do not continue into
// this step. It is not fatal: the step commits ok=false.
type ConsistencyError struct {
	Check Check
	Want  types.Digest
	Got   types.Digest
}

func (e ConsistencyError) Error() string {
	if e.Check == CheckPriorOK {
		return "previous step committed ok=false"
	}
	return fmt.Sprintf("%v mismatch: previous step committed %v, got %v", e.Check, e.Want, e.Got)
}

// VerificationError means the header transition did not verify. It is not
// fatal: the step commits ok=false.
type VerificationError struct {
	Transition types.Transition
	Reason     error
}

func (e VerificationError) Error() string {
	return fmt.Sprintf("%v: %v", e.Transition, e.Reason)
}

func (e VerificationError) Unwrap() error { return e.Reason }
