package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/tendermint/lightivc/crypto/merkle"
	tmmath "github.com/tendermint/lightivc/libs/math"
)

// DataAvailabilityHeader commits to the row and column roots of an erasure
// coded block. Its hash is the block's DataHash.
type DataAvailabilityHeader struct {
	RowRoots    [][]byte `json:"row_roots"`
	ColumnRoots [][]byte `json:"column_roots"`
}

// Hash returns the merkle root over the row roots followed by the column
// roots.
func (dah *DataAvailabilityHeader) Hash() []byte {
	if dah == nil {
		return merkle.HashFromByteSlices(nil)
	}
	slices := make([][]byte, 0, len(dah.RowRoots)+len(dah.ColumnRoots))
	slices = append(slices, dah.RowRoots...)
	slices = append(slices, dah.ColumnRoots...)
	return merkle.HashFromByteSlices(slices)
}

// ValidateBasic checks the square is non-empty and square shaped.
func (dah *DataAvailabilityHeader) ValidateBasic() error {
	if dah == nil {
		return errors.New("nil data availability header")
	}
	if len(dah.RowRoots) == 0 || len(dah.ColumnRoots) == 0 {
		return errors.New("data availability header has no roots")
	}
	if len(dah.RowRoots) != len(dah.ColumnRoots) {
		return fmt.Errorf("unequal number of row and column roots: %d != %d",
			len(dah.RowRoots), len(dah.ColumnRoots))
	}
	return nil
}

// ExtendedHeader is a block header extended with its commit, the validator
// set that signed it, and the data availability header.
//
// Unlike a LightBlock, an ExtendedHeader verifies its successors itself; see
// Verify.
type ExtendedHeader struct {
	RawHeader    Header                  `json:"header"`
	Commit       *Commit                 `json:"commit"`
	ValidatorSet *ValidatorSet           `json:"validator_set"`
	DAH          *DataAvailabilityHeader `json:"dah"`
}

var _ ChainHeader = (*ExtendedHeader)(nil)

// Hash returns the hash of the raw header.
func (eh *ExtendedHeader) Hash() []byte {
	return eh.RawHeader.Hash()
}

// Digest returns Hash as a Digest.
func (eh *ExtendedHeader) Digest() Digest {
	var d Digest
	if eh == nil {
		return d
	}
	copy(d[:], eh.Hash())
	return d
}

func (eh *ExtendedHeader) Height() int64        { return eh.RawHeader.Height }
func (eh *ExtendedHeader) ChainID() string      { return eh.RawHeader.ChainID }
func (eh *ExtendedHeader) Timestamp() time.Time { return eh.RawHeader.Time }

// ValidateBasic checks the header is internally consistent and that +2/3 of
// its own validator set signed it.
func (eh *ExtendedHeader) ValidateBasic() error {
	if eh == nil {
		return errors.New("nil extended header")
	}
	if err := eh.RawHeader.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	if eh.Commit == nil {
		return errors.New("missing commit")
	}
	if err := eh.Commit.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid commit: %w", err)
	}
	if err := eh.ValidatorSet.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid validator set: %w", err)
	}
	if err := eh.DAH.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid data availability header: %w", err)
	}

	if !bytes.Equal(eh.RawHeader.ValidatorsHash, eh.ValidatorSet.Hash()) {
		return fmt.Errorf("validator set does not match header: %X != %X",
			eh.RawHeader.ValidatorsHash, eh.ValidatorSet.Hash())
	}
	if !bytes.Equal(eh.RawHeader.DataHash, eh.DAH.Hash()) {
		return fmt.Errorf("data availability header does not match data hash: %X != %X",
			eh.RawHeader.DataHash, eh.DAH.Hash())
	}
	if hash := eh.Hash(); !bytes.Equal(hash, eh.Commit.BlockID.Hash) {
		return fmt.Errorf("commit signs block %X, header is block %X", eh.Commit.BlockID.Hash, hash)
	}

	return eh.ValidatorSet.VerifyCommitLight(eh.ChainID(), eh.Commit.BlockID, eh.Height(), eh.Commit)
}

// Verify checks that untrst is a valid successor of eh.
//
// An adjacent successor must be signed by eh's next validator set and link
// back to eh through its last block id. A non-adjacent successor must carry
// signatures from more than 1/3 of eh's validator set.
func (eh *ExtendedHeader) Verify(untrst *ExtendedHeader) error {
	if err := untrst.ValidateBasic(); err != nil {
		return &VerifyError{Reason: fmt.Errorf("untrusted header: %w", err)}
	}
	if untrst.ChainID() != eh.ChainID() {
		return &VerifyError{Reason: fmt.Errorf("header belongs to another chain %q, not %q",
			untrst.ChainID(), eh.ChainID())}
	}
	if untrst.Height() <= eh.Height() {
		return &VerifyError{Reason: fmt.Errorf("expected new header height %d to be greater than one of old header %d",
			untrst.Height(), eh.Height())}
	}
	if !untrst.Timestamp().After(eh.Timestamp()) {
		return &VerifyError{Reason: fmt.Errorf("expected new header time %v to be after old header time %v",
			untrst.Timestamp(), eh.Timestamp())}
	}

	if untrst.Height() == eh.Height()+1 {
		if !bytes.Equal(untrst.RawHeader.ValidatorsHash, eh.RawHeader.NextValidatorsHash) {
			return &VerifyError{Reason: fmt.Errorf("expected old header next validators (%X) to match those from new header (%X)",
				eh.RawHeader.NextValidatorsHash, untrst.RawHeader.ValidatorsHash)}
		}
		if !bytes.Equal(untrst.RawHeader.LastBlockID.Hash, eh.Hash()) {
			return &VerifyError{Reason: fmt.Errorf("new header does not link to old header: %X != %X",
				untrst.RawHeader.LastBlockID.Hash, eh.Hash())}
		}
		return nil
	}

	trustLevel := tmmath.Fraction{Numerator: 1, Denominator: 3}
	if err := eh.ValidatorSet.VerifyCommitLightTrusting(eh.ChainID(), untrst.Commit, trustLevel); err != nil {
		return &VerifyError{Reason: err, SoftFailure: IsErrNotEnoughVotingPowerSigned(err)}
	}
	return nil
}

// VerifyError is returned by ExtendedHeader.Verify. A soft failure means the
// successor may still be valid but cannot be reached from the trusted header
// in one jump.
type VerifyError struct {
	Reason      error
	SoftFailure bool
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("header verification failed: %v", e.Reason)
}

func (e *VerifyError) Unwrap() error { return e.Reason }
