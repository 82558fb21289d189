package types

import "time"

// SignedMsgType is a type of signed message in the consensus.
type SignedMsgType uint32

const (
	// PrevoteType is the type of a prevote.
	PrevoteType SignedMsgType = 1
	// PrecommitType is the type of a precommit; commits are built from them.
	PrecommitType SignedMsgType = 2
)

// VoteSignBytes returns the canonical bytes a validator signs when it
// precommits blockID at the given height and round: the length-delimited
// tendermint.types.CanonicalVote. A nil blockID is left out, so votes for
// nil sign no block id at all.
//
// Returns nil if the timestamp is outside the range protobuf timestamps
// cover; no signature verifies against nil.
func VoteSignBytes(chainID string, height int64, round int32, blockID BlockID, timestamp time.Time) []byte {
	var e protoEncoder
	e.uvarint(1, uint64(PrecommitType))
	e.sfixed64(2, height)
	e.sfixed64(3, int64(round))
	if !blockID.IsNil() {
		e.message(4, blockID.protoBytes())
	}
	if err := e.timestamp(5, timestamp); err != nil {
		return nil
	}
	e.string(6, chainID)
	return marshalDelimited(e.Bytes())
}
