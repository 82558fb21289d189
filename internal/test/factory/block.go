package factory

import (
	"fmt"
	"time"

	"github.com/tendermint/lightivc/crypto/ed25519"
	"github.com/tendermint/lightivc/crypto/tmhash"
	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/version"
)

// DefaultTestChainID is the chain id used by the generated chains.
const DefaultTestChainID = "test-chain"

// MakeHeader fills a header at height whose validator fields describe vals
// and nextVals. DataHash is set to dataHash.
func MakeHeader(chainID string, height int64, t time.Time, lastBlockID types.BlockID,
	vals, nextVals *types.ValidatorSet, dataHash []byte) *types.Header {

	return &types.Header{
		Version:            version.Consensus{Block: version.BlockProtocol, App: 1},
		ChainID:            chainID,
		Height:             height,
		Time:               t,
		LastBlockID:        lastBlockID,
		LastCommitHash:     tmhash.Sum([]byte(fmt.Sprintf("last_commit_%d", height))),
		DataHash:           dataHash,
		ValidatorsHash:     vals.Hash(),
		NextValidatorsHash: nextVals.Hash(),
		ConsensusHash:      tmhash.Sum([]byte("consensus_params")),
		AppHash:            tmhash.Sum([]byte(fmt.Sprintf("app_%d", height))),
		LastResultsHash:    tmhash.Sum([]byte(fmt.Sprintf("results_%d", height))),
		EvidenceHash:       tmhash.Sum([]byte("evidence")),
		ProposerAddress:    vals.Proposer.Address,
	}
}

// MakeBlockID returns a complete block id for a header hash.
func MakeBlockID(hash []byte) types.BlockID {
	return types.BlockID{
		Hash: hash,
		PartSetHeader: types.PartSetHeader{
			Total: 1,
			Hash:  tmhash.Sum(hash),
		},
	}
}

// MakeLightBlock returns a light block at height signed by every key in keys.
func MakeLightBlock(chainID string, height int64, t time.Time, lastBlockID types.BlockID,
	vals, nextVals *types.ValidatorSet, keys []ed25519.PrivKey) *types.LightBlock {

	header := MakeHeader(chainID, height, t, lastBlockID, vals, nextVals,
		tmhash.Sum([]byte(fmt.Sprintf("data_%d", height))))
	blockID := MakeBlockID(header.Hash())
	commit := MakeCommit(chainID, blockID, height, 1, vals, keys, t)
	return &types.LightBlock{
		SignedHeader: &types.SignedHeader{Header: header, Commit: commit},
		ValidatorSet: vals,
	}
}

// LightChain returns length consecutive light blocks starting at height 1,
// spaced interval apart, all signed by the same validator set.
func LightChain(chainID string, length int, start time.Time, interval time.Duration,
	vals *types.ValidatorSet, keys []ed25519.PrivKey) []*types.LightBlock {

	chain := make([]*types.LightBlock, 0, length)
	lastBlockID := types.BlockID{}
	for i := 0; i < length; i++ {
		height := int64(i + 1)
		lb := MakeLightBlock(chainID, height, start.Add(time.Duration(i)*interval), lastBlockID, vals, vals, keys)
		chain = append(chain, lb)
		lastBlockID = lb.Commit.BlockID
	}
	return chain
}

// MakeDAH returns a two by two data availability header unique to height.
func MakeDAH(height int64) *types.DataAvailabilityHeader {
	root := func(kind string, i int) []byte {
		return tmhash.Sum([]byte(fmt.Sprintf("%s_%d_%d", kind, height, i)))
	}
	return &types.DataAvailabilityHeader{
		RowRoots:    [][]byte{root("row", 0), root("row", 1)},
		ColumnRoots: [][]byte{root("col", 0), root("col", 1)},
	}
}

// MakeExtendedHeader returns an extended header at height signed by every
// key in keys.
func MakeExtendedHeader(chainID string, height int64, t time.Time, lastBlockID types.BlockID,
	vals, nextVals *types.ValidatorSet, keys []ed25519.PrivKey) *types.ExtendedHeader {

	dah := MakeDAH(height)
	header := MakeHeader(chainID, height, t, lastBlockID, vals, nextVals, dah.Hash())
	blockID := MakeBlockID(header.Hash())
	return &types.ExtendedHeader{
		RawHeader:    *header,
		Commit:       MakeCommit(chainID, blockID, height, 1, vals, keys, t),
		ValidatorSet: vals,
		DAH:          dah,
	}
}

// ExtendedChain is LightChain for extended headers.
func ExtendedChain(chainID string, length int, start time.Time, interval time.Duration,
	vals *types.ValidatorSet, keys []ed25519.PrivKey) []*types.ExtendedHeader {

	chain := make([]*types.ExtendedHeader, 0, length)
	lastBlockID := types.BlockID{}
	for i := 0; i < length; i++ {
		height := int64(i + 1)
		eh := MakeExtendedHeader(chainID, height, start.Add(time.Duration(i)*interval), lastBlockID, vals, vals, keys)
		chain = append(chain, eh)
		lastBlockID = eh.Commit.BlockID
	}
	return chain
}
