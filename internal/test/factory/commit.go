package factory

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tendermint/lightivc/crypto/ed25519"
	"github.com/tendermint/lightivc/types"
)

// MakeCommit returns a commit for blockID in which every validator whose key
// is in keys precommits at now. Validators without a key are absent.
func MakeCommit(chainID string, blockID types.BlockID, height int64, round int32,
	vals *types.ValidatorSet, keys []ed25519.PrivKey, now time.Time) *types.Commit {

	sigs := make([]types.CommitSig, vals.Size())
	for i, val := range vals.Validators {
		key := findKey(keys, val.Address)
		if key == nil {
			sigs[i] = types.NewCommitSigAbsent()
			continue
		}
		signBytes := types.VoteSignBytes(chainID, height, round, blockID, now)
		sig, err := key.Sign(signBytes)
		if err != nil {
			panic(fmt.Errorf("signing vote: %w", err))
		}
		sigs[i] = types.CommitSig{
			BlockIDFlag:      types.BlockIDFlagCommit,
			ValidatorAddress: val.Address,
			Timestamp:        now,
			Signature:        sig,
		}
	}
	return types.NewCommit(height, round, blockID, sigs)
}

func findKey(keys []ed25519.PrivKey, addr []byte) ed25519.PrivKey {
	for _, k := range keys {
		if bytes.Equal(k.PubKey().Address(), addr) {
			return k
		}
	}
	return nil
}
