package types_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/internal/test/factory"
	"github.com/tendermint/lightivc/types"
)

func TestExtendedHeaderVerify(t *testing.T) {
	const chainID = factory.DefaultTestChainID
	vals, keys := factory.DeterministicValidatorSet("eh", 4, 10)
	chain := factory.ExtendedChain(chainID, 4, testTime, time.Minute, vals, keys)

	for _, eh := range chain {
		require.NoError(t, eh.ValidateBasic())
	}

	// adjacent
	require.NoError(t, chain[0].Verify(chain[1]))
	require.NoError(t, chain[2].Verify(chain[3]))
	// non-adjacent, same validators
	require.NoError(t, chain[0].Verify(chain[3]))

	// backwards
	assert.Error(t, chain[2].Verify(chain[1]))
	assert.Error(t, chain[1].Verify(chain[1]))

	// A non-adjacent header from a disjoint validator set fails softly.
	otherVals, otherKeys := factory.DeterministicValidatorSet("eh-other", 4, 10)
	stranger := factory.MakeExtendedHeader(chainID, 4, testTime.Add(3*time.Minute),
		chain[2].Commit.BlockID, otherVals, otherVals, otherKeys)
	err := chain[0].Verify(stranger)
	require.Error(t, err)
	var verr *types.VerifyError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.SoftFailure)

	// An adjacent header signed by a set the trusted header did not name.
	rotated := factory.MakeExtendedHeader(chainID, 2, testTime.Add(time.Minute),
		chain[0].Commit.BlockID, otherVals, otherVals, otherKeys)
	require.NoError(t, rotated.ValidateBasic())
	err = chain[0].Verify(rotated)
	require.True(t, errors.As(err, &verr))
	assert.False(t, verr.SoftFailure)

	// Adjacent but not linked to the trusted header.
	unlinked := factory.MakeExtendedHeader(chainID, 2, testTime.Add(time.Minute),
		factory.MakeBlockID(types.DigestOf([]byte("fork")).Bytes()), vals, vals, keys)
	assert.Error(t, chain[0].Verify(unlinked))

	// Time must move forward.
	stale := factory.MakeExtendedHeader(chainID, 2, testTime,
		chain[0].Commit.BlockID, vals, vals, keys)
	assert.Error(t, chain[0].Verify(stale))
}

func TestExtendedHeaderValidateBasic(t *testing.T) {
	vals, keys := factory.DeterministicValidatorSet("eh-basic", 4, 10)
	eh := factory.MakeExtendedHeader(factory.DefaultTestChainID, 1, testTime, types.BlockID{}, vals, vals, keys)
	require.NoError(t, eh.ValidateBasic())

	badDAH := *eh
	badDAH.DAH = factory.MakeDAH(2)
	assert.Error(t, badDAH.ValidateBasic())

	underSigned := factory.MakeExtendedHeader(factory.DefaultTestChainID, 1, testTime, types.BlockID{}, vals, vals, keys[:2])
	assert.True(t, types.IsErrNotEnoughVotingPowerSigned(underSigned.ValidateBasic()))

	var nilHeader *types.ExtendedHeader
	assert.Error(t, nilHeader.ValidateBasic())
}
