package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/internal/test/factory"
	"github.com/tendermint/lightivc/types"
)

func TestLightBlockValidateBasic(t *testing.T) {
	vals, keys := factory.DeterministicValidatorSet("lb", 4, 10)
	chain := factory.LightChain(factory.DefaultTestChainID, 3, testTime, time.Minute, vals, keys)

	for _, lb := range chain {
		require.NoError(t, lb.ValidateBasic(factory.DefaultTestChainID))
	}
	assert.Equal(t, chain[1].Commit.BlockID.Hash, chain[2].LastBlockID.Hash)
	assert.Equal(t, chain[2].Header.Hash().Bytes(), chain[2].Digest().Bytes())
	assert.Equal(t, testTime.Add(2*time.Minute), chain[2].Timestamp())

	otherVals, _ := factory.DeterministicValidatorSet("lb-other", 4, 10)
	mismatched := &types.LightBlock{SignedHeader: chain[0].SignedHeader, ValidatorSet: otherVals}
	assert.Error(t, mismatched.ValidateBasic(factory.DefaultTestChainID))

	assert.Error(t, types.LightBlock{}.ValidateBasic(factory.DefaultTestChainID))

	var empty *types.LightBlock
	assert.True(t, empty.Digest().IsZero())
	assert.True(t, empty.Timestamp().IsZero())
}
