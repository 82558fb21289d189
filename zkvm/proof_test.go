package zkvm_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/zkvm"
)

func testProof(ok bool) zkvm.Proof {
	pv := types.PublicValues{
		VKeyHash:    testVKey.Hash(),
		GenesisHash: types.DigestOf([]byte("genesis")),
		HeadHash:    types.DigestOf([]byte("head")),
		OK:          ok,
	}
	return zkvm.NewProof(testVKey, pv.Bytes())
}

func TestProofVerify(t *testing.T) {
	p := testProof(true)
	require.NoError(t, p.Verify(testVKey))

	other := testVKey
	other[7]++
	assert.True(t, errors.Is(p.Verify(other), zkvm.ErrWrongVerifyingKey))

	tampered := testProof(true)
	tampered.PublicValues[len(tampered.PublicValues)-1] = 0
	assert.True(t, errors.Is(tampered.Verify(testVKey), zkvm.ErrInvalidSeal))

	values, err := p.Values()
	require.NoError(t, err)
	assert.True(t, values.OK)
	assert.Equal(t, types.DigestOf(p.PublicValues), p.Digest())
}

func TestProofJSON(t *testing.T) {
	p := testProof(false)
	bz, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded zkvm.Proof
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.Equal(t, p, decoded)
	assert.NoError(t, decoded.Verify(testVKey))
}

func TestProofSetPrecompile(t *testing.T) {
	good := testProof(true)
	stdin := zkvm.NewStdin()
	stdin.WriteProof(good)
	pc := zkvm.NewProofSetPrecompile(stdin)

	assert.NoError(t, pc.VerifyProof(testVKey, good.Digest()))

	err := pc.VerifyProof(testVKey, testProof(false).Digest())
	assert.True(t, errors.Is(err, zkvm.ErrProofNotFound), "got %v", err)

	other := testVKey
	other[0] = 42
	err = pc.VerifyProof(other, good.Digest())
	assert.True(t, errors.Is(err, zkvm.ErrProofNotFound), "got %v", err)

	// a matching claim backed by a forged seal is rejected
	forged := testProof(true)
	forged.Seal[0] ^= 0xff
	stdin = zkvm.NewStdin()
	stdin.WriteProof(forged)
	err = zkvm.NewProofSetPrecompile(stdin).VerifyProof(testVKey, forged.Digest())
	assert.True(t, errors.Is(err, zkvm.ErrInvalidSeal), "got %v", err)
}
