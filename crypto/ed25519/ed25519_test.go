package ed25519_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/crypto"
	"github.com/tendermint/lightivc/crypto/ed25519"
	"github.com/tendermint/lightivc/crypto/tmhash"
)

func TestSignAndValidateEd25519(t *testing.T) {
	privKey := ed25519.GenPrivKey()
	pubKey := privKey.PubKey()

	msg := tmhash.Sum([]byte("header"))
	sig, err := privKey.Sign(msg)
	require.NoError(t, err)

	// Test the signature
	assert.True(t, pubKey.VerifySignature(msg, sig))

	// Mutate the signature, just one bit.
	sig[7] ^= byte(0x01)

	assert.False(t, pubKey.VerifySignature(msg, sig))
}

func TestGenPrivKeyFromSecretIsDeterministic(t *testing.T) {
	a := ed25519.GenPrivKeyFromSecret([]byte("validator-0"))
	b := ed25519.GenPrivKeyFromSecret([]byte("validator-0"))
	c := ed25519.GenPrivKeyFromSecret([]byte("validator-1"))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, a.PubKey().Equals(b.PubKey()))
	assert.Len(t, a.PubKey().Address(), crypto.AddressSize)
}

func TestVerifyRejectsShortSignature(t *testing.T) {
	pubKey := ed25519.GenPrivKey().PubKey()
	assert.False(t, pubKey.VerifySignature([]byte("msg"), []byte{1, 2, 3}))
}

func TestPubKeyJSON(t *testing.T) {
	pubKey := ed25519.GenPrivKeyFromSecret([]byte("json")).PubKey().(ed25519.PubKey)

	bz, err := json.Marshal(pubKey)
	require.NoError(t, err)
	assert.Contains(t, string(bz), `"type":"tendermint/PubKeyEd25519"`)

	var decoded ed25519.PubKey
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.True(t, pubKey.Equals(decoded))

	err = json.Unmarshal([]byte(`{"type":"tendermint/PubKeySecp256k1","value":"AA=="}`), &decoded)
	assert.Error(t, err)
}
