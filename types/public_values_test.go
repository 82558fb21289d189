package types_test

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/libs/bincode"
	"github.com/tendermint/lightivc/types"
)

func testPublicValues(ok bool) types.PublicValues {
	return types.PublicValues{
		VKeyHash:    types.DigestOf([]byte("vkey")),
		GenesisHash: types.DigestOf([]byte("genesis")),
		HeadHash:    types.DigestOf([]byte("head")),
		OK:          ok,
	}
}

func TestPublicValuesLayout(t *testing.T) {
	pv := testPublicValues(true)
	bz := pv.Bytes()
	require.Len(t, bz, types.PublicValuesSize)
	require.Equal(t, 121, types.PublicValuesSize)

	for i, d := range []types.Digest{pv.VKeyHash, pv.GenesisHash, pv.HeadHash} {
		off := i * 40
		assert.Equal(t, uint64(32), binary.LittleEndian.Uint64(bz[off:]), "length prefix of field %d", i)
		assert.Equal(t, d[:], bz[off+8:off+40], "field %d", i)
	}
	assert.Equal(t, byte(1), bz[120])
	assert.Equal(t, byte(0), testPublicValues(false).Bytes()[120])

	want := sha256.Sum256(bz)
	assert.Equal(t, types.Digest(want), pv.Digest())
}

func TestDecodePublicValues(t *testing.T) {
	pv := testPublicValues(true)
	decoded, err := types.DecodePublicValues(pv.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pv, decoded)

	// Reading field by field from a buffer follows the same order.
	buf := bincode.From(pv.Bytes())
	var vkey, genesis, head types.Digest
	require.NoError(t, buf.Read(&vkey))
	require.NoError(t, buf.Read(&genesis))
	require.NoError(t, buf.Read(&head))
	ok, err := buf.ReadBool()
	require.NoError(t, err)
	assert.Equal(t, pv, types.PublicValues{VKeyHash: vkey, GenesisHash: genesis, HeadHash: head, OK: ok})
	assert.Equal(t, 0, buf.Remaining())
}

func TestDecodePublicValuesMalformed(t *testing.T) {
	good := testPublicValues(true).Bytes()

	badBool := append([]byte(nil), good...)
	badBool[120] = 2

	badLen := append([]byte(nil), good...)
	binary.LittleEndian.PutUint64(badLen, 33)

	testCases := map[string][]byte{
		"empty":          nil,
		"truncated":      good[:100],
		"missing ok":     good[:120],
		"invalid bool":   badBool,
		"bad length":     badLen,
		"trailing bytes": append(append([]byte(nil), good...), 0),
	}
	for name, bz := range testCases {
		bz := bz
		t.Run(name, func(t *testing.T) {
			_, err := types.DecodePublicValues(bz)
			require.Error(t, err)
		})
	}

	_, err := types.DecodePublicValues(badBool)
	assert.True(t, errors.Is(err, bincode.ErrInvalidBool))
}
