package types_test

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/libs/bincode"
	"github.com/tendermint/lightivc/types"
)

func TestDigestFromBytes(t *testing.T) {
	_, err := types.DigestFromBytes(make([]byte, 31))
	require.Error(t, err)

	sum := sha256.Sum256([]byte("abc"))
	d, err := types.DigestFromBytes(sum[:])
	require.NoError(t, err)
	assert.Equal(t, types.Digest(sum), d)
	assert.Equal(t, types.DigestOf([]byte("abc")), d)
	assert.False(t, d.IsZero())
	assert.True(t, types.Digest{}.IsZero())
}

func TestDigestJSON(t *testing.T) {
	d := types.DigestOf([]byte("genesis"))
	bz, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded types.Digest
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.Equal(t, d, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"ABCD"`), &decoded))
}

func TestDigestDecodeBincodeRejectsWrongLength(t *testing.T) {
	data := bincode.NewWriter().WriteBytes(make([]byte, 31)).Bytes()
	buf := bincode.From(data)

	var d types.Digest
	err := buf.Read(&d)
	require.Error(t, err)

	var decErr *bincode.DecodeError
	assert.True(t, errors.As(err, &decErr))
	assert.Equal(t, 0, buf.Cursor())
}

func TestVerifyingKeyIDBytesAreLittleEndian(t *testing.T) {
	id := types.VerifyingKeyID{0x04030201, 0, 0, 0, 0, 0, 0, 0xdeadbeef}
	bz := id.Bytes()
	require.Len(t, bz, types.VerifyingKeyIDSize)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, bz[:4])
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(bz[28:]))

	want := sha256.Sum256(bz)
	assert.Equal(t, types.Digest(want), id.Hash())

	// The bincode encoding carries no length prefix and matches Bytes.
	assert.Equal(t, bz, bincode.Marshal(id))
}

func TestVerifyingKeyIDParse(t *testing.T) {
	id := types.VerifyingKeyID{1, 2, 3, 4, 5, 6, 7, 8}
	parsed, err := types.ParseVerifyingKeyID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = types.ParseVerifyingKeyID("0x" + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = types.ParseVerifyingKeyID("0102")
	assert.Error(t, err)
}

func TestVerifyingKeyIDDecodeShort(t *testing.T) {
	var id types.VerifyingKeyID
	err := bincode.From(make([]byte, 31)).Read(&id)
	assert.True(t, errors.Is(err, bincode.ErrUnexpectedEnd))
}
