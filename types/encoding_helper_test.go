package types

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	gogotypes "github.com/gogo/protobuf/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/crypto"
	"github.com/tendermint/lightivc/crypto/ed25519"
	"github.com/tendermint/lightivc/crypto/merkle"
	"github.com/tendermint/lightivc/crypto/tmhash"
	tmbytes "github.com/tendermint/lightivc/libs/bytes"
	"github.com/tendermint/lightivc/version"
)

// zeroTimestamp is google.protobuf.Timestamp for time.Time{}.
var zeroTimestamp = []byte{0x08, 0x80, 0x92, 0xb8, 0xc3, 0x98, 0xfe, 0xff, 0xff, 0xff, 0x01}

func TestCdcEncode(t *testing.T) {
	testCases := []struct {
		name string
		item interface{}
		want []byte
	}{
		{"string", "chainId", append([]byte{0x0a, 0x07}, "chainId"...)},
		{"int64", int64(3), []byte{0x08, 0x03}},
		{"bytes", tmbytes.HexBytes{0xab, 0xcd}, []byte{0x0a, 0x02, 0xab, 0xcd}},
		{"empty string", "", nil},
		{"zero int64", int64(0), nil},
		{"empty bytes", tmbytes.HexBytes{}, nil},
		{"unsupported", 3, nil},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cdcEncode(tc.item))
		})
	}
}

func TestBlockIDProtoBytes(t *testing.T) {
	// part_set_header is always present, even for the nil block.
	assert.Equal(t, []byte{0x12, 0x00}, BlockID{}.protoBytes())

	zeros := make([]byte, tmhash.Size)
	bid := BlockID{Hash: zeros, PartSetHeader: PartSetHeader{Total: 6, Hash: zeros}}
	var want []byte
	want = append(want, 0x0a, 0x20)
	want = append(want, zeros...)
	want = append(want, 0x12, 0x24, 0x08, 0x06, 0x12, 0x20)
	want = append(want, zeros...)
	assert.Equal(t, want, bid.protoBytes())

	other := bid
	other.PartSetHeader.Total = 7
	assert.NotEqual(t, bid.Key(), other.Key())
}

// TestHeaderHashFieldOrder hashes every header field on its own, in struct
// order, and checks Hash builds the same tree.
func TestHeaderHashFieldOrder(t *testing.T) {
	h := Header{
		Version:            version.Consensus{Block: 11, App: 1},
		ChainID:            "order",
		Height:             9,
		Time:               time.Date(2022, 1, 2, 3, 4, 5, 6, time.UTC),
		LastBlockID:        BlockID{Hash: tmhash.Sum([]byte("last")), PartSetHeader: PartSetHeader{Total: 2, Hash: tmhash.Sum([]byte("parts"))}},
		LastCommitHash:     tmhash.Sum([]byte("last_commit_hash")),
		DataHash:           tmhash.Sum([]byte("data_hash")),
		ValidatorsHash:     tmhash.Sum([]byte("validators_hash")),
		NextValidatorsHash: tmhash.Sum([]byte("next_validators_hash")),
		ConsensusHash:      tmhash.Sum([]byte("consensus_hash")),
		AppHash:            tmhash.Sum([]byte("app_hash")),
		LastResultsHash:    tmhash.Sum([]byte("last_results_hash")),
		EvidenceHash:       tmhash.Sum([]byte("evidence_hash")),
		ProposerAddress:    crypto.AddressHash([]byte("proposer_address")),
	}

	var leaves [][]byte
	s := reflect.ValueOf(h)
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		require.False(t, f.IsZero(), "zero-valued field %v", s.Type().Field(i).Name)

		switch f := f.Interface().(type) {
		case int64, tmbytes.HexBytes, string:
			leaves = append(leaves, cdcEncode(f))
		case time.Time:
			bz, err := gogotypes.StdTimeMarshal(f)
			require.NoError(t, err)
			leaves = append(leaves, bz)
		case version.Consensus:
			leaves = append(leaves, []byte{0x08, byte(f.Block), 0x10, byte(f.App)})
		case BlockID:
			leaves = append(leaves, f.protoBytes())
		default:
			t.Errorf("unknown type %T", f)
		}
	}
	assert.Equal(t, tmbytes.HexBytes(merkle.HashFromByteSlices(leaves)), h.Hash())
}

func TestCommitSigProtoBytes(t *testing.T) {
	bz, err := NewCommitSigAbsent().protoBytes()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x08, 0x01, 0x1a, 0x0b}, zeroTimestamp...), bz)

	addr := bytes.Repeat([]byte{0x01}, crypto.AddressSize)
	cs := CommitSig{
		BlockIDFlag:      BlockIDFlagCommit,
		ValidatorAddress: addr,
		Timestamp:        time.Unix(1, 0),
		Signature:        []byte{0xee},
	}
	bz, err = cs.protoBytes()
	require.NoError(t, err)
	var want []byte
	want = append(want, 0x08, 0x02, 0x12, 0x14)
	want = append(want, addr...)
	want = append(want, 0x1a, 0x02, 0x08, 0x01)
	want = append(want, 0x22, 0x01, 0xee)
	assert.Equal(t, want, bz)
}

func TestValidatorBytes(t *testing.T) {
	pub := ed25519.PubKey(bytes.Repeat([]byte{0x07}, ed25519.PubKeySize))
	val := NewValidator(pub, 10)

	var want []byte
	want = append(want, 0x0a, 0x22, 0x0a, 0x20)
	want = append(want, pub...)
	want = append(want, 0x10, 0x0a)
	assert.Equal(t, want, val.Bytes())

	// Proposer priority changes every round and is not hashed.
	val.ProposerPriority = 5
	assert.Equal(t, want, val.Bytes())
}
