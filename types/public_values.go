package types

import (
	"fmt"

	"github.com/tendermint/lightivc/libs/bincode"
)

// PublicValuesSize is the encoded size of PublicValues.
const PublicValuesSize = 3*(bincode.LenPrefixSize+DigestSize) + bincode.BoolSize

// PublicValues is the state one proving step commits for the next. Fields are
// encoded positionally, in declaration order: the three digests as
// length-prefixed 32 byte sequences, then ok as a single byte.
//
// Changing the order or width of any field breaks every chain proved with the
// previous layout.
type PublicValues struct {
	VKeyHash    Digest `json:"vkey_hash"`
	GenesisHash Digest `json:"genesis_hash"`
	HeadHash    Digest `json:"head_hash"`
	OK          bool   `json:"ok"`
}

var (
	_ bincode.Decoder = (*PublicValues)(nil)
	_ bincode.Encoder = PublicValues{}
)

// DecodePublicValues decodes exactly one PublicValues from bz.
func DecodePublicValues(bz []byte) (PublicValues, error) {
	var pv PublicValues
	if err := bincode.Unmarshal(bz, &pv); err != nil {
		return PublicValues{}, err
	}
	return pv, nil
}

// DecodeBincode reads the four fields in order.
func (pv *PublicValues) DecodeBincode(data []byte) error {
	buf := bincode.From(data)
	var out PublicValues
	if err := buf.Read(&out.VKeyHash); err != nil {
		return err
	}
	if err := buf.Read(&out.GenesisHash); err != nil {
		return err
	}
	if err := buf.Read(&out.HeadHash); err != nil {
		return err
	}
	ok, err := buf.ReadBool()
	if err != nil {
		return err
	}
	out.OK = ok
	*pv = out
	return nil
}

func (PublicValues) BincodeSize() int { return PublicValuesSize }

func (pv PublicValues) EncodeBincode(w *bincode.Writer) {
	w.Write(pv.VKeyHash).
		Write(pv.GenesisHash).
		Write(pv.HeadHash).
		WriteBool(pv.OK)
}

// Bytes returns the positional encoding.
func (pv PublicValues) Bytes() []byte {
	return bincode.Marshal(pv)
}

// Digest returns the SHA-256 of Bytes.
func (pv PublicValues) Digest() Digest {
	return DigestOf(pv.Bytes())
}

func (pv PublicValues) String() string {
	return fmt.Sprintf("PublicValues{vkey:%v genesis:%v head:%v ok:%v}",
		pv.VKeyHash, pv.GenesisHash, pv.HeadHash, pv.OK)
}
