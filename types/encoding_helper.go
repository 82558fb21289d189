package types

import (
	"time"

	"github.com/gogo/protobuf/proto"
	gogotypes "github.com/gogo/protobuf/types"

	tmbytes "github.com/tendermint/lightivc/libs/bytes"
	"github.com/tendermint/lightivc/version"
)

const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
)

// cdcEncode returns nil if the input is nil or empty, otherwise returns
// proto.Marshal(<type>Value{Value: item}).
func cdcEncode(item interface{}) []byte {
	var (
		bz  []byte
		err error
	)
	switch item := item.(type) {
	case string:
		if item == "" {
			return nil
		}
		bz, err = (&gogotypes.StringValue{Value: item}).Marshal()
	case int64:
		if item == 0 {
			return nil
		}
		bz, err = (&gogotypes.Int64Value{Value: item}).Marshal()
	case tmbytes.HexBytes:
		if len(item) == 0 {
			return nil
		}
		bz, err = (&gogotypes.BytesValue{Value: item}).Marshal()
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return bz
}

// protoEncoder writes the wire form of the tendermint.types messages that
// are hashed or signed. Zero scalars are omitted as proto3 does.
type protoEncoder struct {
	buf proto.Buffer
}

func (e *protoEncoder) key(field, wire int) {
	_ = e.buf.EncodeVarint(uint64(field<<3 | wire))
}

func (e *protoEncoder) uvarint(field int, v uint64) {
	if v == 0 {
		return
	}
	e.key(field, wireVarint)
	_ = e.buf.EncodeVarint(v)
}

func (e *protoEncoder) sfixed64(field int, v int64) {
	if v == 0 {
		return
	}
	e.key(field, wireFixed64)
	_ = e.buf.EncodeFixed64(uint64(v))
}

func (e *protoEncoder) bytes(field int, bz []byte) {
	if len(bz) == 0 {
		return
	}
	e.message(field, bz)
}

func (e *protoEncoder) string(field int, s string) {
	e.bytes(field, []byte(s))
}

// message writes an embedded message even when it is empty, matching
// non-nullable gogoproto fields.
func (e *protoEncoder) message(field int, bz []byte) {
	e.key(field, wireBytes)
	_ = e.buf.EncodeRawBytes(bz)
}

func (e *protoEncoder) timestamp(field int, t time.Time) error {
	bz, err := gogotypes.StdTimeMarshal(t)
	if err != nil {
		return err
	}
	e.message(field, bz)
	return nil
}

func (e *protoEncoder) Bytes() []byte { return e.buf.Bytes() }

// marshalDelimited prefixes bz with its uvarint length.
func marshalDelimited(bz []byte) []byte {
	return append(proto.EncodeVarint(uint64(len(bz))), bz...)
}

// encodeConsensusVersion is the tendermint.version.Consensus encoding.
func encodeConsensusVersion(v version.Consensus) []byte {
	var e protoEncoder
	e.uvarint(1, v.Block.Uint64())
	e.uvarint(2, v.App.Uint64())
	return e.Bytes()
}
