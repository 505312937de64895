package runtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	MaxExtrinsicSize = 1024
	MaxBlockSize     = 4 * 1024 * 1024
)

var ErrUnmarshalEmptyExtrinsic = errors.New("cannot unmarshal empty bytes as extrinsic")

type Header struct {
	BlockNumber uint64 `json:"blockNumber"`
}

// Extrinsic is one call submitted by [Caller]. Signatures are checked, if at
// all, before an extrinsic reaches the runtime.
type Extrinsic struct {
	Caller ids.ShortID
	Call   Call
}

func (x Extrinsic) Bytes() []byte {
	var call []byte
	if x.Call != nil {
		call = x.Call.Bytes()
	}
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, ids.ShortIDLen+len(call)),
		MaxSize: MaxExtrinsicSize,
	}
	p.PackFixedBytes(x.Caller[:])
	p.PackFixedBytes(call)
	if p.Errored() {
		panic(p.Err)
	}
	return p.Bytes
}

func (x Extrinsic) ID() ids.ID {
	return ids.ID(hashing.ComputeHash256Array(x.Bytes()))
}

func UnmarshalExtrinsic(b []byte) (Extrinsic, error) {
	if len(b) == 0 {
		return Extrinsic{}, ErrUnmarshalEmptyExtrinsic
	}
	p := &wrappers.Packer{Bytes: b}
	caller, err := ids.ToShortID(p.UnpackFixedBytes(ids.ShortIDLen))
	if p.Errored() {
		return Extrinsic{}, p.Err
	}
	if err != nil {
		return Extrinsic{}, err
	}
	call, err := UnmarshalCall(b[p.Offset:])
	if err != nil {
		return Extrinsic{}, err
	}
	return Extrinsic{Caller: caller, Call: call}, nil
}

type extrinsicJSON struct {
	Caller ids.ShortID     `json:"caller"`
	Call   json.RawMessage `json:"call"`
}

func (x Extrinsic) MarshalJSON() ([]byte, error) {
	call, err := MarshalCallJSON(x.Call)
	if err != nil {
		return nil, err
	}
	return json.Marshal(extrinsicJSON{Caller: x.Caller, Call: call})
}

func (x *Extrinsic) UnmarshalJSON(b []byte) error {
	var v extrinsicJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	call, err := UnmarshalCallJSON(v.Call)
	if err != nil {
		return err
	}
	x.Caller = v.Caller
	x.Call = call
	return nil
}

type Block struct {
	Header     Header      `json:"header"`
	Extrinsics []Extrinsic `json:"extrinsics"`
}

func (b Block) Bytes() ([]byte, error) {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, wrappers.LongLen+wrappers.IntLen),
		MaxSize: MaxBlockSize,
	}
	p.PackLong(b.Header.BlockNumber)
	p.PackInt(uint32(len(b.Extrinsics)))
	for _, x := range b.Extrinsics {
		p.PackBytes(x.Bytes())
	}
	return p.Bytes, p.Err
}

func (b Block) ID() (ids.ID, error) {
	bytes, err := b.Bytes()
	if err != nil {
		return ids.Empty, err
	}
	return ids.ID(hashing.ComputeHash256Array(bytes)), nil
}

func UnmarshalBlock(bytes []byte) (Block, error) {
	p := &wrappers.Packer{Bytes: bytes}
	blk := Block{Header: Header{BlockNumber: p.UnpackLong()}}
	count := p.UnpackInt()
	if p.Errored() {
		return Block{}, p.Err
	}
	// Every extrinsic costs at least its length prefix and caller.
	if uint64(count)*(wrappers.IntLen+ids.ShortIDLen) > uint64(len(bytes)-p.Offset) {
		return Block{}, fmt.Errorf("block declares %d extrinsics in %d bytes", count, len(bytes)-p.Offset)
	}
	blk.Extrinsics = make([]Extrinsic, 0, count)
	for i := uint32(0); i < count; i++ {
		raw := p.UnpackBytes()
		if p.Errored() {
			return Block{}, p.Err
		}
		x, err := UnmarshalExtrinsic(raw)
		if err != nil {
			return Block{}, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		blk.Extrinsics = append(blk.Extrinsics, x)
	}
	if p.Offset != len(bytes) {
		return Block{}, fmt.Errorf("%d trailing bytes after block", len(bytes)-p.Offset)
	}
	return blk, nil
}
