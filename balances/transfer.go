package balances

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/thesecretlab-dev/poevm/consts"
)

const MaxTransferSize = wrappers.ByteLen + ids.ShortIDLen + wrappers.LongLen

var (
	ErrUnmarshalEmptyTransfer = errors.New("cannot unmarshal empty bytes as transfer")
	ErrTrailingBytes          = errors.New("trailing bytes")

	_ Call = (*Transfer)(nil)
)

// Call is the closed set of calls handled by the ledger.
type Call interface {
	GetTypeID() uint8
	Bytes() []byte

	isBalancesCall()
}

type Transfer struct {
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (*Transfer) GetTypeID() uint8 {
	return consts.TransferID
}

func (*Transfer) isBalancesCall() {}

func (t *Transfer) Bytes() []byte {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, MaxTransferSize),
		MaxSize: MaxTransferSize,
	}
	p.PackByte(consts.TransferID)
	p.PackFixedBytes(t.To[:])
	p.PackLong(t.Amount)
	if p.Errored() {
		panic(p.Err)
	}
	return p.Bytes
}

func UnmarshalTransfer(bytes []byte) (Call, error) {
	if len(bytes) == 0 {
		return nil, ErrUnmarshalEmptyTransfer
	}
	if bytes[0] != consts.TransferID {
		return nil, fmt.Errorf("unexpected transfer typeID: %d != %d", bytes[0], consts.TransferID)
	}
	p := &wrappers.Packer{Bytes: bytes, Offset: wrappers.ByteLen}
	t := &Transfer{}
	copy(t.To[:], p.UnpackFixedBytes(ids.ShortIDLen))
	t.Amount = p.UnpackLong()
	if p.Errored() {
		return nil, p.Err
	}
	if p.Offset != len(bytes) {
		return nil, fmt.Errorf("%w: %d after transfer", ErrTrailingBytes, len(bytes)-p.Offset)
	}
	return t, nil
}
