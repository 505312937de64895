package claims

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/thesecretlab-dev/poevm/consts"
)

const MaxClaimCallSize = wrappers.ByteLen + ids.IDLen

var (
	ErrUnmarshalEmptyCall = errors.New("cannot unmarshal empty bytes as claim call")
	ErrTrailingBytes      = errors.New("trailing bytes")

	_ Call = (*CreateClaim)(nil)
	_ Call = (*RevokeClaim)(nil)
)

// Call is the closed set of calls handled by the registry.
type Call interface {
	GetTypeID() uint8
	Bytes() []byte

	isClaimsCall()
}

type CreateClaim struct {
	Claim ids.ID `json:"claim"`
}

func (*CreateClaim) GetTypeID() uint8 {
	return consts.CreateClaimID
}

func (*CreateClaim) isClaimsCall() {}

func (c *CreateClaim) Bytes() []byte {
	return packClaimCall(consts.CreateClaimID, c.Claim)
}

func UnmarshalCreateClaim(bytes []byte) (Call, error) {
	content, err := unpackClaimCall(consts.CreateClaimID, bytes)
	if err != nil {
		return nil, err
	}
	return &CreateClaim{Claim: content}, nil
}

type RevokeClaim struct {
	Claim ids.ID `json:"claim"`
}

func (*RevokeClaim) GetTypeID() uint8 {
	return consts.RevokeClaimID
}

func (*RevokeClaim) isClaimsCall() {}

func (r *RevokeClaim) Bytes() []byte {
	return packClaimCall(consts.RevokeClaimID, r.Claim)
}

func UnmarshalRevokeClaim(bytes []byte) (Call, error) {
	content, err := unpackClaimCall(consts.RevokeClaimID, bytes)
	if err != nil {
		return nil, err
	}
	return &RevokeClaim{Claim: content}, nil
}

func packClaimCall(typeID uint8, content ids.ID) []byte {
	p := &wrappers.Packer{
		Bytes:   make([]byte, 0, MaxClaimCallSize),
		MaxSize: MaxClaimCallSize,
	}
	p.PackByte(typeID)
	p.PackFixedBytes(content[:])
	if p.Errored() {
		panic(p.Err)
	}
	return p.Bytes
}

func unpackClaimCall(typeID uint8, bytes []byte) (ids.ID, error) {
	if len(bytes) == 0 {
		return ids.Empty, ErrUnmarshalEmptyCall
	}
	if bytes[0] != typeID {
		return ids.Empty, fmt.Errorf("unexpected claim call typeID: %d != %d", bytes[0], typeID)
	}
	p := &wrappers.Packer{Bytes: bytes, Offset: wrappers.ByteLen}
	var content ids.ID
	copy(content[:], p.UnpackFixedBytes(ids.IDLen))
	if p.Errored() {
		return ids.Empty, p.Err
	}
	if p.Offset != len(bytes) {
		return ids.Empty, fmt.Errorf("%w: %d after claim call", ErrTrailingBytes, len(bytes)-p.Offset)
	}
	return content, nil
}
