package runtime

import (
	"errors"
	"fmt"

	"github.com/thesecretlab-dev/poevm/balances"
	"github.com/thesecretlab-dev/poevm/claims"
	"github.com/thesecretlab-dev/poevm/consts"
)

var (
	ErrUnmarshalEmptyCall = errors.New("cannot unmarshal empty bytes as call")
	ErrUnknownCallType    = errors.New("unknown call typeID")

	errDuplicateTypeID = errors.New("duplicate call typeID")
)

type unmarshalCallFunc func([]byte) (Call, error)

var callParsers = make(map[uint8]unmarshalCallFunc)

func init() {
	if err := errors.Join(
		registerBalances(consts.TransferID, balances.UnmarshalTransfer),
		registerClaims(consts.CreateClaimID, claims.UnmarshalCreateClaim),
		registerClaims(consts.RevokeClaimID, claims.UnmarshalRevokeClaim),
	); err != nil {
		panic(err)
	}
}

func register(typeID uint8, f unmarshalCallFunc) error {
	if _, ok := callParsers[typeID]; ok {
		return fmt.Errorf("%w: %d", errDuplicateTypeID, typeID)
	}
	callParsers[typeID] = f
	return nil
}

func registerBalances(typeID uint8, f func([]byte) (balances.Call, error)) error {
	return register(typeID, func(b []byte) (Call, error) {
		c, err := f(b)
		if err != nil {
			return nil, err
		}
		return &BalancesCall{Call: c}, nil
	})
}

func registerClaims(typeID uint8, f func([]byte) (claims.Call, error)) error {
	return register(typeID, func(b []byte) (Call, error) {
		c, err := f(b)
		if err != nil {
			return nil, err
		}
		return &ClaimsCall{Call: c}, nil
	})
}

// UnmarshalCall parses call bytes produced by Call.Bytes, routing on the
// leading typeID.
func UnmarshalCall(b []byte) (Call, error) {
	if len(b) == 0 {
		return nil, ErrUnmarshalEmptyCall
	}
	f, ok := callParsers[b[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCallType, b[0])
	}
	return f(b)
}
