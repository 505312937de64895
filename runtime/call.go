package runtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/thesecretlab-dev/poevm/balances"
	"github.com/thesecretlab-dev/poevm/claims"
)

const (
	TransferType    = "transfer"
	CreateClaimType = "createClaim"
	RevokeClaimType = "revokeClaim"
)

var (
	ErrInvalidCallJSON = errors.New("invalid call json")

	_ Call = (*BalancesCall)(nil)
	_ Call = (*ClaimsCall)(nil)
)

// Call is the closed set of calls the runtime can dispatch: one variant per
// module, each wrapping that module's own call set.
type Call interface {
	GetTypeID() uint8
	Bytes() []byte

	isRuntimeCall()
}

type BalancesCall struct {
	Call balances.Call
}

func (c *BalancesCall) GetTypeID() uint8 { return c.Call.GetTypeID() }
func (*BalancesCall) isRuntimeCall()     {}

func (c *BalancesCall) Bytes() []byte {
	if c.Call == nil {
		return nil
	}
	return c.Call.Bytes()
}

type ClaimsCall struct {
	Call claims.Call
}

func (c *ClaimsCall) GetTypeID() uint8 { return c.Call.GetTypeID() }
func (*ClaimsCall) isRuntimeCall()     {}

func (c *ClaimsCall) Bytes() []byte {
	if c.Call == nil {
		return nil
	}
	return c.Call.Bytes()
}

func Transfer(to ids.ShortID, amount uint64) Call {
	return &BalancesCall{Call: &balances.Transfer{To: to, Amount: amount}}
}

func CreateClaim(content ids.ID) Call {
	return &ClaimsCall{Call: &claims.CreateClaim{Claim: content}}
}

func RevokeClaim(content ids.ID) Call {
	return &ClaimsCall{Call: &claims.RevokeClaim{Claim: content}}
}

// callJSON is the human-editable form of a call. For claim calls, Content is
// hashed with claims.ContentID when Claim is not set.
type callJSON struct {
	Type    string       `json:"type"`
	To      *ids.ShortID `json:"to,omitempty"`
	Amount  *uint64      `json:"amount,omitempty"`
	Claim   *ids.ID      `json:"claim,omitempty"`
	Content string       `json:"content,omitempty"`
}

func MarshalCallJSON(call Call) ([]byte, error) {
	var v callJSON
	switch c := call.(type) {
	case *BalancesCall:
		switch bc := c.Call.(type) {
		case *balances.Transfer:
			v = callJSON{Type: TransferType, To: &bc.To, Amount: &bc.Amount}
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownCall, c.Call)
		}
	case *ClaimsCall:
		switch cc := c.Call.(type) {
		case *claims.CreateClaim:
			v = callJSON{Type: CreateClaimType, Claim: &cc.Claim}
		case *claims.RevokeClaim:
			v = callJSON{Type: RevokeClaimType, Claim: &cc.Claim}
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownCall, c.Call)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
	return json.Marshal(v)
}

func UnmarshalCallJSON(b []byte) (Call, error) {
	var v callJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCallJSON, err)
	}
	switch v.Type {
	case TransferType:
		if v.To == nil || v.Amount == nil {
			return nil, fmt.Errorf("%w: transfer needs to and amount", ErrInvalidCallJSON)
		}
		return Transfer(*v.To, *v.Amount), nil
	case CreateClaimType, RevokeClaimType:
		var content ids.ID
		switch {
		case v.Claim != nil:
			content = *v.Claim
		case v.Content != "":
			content = claims.ContentID([]byte(v.Content))
		default:
			return nil, fmt.Errorf("%w: %s needs claim or content", ErrInvalidCallJSON, v.Type)
		}
		if v.Type == CreateClaimType {
			return CreateClaim(content), nil
		}
		return RevokeClaim(content), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCallJSON, v.Type)
	}
}

// callType names [call] for logs and metric labels.
func callType(call Call) string {
	switch c := call.(type) {
	case *BalancesCall:
		if _, ok := c.Call.(*balances.Transfer); ok {
			return TransferType
		}
	case *ClaimsCall:
		switch c.Call.(type) {
		case *claims.CreateClaim:
			return CreateClaimType
		case *claims.RevokeClaim:
			return RevokeClaimType
		}
	}
	return "unknown"
}
