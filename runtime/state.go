package runtime

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"slices"

	"github.com/ava-labs/avalanchego/ids"
)

const StateRootDomainTag = "POEVM_STATE_V1"

// StateRoot commits to every key/value pair held by the runtime, in key order.
// Runtimes fed the same genesis and blocks report the same root.
func (r *Runtime) StateRoot() (ids.ID, error) {
	it := r.db.NewIterator()
	defer it.Release()

	h := sha256.New()
	_, _ = h.Write([]byte(StateRootDomainTag))
	var scratch [4]byte
	for it.Next() {
		for _, b := range [][]byte{it.Key(), it.Value()} {
			binary.BigEndian.PutUint32(scratch[:], uint32(len(b)))
			_, _ = h.Write(scratch[:])
			_, _ = h.Write(b)
		}
	}
	if err := it.Error(); err != nil {
		return ids.Empty, err
	}

	var root ids.ID
	copy(root[:], h.Sum(nil))
	return root, nil
}

type AccountBalance struct {
	Address ids.ShortID `json:"address"`
	Balance uint64      `json:"balance"`
}

type AccountNonce struct {
	Address ids.ShortID `json:"address"`
	Nonce   uint64      `json:"nonce"`
}

type ClaimOwner struct {
	Claim ids.ID      `json:"claim"`
	Owner ids.ShortID `json:"owner"`
}

// Snapshot is a point-in-time dump of the runtime's state with every list
// sorted by key.
type Snapshot struct {
	BlockNumber uint64           `json:"blockNumber"`
	StateRoot   ids.ID           `json:"stateRoot"`
	Balances    []AccountBalance `json:"balances"`
	Nonces      []AccountNonce   `json:"nonces"`
	Claims      []ClaimOwner     `json:"claims"`
}

func (r *Runtime) Snapshot() (*Snapshot, error) {
	number, err := r.system.BlockNumber()
	if err != nil {
		return nil, err
	}
	root, err := r.StateRoot()
	if err != nil {
		return nil, err
	}
	bals, err := r.balances.Balances()
	if err != nil {
		return nil, err
	}
	nonces, err := r.system.Nonces()
	if err != nil {
		return nil, err
	}
	owners, err := r.claims.Claims()
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		BlockNumber: number,
		StateRoot:   root,
		Balances:    make([]AccountBalance, 0, len(bals)),
		Nonces:      make([]AccountNonce, 0, len(nonces)),
		Claims:      make([]ClaimOwner, 0, len(owners)),
	}
	for addr, bal := range bals {
		s.Balances = append(s.Balances, AccountBalance{Address: addr, Balance: bal})
	}
	for addr, nonce := range nonces {
		s.Nonces = append(s.Nonces, AccountNonce{Address: addr, Nonce: nonce})
	}
	for content, owner := range owners {
		s.Claims = append(s.Claims, ClaimOwner{Claim: content, Owner: owner})
	}
	slices.SortFunc(s.Balances, func(a, b AccountBalance) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	slices.SortFunc(s.Nonces, func(a, b AccountNonce) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	slices.SortFunc(s.Claims, func(a, b ClaimOwner) int {
		return bytes.Compare(a.Claim[:], b.Claim[:])
	})
	return s, nil
}
