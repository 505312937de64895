// Package claims is the proof-of-existence registry: each piece of content can
// be claimed by at most one account at a time.
package claims

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/thesecretlab-dev/poevm/storage"
)

var (
	ErrAlreadyClaimed = errors.New("content already claimed")
	ErrClaimNotFound  = errors.New("claim does not exist")
	ErrNotClaimOwner  = errors.New("content belongs to another account")
	ErrUnknownCall    = errors.New("unknown claims call")
)

// ContentID is the claim key for arbitrary content: its SHA-256 digest.
func ContentID(content []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(content))
}

// Pallet owns the claim map. [db] must be the view returned by
// storage.ClaimDB.
type Pallet struct {
	db database.Database
}

func New(db database.Database) *Pallet {
	return &Pallet{db: db}
}

// Claim returns the owner of [content], if any.
func (p *Pallet) Claim(content ids.ID) (ids.ShortID, bool, error) {
	return storage.GetClaim(p.db, content)
}

func (p *Pallet) CreateClaim(caller ids.ShortID, content ids.ID) error {
	owner, ok, err := p.Claim(content)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: (content=%s, owner=%s)", ErrAlreadyClaimed, content, owner)
	}
	return storage.PutClaim(p.db, content, caller)
}

// RevokeClaim removes the claim on [content]. Only the current owner may
// revoke it.
func (p *Pallet) RevokeClaim(caller ids.ShortID, content ids.ID) error {
	owner, ok, err := p.Claim(content)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: (content=%s)", ErrClaimNotFound, content)
	}
	if owner != caller {
		return fmt.Errorf("%w: (content=%s, owner=%s, caller=%s)", ErrNotClaimOwner, content, owner, caller)
	}
	return storage.RemoveClaim(p.db, content)
}

func (p *Pallet) Claims() (map[ids.ID]ids.ShortID, error) {
	return storage.Claims(p.db)
}

// Dispatch routes [call] to the matching registry operation on behalf of
// [caller] and returns its result unchanged.
func (p *Pallet) Dispatch(caller ids.ShortID, call Call) error {
	switch c := call.(type) {
	case *CreateClaim:
		return p.CreateClaim(caller, c.Claim)
	case *RevokeClaim:
		return p.RevokeClaim(caller, c.Claim)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
}
