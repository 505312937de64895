// Package system tracks the block number and per-account nonces.
package system

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/thesecretlab-dev/poevm/storage"
)

// Pallet owns the block number and the nonce map. [db] must be the view
// returned by storage.SystemDB.
type Pallet struct {
	db database.Database
}

func New(db database.Database) *Pallet {
	return &Pallet{db: db}
}

// BlockNumber is zero until the first block is executed.
func (p *Pallet) BlockNumber() (uint64, error) {
	return storage.GetBlockNumber(p.db)
}

// IncrementBlockNumber adds one to the block number. Overflow wraps.
func (p *Pallet) IncrementBlockNumber() error {
	n, err := p.BlockNumber()
	if err != nil {
		return err
	}
	return storage.SetBlockNumber(p.db, n+1)
}

// IncrementNonce adds one to the nonce of [who], counting an untouched
// account as zero. Overflow wraps.
func (p *Pallet) IncrementNonce(who ids.ShortID) error {
	nonce, _, err := storage.GetNonce(p.db, who)
	if err != nil {
		return err
	}
	return storage.SetNonce(p.db, who, nonce+1)
}

// Nonce returns the nonce of [who].
//
// An account that never sent an extrinsic reports 1, not 0, while
// IncrementNonce counts it from 0. Callers relying on Nonce for replay checks
// must account for that.
func (p *Pallet) Nonce(who ids.ShortID) (uint64, error) {
	nonce, ok, err := storage.GetNonce(p.db, who)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	return nonce, nil
}

// Nonces returns every stored nonce.
func (p *Pallet) Nonces() (map[ids.ShortID]uint64, error) {
	return storage.Nonces(p.db)
}
