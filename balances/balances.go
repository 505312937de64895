// Package balances is the account balance ledger.
package balances

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/thesecretlab-dev/poevm/storage"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrUnknownCall       = errors.New("unknown balances call")
)

// Pallet owns the balance map. [db] must be the balances view returned by
// storage.BalanceDB; nothing else writes to it.
type Pallet struct {
	db database.Database
}

func New(db database.Database) *Pallet {
	return &Pallet{db: db}
}

// SetBalance overwrites the balance of [who]. It only fails if the underlying
// database does.
func (p *Pallet) SetBalance(who ids.ShortID, amount uint64) error {
	return storage.SetBalance(p.db, who, amount)
}

// Balance returns the balance of [who], or zero if it was never set.
func (p *Pallet) Balance(who ids.ShortID) (uint64, error) {
	bal, _, err := storage.GetBalance(p.db, who)
	return bal, err
}

// Transfer moves [amount] from [caller] to [to]. Both balances are computed
// with checked arithmetic before anything is written, and both writes land in
// a single batch, so a failed transfer leaves the ledger untouched.
func (p *Pallet) Transfer(caller ids.ShortID, to ids.ShortID, amount uint64) error {
	callerBal, err := p.Balance(caller)
	if err != nil {
		return err
	}
	toBal, err := p.Balance(to)
	if err != nil {
		return err
	}

	newCallerBal, err := smath.Sub(callerBal, amount)
	if err != nil {
		return fmt.Errorf("%w: (bal=%d < amount=%d, addr=%s)", ErrInsufficientFunds, callerBal, amount, caller)
	}
	// A self-transfer credits the already-debited balance, so the net effect
	// is zero but the debit must still be covered.
	if caller == to {
		toBal = newCallerBal
	}
	newToBal, err := smath.Add(toBal, amount)
	if err != nil {
		return fmt.Errorf("%w: (bal=%d, amount=%d, addr=%s)", ErrBalanceOverflow, toBal, amount, to)
	}

	batch := p.db.NewBatch()
	if err := storage.SetBalance(batch, caller, newCallerBal); err != nil {
		return err
	}
	if err := storage.SetBalance(batch, to, newToBal); err != nil {
		return err
	}
	return batch.Write()
}

// Balances returns every stored balance, including explicit zeroes.
func (p *Pallet) Balances() (map[ids.ShortID]uint64, error) {
	return storage.Balances(p.db)
}

// Dispatch routes [call] to the matching ledger operation on behalf of
// [caller] and returns its result unchanged.
func (p *Pallet) Dispatch(caller ids.ShortID, call Call) error {
	switch c := call.(type) {
	case *Transfer:
		return p.Transfer(caller, c.To, c.Amount)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
}
