package storage

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"
)

// State
// 0x0/ (system)
//
//	-> 0x0 => block number
//	-> 0x1 [account] => nonce
//
// 0x1/ (balances)
//
//	-> [account] => balance
//
// 0x2/ (claims)
//
//	-> [content] => owner
const (
	systemPrefix  byte = 0x0
	balancePrefix byte = 0x1
	claimPrefix   byte = 0x2
)

const (
	blockNumberKey byte = 0x0
	noncePrefix    byte = 0x1
)

// SystemDB returns the view of [db] owned by the system module.
func SystemDB(db database.Database) database.Database {
	return prefixdb.New([]byte{systemPrefix}, db)
}

// BalanceDB returns the view of [db] owned by the balances module.
func BalanceDB(db database.Database) database.Database {
	return prefixdb.New([]byte{balancePrefix}, db)
}

// ClaimDB returns the view of [db] owned by the claims module.
func ClaimDB(db database.Database) database.Database {
	return prefixdb.New([]byte{claimPrefix}, db)
}

func innerGetUint64(v []byte, err error) (uint64, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	val, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrCorruptValue, err)
	}
	return val, true, nil
}

// ========== System ==========

func BlockNumberKey() []byte {
	return []byte{blockNumberKey}
}

func NonceKey(addr ids.ShortID) (k []byte) {
	k = make([]byte, 1+ids.ShortIDLen)
	k[0] = noncePrefix
	copy(k[1:], addr[:])
	return
}

func GetBlockNumber(db database.KeyValueReader) (uint64, error) {
	n, _, err := innerGetUint64(db.Get(BlockNumberKey()))
	return n, err
}

func SetBlockNumber(db database.KeyValueWriter, n uint64) error {
	return database.PutUInt64(db, BlockNumberKey(), n)
}

// GetNonce reports whether a nonce was ever stored for [addr] so callers can
// pick their own default for untouched accounts.
func GetNonce(db database.KeyValueReader, addr ids.ShortID) (uint64, bool, error) {
	return innerGetUint64(db.Get(NonceKey(addr)))
}

func SetNonce(db database.KeyValueWriter, addr ids.ShortID, nonce uint64) error {
	return database.PutUInt64(db, NonceKey(addr), nonce)
}

func Nonces(db database.Iteratee) (map[ids.ShortID]uint64, error) {
	it := db.NewIteratorWithPrefix([]byte{noncePrefix})
	defer it.Release()

	nonces := make(map[ids.ShortID]uint64)
	for it.Next() {
		k := it.Key()
		addr, err := ids.ToShortID(k[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: nonce key %x: %w", ErrCorruptValue, k, err)
		}
		nonce, err := database.ParseUInt64(it.Value())
		if err != nil {
			return nil, fmt.Errorf("%w: nonce of %s: %w", ErrCorruptValue, addr, err)
		}
		nonces[addr] = nonce
	}
	return nonces, it.Error()
}

// ========== Balance ==========

func BalanceKey(addr ids.ShortID) (k []byte) {
	k = make([]byte, ids.ShortIDLen)
	copy(k, addr[:])
	return
}

func GetBalance(db database.KeyValueReader, addr ids.ShortID) (uint64, bool, error) {
	return innerGetUint64(db.Get(BalanceKey(addr)))
}

func SetBalance(db database.KeyValueWriter, addr ids.ShortID, balance uint64) error {
	return database.PutUInt64(db, BalanceKey(addr), balance)
}

func Balances(db database.Iteratee) (map[ids.ShortID]uint64, error) {
	it := db.NewIterator()
	defer it.Release()

	balances := make(map[ids.ShortID]uint64)
	for it.Next() {
		addr, err := ids.ToShortID(it.Key())
		if err != nil {
			return nil, fmt.Errorf("%w: balance key %x: %w", ErrCorruptValue, it.Key(), err)
		}
		bal, err := database.ParseUInt64(it.Value())
		if err != nil {
			return nil, fmt.Errorf("%w: balance of %s: %w", ErrCorruptValue, addr, err)
		}
		balances[addr] = bal
	}
	return balances, it.Error()
}

// ========== Claim ==========

func ClaimKey(content ids.ID) (k []byte) {
	k = make([]byte, ids.IDLen)
	copy(k, content[:])
	return
}

func GetClaim(db database.KeyValueReader, content ids.ID) (ids.ShortID, bool, error) {
	v, err := db.Get(ClaimKey(content))
	if errors.Is(err, database.ErrNotFound) {
		return ids.ShortEmpty, false, nil
	}
	if err != nil {
		return ids.ShortEmpty, false, err
	}
	owner, err := ids.ToShortID(v)
	if err != nil {
		return ids.ShortEmpty, false, fmt.Errorf("%w: owner of %s: %w", ErrCorruptValue, content, err)
	}
	return owner, true, nil
}

func PutClaim(db database.KeyValueWriter, content ids.ID, owner ids.ShortID) error {
	v := make([]byte, ids.ShortIDLen)
	copy(v, owner[:])
	return db.Put(ClaimKey(content), v)
}

func RemoveClaim(db database.KeyValueDeleter, content ids.ID) error {
	return db.Delete(ClaimKey(content))
}

func Claims(db database.Iteratee) (map[ids.ID]ids.ShortID, error) {
	it := db.NewIterator()
	defer it.Release()

	claims := make(map[ids.ID]ids.ShortID)
	for it.Next() {
		content, err := ids.ToID(it.Key())
		if err != nil {
			return nil, fmt.Errorf("%w: claim key %x: %w", ErrCorruptValue, it.Key(), err)
		}
		owner, err := ids.ToShortID(it.Value())
		if err != nil {
			return nil, fmt.Errorf("%w: owner of %s: %w", ErrCorruptValue, content, err)
		}
		claims[content] = owner
	}
	return claims, it.Error()
}
