// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/luxfi/ids"
)

// Class names a record class of the ledger state.
type Class uint8

const (
	BalanceClass Class = iota
	LoanClass
	PoolClass
	FrozenClass
	AssetRateClass
	GlobalRateClass
)

func (c Class) String() string {
	switch c {
	case BalanceClass:
		return "balance"
	case LoanClass:
		return "loan"
	case PoolClass:
		return "pool"
	case FrozenClass:
		return "frozen"
	case AssetRateClass:
		return "rate"
	case GlobalRateClass:
		return "global rate"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Key identifies one stored record. Unused fields are left empty, so keys
// are comparable and may be used as map keys.
type Key struct {
	Class   Class
	Asset   ids.ID
	Account ids.ShortID
}

func BalanceKey(asset ids.ID, account ids.ShortID) Key {
	return Key{Class: BalanceClass, Asset: asset, Account: account}
}

func LoanKey(asset ids.ID, account ids.ShortID) Key {
	return Key{Class: LoanClass, Asset: asset, Account: account}
}

func PoolKey(asset ids.ID) Key {
	return Key{Class: PoolClass, Asset: asset}
}

func FrozenKey(asset ids.ID) Key {
	return Key{Class: FrozenClass, Asset: asset}
}

func AssetRateKey(asset ids.ID) Key {
	return Key{Class: AssetRateClass, Asset: asset}
}

func GlobalRateKey() Key {
	return Key{Class: GlobalRateClass}
}

func (k Key) String() string {
	switch k.Class {
	case BalanceClass, LoanClass:
		return fmt.Sprintf("%s/%s/%s", k.Class, k.Asset, k.Account)
	case GlobalRateClass:
		return k.Class.String()
	default:
		return fmt.Sprintf("%s/%s", k.Class, k.Asset)
	}
}

const holdingKeyLen = ids.IDLen + len(ids.ShortEmpty)

// holdingKey is the on-disk key of a per-(asset, account) record.
func holdingKey(asset ids.ID, account ids.ShortID) []byte {
	key := make([]byte, holdingKeyLen)
	copy(key, asset[:])
	copy(key[ids.IDLen:], account[:])
	return key
}

func parseHoldingKey(key []byte) (ids.ID, ids.ShortID, error) {
	if len(key) != holdingKeyLen {
		return ids.Empty, ids.ShortEmpty, fmt.Errorf("%w: key length %d", ErrCorrupted, len(key))
	}
	var (
		asset   ids.ID
		account ids.ShortID
	)
	copy(asset[:], key[:ids.IDLen])
	copy(account[:], key[ids.IDLen:])
	return asset, account, nil
}
