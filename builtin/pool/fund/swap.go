// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"math"
	"math/big"

	"github.com/vechain/stakepool/builtin/reverts"
)

// Unlimited can be passed as maxItems when the caller does not bound the work.
const Unlimited = math.MaxUint64

// BeforeFunc is invoked with the owner of a record before its balance changes.
type BeforeFunc func(user uint64) error

// MoveUserFunds moves up to amount of the user's funds of type from into funds
// described by to. Records are drained oldest first, a partially consumed record
// keeps the remainder in place with its id, position and creation time.
// At most maxItems source records are touched; the moved amount and the number
// of touched records are returned. Asking for more than the user holds fails
// with OutOfRange before anything changes.
func (l *Ledger) MoveUserFunds(user uint64, from Type, to Desc, amount *big.Int, maxItems uint64, before BeforeFunc) (*big.Int, uint64, error) {
	if err := checkMove(from, to); err != nil {
		return nil, 0, err
	}
	info, err := l.UserInfo(user, from)
	if err != nil {
		return nil, 0, err
	}
	if err := checkAmount(amount, info, from); err != nil {
		return nil, 0, err
	}
	it, err := l.IterateUser(user, from)
	if err != nil {
		return nil, 0, err
	}
	return l.drain(it, amount, maxItems, before, func(owner uint64, take *big.Int) error {
		_, err := l.Append(owner, to, take)
		return err
	})
}

// MoveTypeFunds is MoveUserFunds over the funds of all users, the whole type list is drained oldest first.
// Moved value stays with its owner.
func (l *Ledger) MoveTypeFunds(from Type, to Desc, amount *big.Int, maxItems uint64, before BeforeFunc) (*big.Int, uint64, error) {
	if err := checkMove(from, to); err != nil {
		return nil, 0, err
	}
	info, err := l.TypeInfo(from)
	if err != nil {
		return nil, 0, err
	}
	if err := checkAmount(amount, info, from); err != nil {
		return nil, 0, err
	}
	it, err := l.Iterate(from)
	if err != nil {
		return nil, 0, err
	}
	return l.drain(it, amount, maxItems, before, func(owner uint64, take *big.Int) error {
		_, err := l.Append(owner, to, take)
		return err
	})
}

// DrainUserFunds removes up to amount of the user's funds of type from, oldest first.
// The removed value leaves the ledger.
func (l *Ledger) DrainUserFunds(user uint64, from Type, amount *big.Int, maxItems uint64) (*big.Int, uint64, error) {
	info, err := l.UserInfo(user, from)
	if err != nil {
		return nil, 0, err
	}
	if err := checkAmount(amount, info, from); err != nil {
		return nil, 0, err
	}
	it, err := l.IterateUser(user, from)
	if err != nil {
		return nil, 0, err
	}
	return l.drain(it, amount, maxItems, nil, nil)
}

func (l *Ledger) drain(it *Iterator, amount *big.Int, maxItems uint64, before BeforeFunc, sink func(owner uint64, take *big.Int) error) (*big.Int, uint64, error) {
	var (
		moved   = new(big.Int)
		touched uint64
		left    = new(big.Int).Set(amount)
	)
	for left.Sign() > 0 && touched < maxItems && it.Next() {
		id, item := it.ID(), it.Item()
		take := new(big.Int).Set(item.Balance)
		if take.Cmp(left) > 0 {
			take.Set(left)
		}
		if before != nil {
			if err := before(item.UserID); err != nil {
				return nil, 0, err
			}
		}
		if err := l.Reduce(id, take); err != nil {
			return nil, 0, err
		}
		if sink != nil {
			if err := sink(item.UserID, take); err != nil {
				return nil, 0, err
			}
		}
		moved.Add(moved, take)
		left.Sub(left, take)
		touched++
	}
	if err := it.Error(); err != nil {
		return nil, 0, err
	}
	if left.Sign() > 0 && touched < maxItems {
		// the aggregate promised more than the list holds
		return nil, 0, reverts.Inconsistent("list ended with %v left to drain", left)
	}
	return moved, touched, nil
}

func checkMove(from Type, to Desc) error {
	if !from.Valid() || !to.Type.Valid() {
		return reverts.OutOfRange("invalid fund type")
	}
	if from == to.Type {
		return reverts.InvalidState("cannot move %v funds into the same type", from)
	}
	return nil
}

func checkAmount(amount *big.Int, info *ListInfo, from Type) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.OutOfRange("amount must not be negative")
	}
	if amount.Cmp(info.Sum) > 0 {
		return reverts.OutOfRange("amount %v exceeds available %v funds %v", amount, from, info.Sum)
	}
	return nil
}
