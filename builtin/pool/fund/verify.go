// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"math/big"

	"github.com/vechain/stakepool/builtin/reverts"
)

// Verify walks up to limit records of the type list and checks links, record
// types and balances. When the whole list was walked the aggregate count and sum
// are compared with the walk too, and complete is true.
func (l *Ledger) Verify(t Type, limit uint64) (complete bool, err error) {
	info, err := l.TypeInfo(t)
	if err != nil {
		return false, err
	}
	return l.verify(info, limit, false, func(id uint64, item *Item) error {
		if item.Desc.Type != t {
			return reverts.Inconsistent("item %d of type %v is linked in %v list", id, item.Desc.Type, t)
		}
		return nil
	})
}

// VerifyUser is Verify for the user's list of type t.
func (l *Ledger) VerifyUser(user uint64, t Type, limit uint64) (complete bool, err error) {
	info, err := l.UserInfo(user, t)
	if err != nil {
		return false, err
	}
	return l.verify(info, limit, true, func(id uint64, item *Item) error {
		if item.Desc.Type != t || item.UserID != user {
			return reverts.Inconsistent("item %d of user %d type %v is linked in user %d %v list",
				id, item.UserID, item.Desc.Type, user, t)
		}
		return nil
	})
}

func (l *Ledger) verify(info *ListInfo, limit uint64, byUser bool, check func(uint64, *Item) error) (bool, error) {
	var (
		sum   = new(big.Int)
		count uint64
		prev  uint64
		id    = info.Head
	)
	for id != 0 {
		if count == limit {
			return false, nil
		}
		item, err := l.storage.mustGetItem(id)
		if err != nil {
			return false, err
		}
		if err := check(id, item); err != nil {
			return false, err
		}
		if item.Balance.Sign() <= 0 {
			return false, reverts.Inconsistent("item %d has no balance", id)
		}
		itemPrev, itemNext := item.TypePrev, item.TypeNext
		if byUser {
			itemPrev, itemNext = item.UserPrev, item.UserNext
		}
		if itemPrev != prev {
			return false, reverts.Inconsistent("item %d prev is %d, walked from %d", id, itemPrev, prev)
		}
		if itemNext == 0 && info.Tail != id {
			return false, reverts.Inconsistent("list ends at %d but tail is %d", id, info.Tail)
		}
		sum.Add(sum, item.Balance)
		count++
		prev, id = id, itemNext
	}
	if info.Tail != prev {
		return false, reverts.Inconsistent("list ends at %d but tail is %d", prev, info.Tail)
	}
	if count != info.Count {
		return false, reverts.Inconsistent("list count is %d, walked %d", info.Count, count)
	}
	if sum.Cmp(info.Sum) != 0 {
		return false, reverts.Inconsistent("list sum is %v, walked %v", info.Sum, sum)
	}
	return true, nil
}
