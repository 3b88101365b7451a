// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"math/big"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
)

// Ledger stores fund records. Every record is linked into the list of its
// type and into the list of its (user, type), both ordered oldest first.
// The aggregates of both lists change together with the record.
type Ledger struct {
	storage *storage
}

func New(sctx *solidity.Context) *Ledger {
	return &Ledger{storage: newStorage(sctx)}
}

// Get returns the fund record with the given id.
func (l *Ledger) Get(id uint64) (*Item, error) {
	item, err := l.storage.getItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, reverts.NotFound("fund item %d", id)
	}
	return item, nil
}

// TypeInfo returns the aggregate of all funds of type t.
func (l *Ledger) TypeInfo(t Type) (*ListInfo, error) {
	if !t.Valid() {
		return nil, reverts.OutOfRange("invalid fund type %d", t)
	}
	return l.storage.getTypeList(t)
}

// UserInfo returns the aggregate of the user's funds of type t.
func (l *Ledger) UserInfo(user uint64, t Type) (*ListInfo, error) {
	if !t.Valid() {
		return nil, reverts.OutOfRange("invalid fund type %d", t)
	}
	return l.storage.getUserList(user, t)
}

// UserTotal sums the user's funds over all types.
func (l *Ledger) UserTotal(user uint64) (*big.Int, error) {
	total := new(big.Int)
	for _, t := range Types {
		info, err := l.storage.getUserList(user, t)
		if err != nil {
			return nil, err
		}
		total.Add(total, info.Sum)
	}
	return total, nil
}

// Append adds amount to the user's funds described by desc and returns the id
// of the record holding it. Coalescing types merge into the user's newest record
// when it has the same desc, otherwise a new record is linked at the tail of both lists.
func (l *Ledger) Append(user uint64, desc Desc, amount *big.Int) (uint64, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, reverts.OutOfRange("append amount must be positive")
	}
	if !desc.Type.Valid() {
		return 0, reverts.OutOfRange("invalid fund type %d", desc.Type)
	}
	if user == 0 {
		return 0, reverts.OutOfRange("invalid user id 0")
	}

	typeList, err := l.storage.getTypeList(desc.Type)
	if err != nil {
		return 0, err
	}
	userList, err := l.storage.getUserList(user, desc.Type)
	if err != nil {
		return 0, err
	}

	if desc.Type.AllowCoalesce() && userList.Tail != 0 {
		tail, err := l.storage.mustGetItem(userList.Tail)
		if err != nil {
			return 0, err
		}
		if tail.Desc == desc {
			tail.Balance.Add(tail.Balance, amount)
			if err := l.storage.setItem(userList.Tail, tail); err != nil {
				return 0, err
			}
			typeList.Sum.Add(typeList.Sum, amount)
			userList.Sum.Add(userList.Sum, amount)
			if err := l.storage.setTypeList(desc.Type, typeList); err != nil {
				return 0, err
			}
			return userList.Tail, l.storage.setUserList(user, desc.Type, userList)
		}
	}

	id, err := l.storage.allocID()
	if err != nil {
		return 0, err
	}
	item := &Item{
		Desc:     desc,
		UserID:   user,
		Balance:  new(big.Int).Set(amount),
		TypePrev: typeList.Tail,
		UserPrev: userList.Tail,
	}

	// link after the current tails
	if typeList.Tail != 0 {
		prev, err := l.storage.mustGetItem(typeList.Tail)
		if err != nil {
			return 0, err
		}
		prev.TypeNext = id
		if err := l.storage.setItem(typeList.Tail, prev); err != nil {
			return 0, err
		}
	} else {
		typeList.Head = id
	}
	if userList.Tail != 0 {
		// the user's tail can be the type tail that was just updated
		prev, err := l.storage.mustGetItem(userList.Tail)
		if err != nil {
			return 0, err
		}
		prev.UserNext = id
		if err := l.storage.setItem(userList.Tail, prev); err != nil {
			return 0, err
		}
	} else {
		userList.Head = id
	}
	if err := l.storage.setItem(id, item); err != nil {
		return 0, err
	}

	typeList.Tail = id
	typeList.Count++
	typeList.Sum.Add(typeList.Sum, amount)
	userList.Tail = id
	userList.Count++
	userList.Sum.Add(userList.Sum, amount)

	if err := l.storage.setTypeList(desc.Type, typeList); err != nil {
		return 0, err
	}
	if err := l.storage.setUserList(user, desc.Type, userList); err != nil {
		return 0, err
	}
	return id, nil
}

// Reduce takes amount off the record. A record reaching zero is unlinked
// from both lists and removed.
func (l *Ledger) Reduce(id uint64, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.OutOfRange("reduce amount must not be negative")
	}
	item, err := l.Get(id)
	if err != nil {
		return err
	}
	if amount.Cmp(item.Balance) > 0 {
		return reverts.OutOfRange("fund item %d: reduce %v exceeds balance %v", id, amount, item.Balance)
	}
	if amount.Sign() == 0 {
		return nil
	}

	typeList, err := l.storage.getTypeList(item.Desc.Type)
	if err != nil {
		return err
	}
	userList, err := l.storage.getUserList(item.UserID, item.Desc.Type)
	if err != nil {
		return err
	}
	if typeList.Sum.Cmp(amount) < 0 || userList.Sum.Cmp(amount) < 0 {
		return reverts.Inconsistent("%v list sum is below item %d balance", item.Desc.Type, id)
	}
	typeList.Sum.Sub(typeList.Sum, amount)
	userList.Sum.Sub(userList.Sum, amount)

	item.Balance.Sub(item.Balance, amount)
	if item.Balance.Sign() > 0 {
		if err := l.storage.setItem(id, item); err != nil {
			return err
		}
	} else {
		if err := l.unlink(id, item, typeList, userList); err != nil {
			return err
		}
		if (typeList.Count == 0 && typeList.Sum.Sign() != 0) || (userList.Count == 0 && userList.Sum.Sign() != 0) {
			return reverts.Inconsistent("%v list is empty with a non-zero sum", item.Desc.Type)
		}
	}

	if err := l.storage.setTypeList(item.Desc.Type, typeList); err != nil {
		return err
	}
	return l.storage.setUserList(item.UserID, item.Desc.Type, userList)
}

// unlink removes the record from both lists and deletes it. The aggregates
// are updated in place, the caller persists them.
func (l *Ledger) unlink(id uint64, item *Item, typeList, userList *ListInfo) error {
	if typeList.Count == 0 || userList.Count == 0 {
		return reverts.Inconsistent("%v list count underflow at item %d", item.Desc.Type, id)
	}

	// type list
	if item.TypePrev == 0 {
		if typeList.Head != id {
			return reverts.Inconsistent("item %d has no type prev but is not head", id)
		}
		typeList.Head = item.TypeNext
	} else if err := l.patch(item.TypePrev, func(p *Item) { p.TypeNext = item.TypeNext }); err != nil {
		return err
	}
	if item.TypeNext == 0 {
		if typeList.Tail != id {
			return reverts.Inconsistent("item %d has no type next but is not tail", id)
		}
		typeList.Tail = item.TypePrev
	} else if err := l.patch(item.TypeNext, func(n *Item) { n.TypePrev = item.TypePrev }); err != nil {
		return err
	}

	// user list
	if item.UserPrev == 0 {
		if userList.Head != id {
			return reverts.Inconsistent("item %d has no user prev but is not head", id)
		}
		userList.Head = item.UserNext
	} else if err := l.patch(item.UserPrev, func(p *Item) { p.UserNext = item.UserNext }); err != nil {
		return err
	}
	if item.UserNext == 0 {
		if userList.Tail != id {
			return reverts.Inconsistent("item %d has no user next but is not tail", id)
		}
		userList.Tail = item.UserPrev
	} else if err := l.patch(item.UserNext, func(n *Item) { n.UserPrev = item.UserPrev }); err != nil {
		return err
	}

	typeList.Count--
	userList.Count--
	return l.storage.deleteItem(id)
}

// patch loads a linked record, applies fn and stores it back.
func (l *Ledger) patch(id uint64, fn func(*Item)) error {
	item, err := l.storage.mustGetItem(id)
	if err != nil {
		return err
	}
	fn(item)
	return l.storage.setItem(id, item)
}
