// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

// Iterator walks a fund list oldest first. Records are loaded one at a time
// as Next is called. The current record may be reduced or removed while
// iterating, its successor is already known.
//
//	it, _ := ledger.Iterate(fund.Waiting)
//	for it.Next() {
//		id, item := it.ID(), it.Item()
//	}
//	if err := it.Error(); err != nil { ... }
type Iterator struct {
	storage *storage
	byUser  bool
	next    uint64
	id      uint64
	item    *Item
	err     error
}

// Iterate returns an iterator over all funds of type t.
func (l *Ledger) Iterate(t Type) (*Iterator, error) {
	info, err := l.TypeInfo(t)
	if err != nil {
		return nil, err
	}
	return &Iterator{storage: l.storage, next: info.Head}, nil
}

// IterateUser returns an iterator over the user's funds of type t.
func (l *Ledger) IterateUser(user uint64, t Type) (*Iterator, error) {
	info, err := l.UserInfo(user, t)
	if err != nil {
		return nil, err
	}
	return &Iterator{storage: l.storage, byUser: true, next: info.Head}, nil
}

// Next advances to the next record. It returns false at the end of the list or on error.
func (it *Iterator) Next() bool {
	if it.err != nil || it.next == 0 {
		it.id, it.item = 0, nil
		return false
	}
	item, err := it.storage.mustGetItem(it.next)
	if err != nil {
		it.err = err
		it.id, it.item = 0, nil
		return false
	}
	it.id, it.item = it.next, item
	if it.byUser {
		it.next = item.UserNext
	} else {
		it.next = item.TypeNext
	}
	return true
}

func (it *Iterator) ID() uint64 {
	return it.id
}

func (it *Iterator) Item() *Item {
	return it.item
}

func (it *Iterator) Error() error {
	return it.err
}
