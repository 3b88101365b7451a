// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
)

var (
	slotItems     = []byte("fund-item-")
	slotTypeLists = []byte("fund-type-list-")
	slotUserLists = []byte("fund-user-list-")
	slotNextID    = []byte("fund-next-id")
)

// userListKey is the composite key of a (user, type) list: the type byte then the big endian user id.
type userListKey struct {
	user uint64
	typ  Type
}

func (k userListKey) Bytes() []byte {
	b := make([]byte, 9)
	b[0] = byte(k.typ)
	binary.BigEndian.PutUint64(b[1:], k.user)
	return b
}

type storage struct {
	items     *solidity.Mapping[solidity.Uint64Key, *Item]
	typeLists *solidity.Mapping[Type, *ListInfo]
	userLists *solidity.Mapping[userListKey, *ListInfo]
	nextID    *solidity.Raw[uint64]
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		items:     solidity.NewMapping[solidity.Uint64Key, *Item](sctx, slotItems),
		typeLists: solidity.NewMapping[Type, *ListInfo](sctx, slotTypeLists),
		userLists: solidity.NewMapping[userListKey, *ListInfo](sctx, slotUserLists),
		nextID:    solidity.NewRaw[uint64](sctx, slotNextID),
	}
}

// getItem returns nil if there is no item with the id.
func (s *storage) getItem(id uint64) (*Item, error) {
	item, err := s.items.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get fund item")
	}
	if item != nil && item.Balance == nil {
		item.Balance = new(big.Int)
	}
	return item, nil
}

// mustGetItem fails with Inconsistent when a linked id has no item.
func (s *storage) mustGetItem(id uint64) (*Item, error) {
	item, err := s.getItem(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, reverts.Inconsistent("linked fund item %d is missing", id)
	}
	return item, nil
}

func (s *storage) setItem(id uint64, item *Item) error {
	if err := s.items.Set(solidity.Uint64Key(id), item); err != nil {
		return errors.Wrap(err, "failed to set fund item")
	}
	return nil
}

func (s *storage) deleteItem(id uint64) error {
	if err := s.items.Delete(solidity.Uint64Key(id)); err != nil {
		return errors.Wrap(err, "failed to delete fund item")
	}
	return nil
}

func (s *storage) allocID() (uint64, error) {
	id, err := s.nextID.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get next fund id")
	}
	id++
	if err := s.nextID.Set(id); err != nil {
		return 0, errors.Wrap(err, "failed to set next fund id")
	}
	return id, nil
}

func (s *storage) getTypeList(t Type) (*ListInfo, error) {
	info, err := s.typeLists.Get(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get type list")
	}
	return normalize(info), nil
}

func (s *storage) setTypeList(t Type, info *ListInfo) error {
	var err error
	if info.IsEmpty() {
		err = s.typeLists.Delete(t)
	} else {
		err = s.typeLists.Set(t, info)
	}
	return errors.Wrap(err, "failed to set type list")
}

func (s *storage) getUserList(user uint64, t Type) (*ListInfo, error) {
	info, err := s.userLists.Get(userListKey{user, t})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user list")
	}
	return normalize(info), nil
}

func (s *storage) setUserList(user uint64, t Type, info *ListInfo) error {
	var err error
	if info.IsEmpty() {
		err = s.userLists.Delete(userListKey{user, t})
	} else {
		err = s.userLists.Set(userListKey{user, t}, info)
	}
	return errors.Wrap(err, "failed to set user list")
}

func normalize(info *ListInfo) *ListInfo {
	if info == nil {
		return newListInfo()
	}
	if info.Sum == nil {
		info.Sum = new(big.Int)
	}
	return info
}
