// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package users

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/thor"
)

var (
	slotUsers   = []byte("users-")
	slotIDs     = []byte("users-id-")
	slotCounter = []byte("users-count")
)

// User is the per user reward state.
type User struct {
	Address          thor.Address
	RewardCheckpoint *big.Int // accumulator value the unclaimed rewards are settled up to
	Unclaimed        *big.Int
}

func (u *User) normalize() *User {
	if u.RewardCheckpoint == nil {
		u.RewardCheckpoint = new(big.Int)
	}
	if u.Unclaimed == nil {
		u.Unclaimed = new(big.Int)
	}
	return u
}

// Directory maps addresses to sequential user ids, the first user gets id 1.
type Directory struct {
	users   *solidity.Mapping[solidity.Uint64Key, *User]
	ids     *solidity.Mapping[thor.Address, uint64]
	counter *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Directory {
	return &Directory{
		users:   solidity.NewMapping[solidity.Uint64Key, *User](sctx, slotUsers),
		ids:     solidity.NewMapping[thor.Address, uint64](sctx, slotIDs),
		counter: solidity.NewRaw[uint64](sctx, slotCounter),
	}
}

// Count returns the number of users, which is also the highest id.
func (d *Directory) Count() (uint64, error) {
	n, err := d.counter.Get()
	return n, errors.Wrap(err, "failed to get user count")
}

// Lookup returns the id of the address, 0 if it is unknown.
func (d *Directory) Lookup(addr thor.Address) (uint64, error) {
	id, err := d.ids.Get(addr)
	return id, errors.Wrap(err, "failed to get user id")
}

// GetOrCreate returns the id of the address, registering it when it is unknown.
func (d *Directory) GetOrCreate(addr thor.Address, checkpoint *big.Int) (id uint64, created bool, err error) {
	if addr.IsZero() {
		return 0, false, reverts.Unauthorized("zero address")
	}
	if id, err = d.Lookup(addr); err != nil || id != 0 {
		return id, false, err
	}
	if id, err = d.Count(); err != nil {
		return 0, false, err
	}
	id++
	if err := d.counter.Set(id); err != nil {
		return 0, false, errors.Wrap(err, "failed to set user count")
	}
	if err := d.ids.Set(addr, id); err != nil {
		return 0, false, errors.Wrap(err, "failed to set user id")
	}
	// a new user holds no stake, rewards accrued before joining are not theirs
	user := &User{Address: addr, RewardCheckpoint: new(big.Int).Set(checkpoint), Unclaimed: new(big.Int)}
	if err := d.Set(id, user); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Get returns the user with the id, NotFound if there is none.
func (d *Directory) Get(id uint64) (*User, error) {
	user, err := d.users.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, reverts.NotFound("user %d", id)
	}
	return user.normalize(), nil
}

func (d *Directory) Set(id uint64, user *User) error {
	return errors.Wrap(d.users.Set(solidity.Uint64Key(id), user), "failed to set user")
}
