// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/builtin/pool/globalop"
	"github.com/vechain/stakepool/builtin/pool/rewards"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// Params returns the pool parameters.
func (p *Pool) Params() (params *Params, err error) {
	err = p.view(func() error {
		params, err = p.getParams()
		return err
	})
	return
}

// Checkpoint returns the global operation record, idle when none is in progress.
func (p *Pool) Checkpoint() (cp *globalop.Checkpoint, err error) {
	err = p.view(func() error {
		cp, err = p.getCheckpoint()
		return err
	})
	return
}

func (p *Pool) Paused() (paused bool, err error) {
	err = p.view(func() error {
		paused, err = p.paused.Get()
		return errors.Wrap(err, "failed to get paused")
	})
	return
}

func (p *Pool) Nodes() (nodes []thor.Address, err error) {
	err = p.view(func() error {
		nodes, err = p.nodes.Get()
		return errors.Wrap(err, "failed to get nodes")
	})
	return
}

// TotalOf returns the aggregate of all funds of type t.
func (p *Pool) TotalOf(t fund.Type) (info *fund.ListInfo, err error) {
	err = p.view(func() error {
		info, err = p.ledger.TypeInfo(t)
		return err
	})
	return
}

// UserBalance returns the user's funds of type t, zero for unknown addresses.
func (p *Pool) UserBalance(addr thor.Address, t fund.Type) (*big.Int, error) {
	balance := new(big.Int)
	err := p.view(func() error {
		if !t.Valid() {
			return reverts.OutOfRange("invalid fund type %d", t)
		}
		id, err := p.users.Lookup(addr)
		if err != nil || id == 0 {
			return err
		}
		info, err := p.ledger.UserInfo(id, t)
		if err != nil {
			return err
		}
		balance = info.Sum
		return nil
	})
	return balance, err
}

// UserTotal returns the user's funds of all types.
func (p *Pool) UserTotal(addr thor.Address) (*big.Int, error) {
	total := new(big.Int)
	err := p.view(func() error {
		id, err := p.users.Lookup(addr)
		if err != nil || id == 0 {
			return err
		}
		total, err = p.ledger.UserTotal(id)
		return err
	})
	return total, err
}

// PendingRewards returns the rewards the user could claim now.
func (p *Pool) PendingRewards(addr thor.Address) (*big.Int, error) {
	pending := new(big.Int)
	err := p.view(func() error {
		id, err := p.users.Lookup(addr)
		if err != nil || id == 0 {
			return err
		}
		user, err := p.users.Get(id)
		if err != nil {
			return err
		}
		active, err := p.ledger.UserInfo(id, fund.Active)
		if err != nil {
			return err
		}
		acc, err := p.rewards.Accumulator()
		if err != nil {
			return err
		}
		pending.Add(user.Unclaimed, rewards.Earned(user.RewardCheckpoint, acc, active.Sum))
		return nil
	})
	return pending, err
}

// RewardsState returns the reward accounting totals.
func (p *Pool) RewardsState() (s *rewards.State, err error) {
	err = p.view(func() error {
		s, err = p.rewards.State()
		return err
	})
	return
}

// UserCount returns the number of registered addresses, the owner included.
func (p *Pool) UserCount() (n uint64, err error) {
	err = p.view(func() error {
		n, err = p.users.Count()
		return err
	})
	return
}

// Verify checks the fund lists, walking at most limit records per list.
// The per user sums of each type are compared with the type aggregate.
// complete is false when some list was longer than limit.
func (p *Pool) Verify(limit uint64) (complete bool, err error) {
	err = p.view(func() error {
		complete = true
		count, err := p.users.Count()
		if err != nil {
			return err
		}
		for _, t := range fund.Types {
			done, err := p.ledger.Verify(t, limit)
			if err != nil {
				return errors.Wrapf(err, "%v list", t)
			}
			complete = complete && done

			info, err := p.ledger.TypeInfo(t)
			if err != nil {
				return err
			}
			var (
				sum     = new(big.Int)
				records uint64
			)
			for id := uint64(1); id <= count; id++ {
				done, err := p.ledger.VerifyUser(id, t, limit)
				if err != nil {
					return errors.Wrapf(err, "user %d %v list", id, t)
				}
				complete = complete && done

				userInfo, err := p.ledger.UserInfo(id, t)
				if err != nil {
					return err
				}
				sum.Add(sum, userInfo.Sum)
				records += userInfo.Count
			}
			if sum.Cmp(info.Sum) != 0 || records != info.Count {
				return reverts.Inconsistent("%v users hold %v in %d records, list has %v in %d",
					t, sum, records, info.Sum, info.Count)
			}
		}
		return nil
	})
	return
}
